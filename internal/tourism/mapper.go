package tourism

// EntitiesToDomain maps stored rows to domain values, keeping order.
func EntitiesToDomain(entities []Entity) []Tourism {
	out := make([]Tourism, 0, len(entities))
	for _, e := range entities {
		out = append(out, EntityToDomain(e))
	}
	return out
}

// EntityToDomain converts a stored row to its domain value.
func EntityToDomain(e Entity) Tourism {
	return Tourism{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Address:     e.Address,
		Category:    e.Category,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		Like:        e.Like,
		Image:       e.Image,
		IsFavorite:  e.IsFavorite,
	}
}

// ResponsesToEntities maps fetched places to rows. Fetched rows are never
// favourites.
func ResponsesToEntities(responses []Response) []Entity {
	out := make([]Entity, 0, len(responses))
	for _, r := range responses {
		out = append(out, Entity{
			ID:          string(r.ID),
			Name:        r.Name,
			Description: r.Description,
			Address:     r.Address,
			Category:    r.Category,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			Like:        r.Like,
			Image:       r.Image,
		})
	}
	return out
}

// DomainToEntity converts a domain value back to a storable row.
func DomainToEntity(t Tourism) Entity {
	return Entity{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Address:     t.Address,
		Category:    t.Category,
		Latitude:    t.Latitude,
		Longitude:   t.Longitude,
		Like:        t.Like,
		Image:       t.Image,
		IsFavorite:  t.IsFavorite,
	}
}
