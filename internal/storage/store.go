package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

// Querier abstracts the subset of pgxpool.Pool used by Store.
// This allows injection of a mock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Publisher announces local writes to other processes sharing the database.
type Publisher interface {
	Publish(ctx context.Context) error
}

const (
	selectColumns = `id, name, description, address, category, latitude, longitude, like_count, image, is_favorite`

	queryAll = `SELECT ` + selectColumns + `
		FROM tourism
		ORDER BY name, id`

	queryFavorites = `SELECT ` + selectColumns + `
		FROM tourism
		WHERE is_favorite = TRUE
		ORDER BY name, id`
)

// Store is the Postgres-backed destination table. Observations stay live:
// every write through any Store sharing the Hub triggers a re-query.
type Store struct {
	q   Querier
	hub *Hub
	pub Publisher
	log *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPublisher announces every successful write through p.
func WithPublisher(p Publisher) StoreOption {
	return func(s *Store) { s.pub = p }
}

// NewStore constructs a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool, hub *Hub, log *slog.Logger, opts ...StoreOption) *Store {
	return NewStoreWithQuerier(pool, hub, log, opts...)
}

// NewStoreWithQuerier constructs a Store with a custom Querier (for tests).
func NewStoreWithQuerier(q Querier, hub *Hub, log *slog.Logger, opts ...StoreOption) *Store {
	if hub == nil {
		hub = NewHub()
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Store{q: q, hub: hub, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ObserveAll emits every destination ordered by name, then again after each change.
func (s *Store) ObserveAll(ctx context.Context) <-chan []tourism.Entity {
	return s.observe(ctx, queryAll)
}

// ObserveFavorites emits the favourite destinations, then again after each change.
func (s *Store) ObserveFavorites(ctx context.Context) <-chan []tourism.Entity {
	return s.observe(ctx, queryFavorites)
}

// observe subscribes before the first query so no write between the query and
// the wait is missed. A query failure ends the observation.
func (s *Store) observe(ctx context.Context, query string) <-chan []tourism.Entity {
	out := make(chan []tourism.Entity)
	changed, unsubscribe := s.hub.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			entities, err := s.list(ctx, query)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("observing destinations", "err", err)
				}
				return
			}

			select {
			case out <- entities:
			case <-ctx.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (s *Store) list(ctx context.Context, query string) ([]tourism.Entity, error) {
	rows, err := s.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying destinations: %w", err)
	}
	defer rows.Close()

	entities := []tourism.Entity{}
	for rows.Next() {
		var e tourism.Entity
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.Description,
			&e.Address,
			&e.Category,
			&e.Latitude,
			&e.Longitude,
			&e.Like,
			&e.Image,
			&e.IsFavorite,
		); err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}

	return entities, nil
}

// UpsertAll inserts or replaces every entity in a single statement, so the
// batch is applied atomically. Existing rows are overwritten field by field,
// including is_favorite.
func (s *Store) UpsertAll(ctx context.Context, entities []tourism.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	n := len(entities)
	var (
		ids         = make([]string, n)
		names       = make([]string, n)
		descs       = make([]string, n)
		addresses   = make([]string, n)
		categories  = make([]string, n)
		latitudes   = make([]float64, n)
		longitudes  = make([]float64, n)
		likes       = make([]int64, n)
		images      = make([]string, n)
		isFavorites = make([]bool, n)
	)
	for i, e := range entities {
		ids[i] = e.ID
		names[i] = e.Name
		descs[i] = e.Description
		addresses[i] = e.Address
		categories[i] = e.Category
		latitudes[i] = e.Latitude
		longitudes[i] = e.Longitude
		likes[i] = int64(e.Like)
		images[i] = e.Image
		isFavorites[i] = e.IsFavorite
	}

	const q = `
		INSERT INTO tourism (id, name, description, address, category, latitude, longitude, like_count, image, is_favorite, updated_at)
		SELECT id, name, description, address, category, latitude, longitude, like_count, image, is_favorite, NOW()
		FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[],
		            $6::float8[], $7::float8[], $8::int8[], $9::text[], $10::bool[])
		  AS t(id, name, description, address, category, latitude, longitude, like_count, image, is_favorite)
		ON CONFLICT (id) DO UPDATE
		SET name        = EXCLUDED.name,
		    description = EXCLUDED.description,
		    address     = EXCLUDED.address,
		    category    = EXCLUDED.category,
		    latitude    = EXCLUDED.latitude,
		    longitude   = EXCLUDED.longitude,
		    like_count  = EXCLUDED.like_count,
		    image       = EXCLUDED.image,
		    is_favorite = EXCLUDED.is_favorite,
		    updated_at  = EXCLUDED.updated_at
	`

	if _, err := s.q.Exec(ctx, q,
		ids, names, descs, addresses, categories,
		latitudes, longitudes, likes, images, isFavorites,
	); err != nil {
		return fmt.Errorf("upserting %d destinations: %w", n, err)
	}

	s.changed(ctx)
	return nil
}

// UpdateFavorite sets the favourite flag of one destination. An unknown id is
// a no-op.
func (s *Store) UpdateFavorite(ctx context.Context, id string, favorite bool) error {
	const q = `
		UPDATE tourism
		SET is_favorite = $2,
		    updated_at  = NOW()
		WHERE id = $1
	`

	tag, err := s.q.Exec(ctx, q, id, favorite)
	if err != nil {
		return fmt.Errorf("updating favorite for destination %s: %w", id, err)
	}

	if tag.RowsAffected() > 0 {
		s.changed(ctx)
	}
	return nil
}

func (s *Store) changed(ctx context.Context) {
	s.hub.Broadcast()
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx); err != nil {
		s.log.Warn("publishing store change", "err", err)
	}
}
