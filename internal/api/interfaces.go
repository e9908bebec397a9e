package api

import (
	"context"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

// TourismRepo defines the repository operations needed by handlers.
type TourismRepo interface {
	GetAll(ctx context.Context) <-chan resource.Resource[[]tourism.Tourism]
	GetFavorites(ctx context.Context) <-chan []tourism.Tourism
	UpdateFavorite(ctx context.Context, item tourism.Tourism, state bool) error
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
