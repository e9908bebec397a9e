package tourism

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
)

const defaultWriteTimeout = 10 * time.Second

// LocalSource is the persisted destination table.
type LocalSource interface {
	ObserveAll(ctx context.Context) <-chan []Entity
	ObserveFavorites(ctx context.Context) <-chan []Entity
	UpsertAll(ctx context.Context, entities []Entity) error
	UpdateFavorite(ctx context.Context, id string, favorite bool) error
}

// RemoteSource is the listing API.
type RemoteSource interface {
	FetchList(ctx context.Context) resource.APIResponse[[]Response]
}

// FetchObserver receives fetch and favourite-write outcomes.
type FetchObserver interface {
	ObserveFetch(outcome string, d time.Duration)
	ObserveFavoriteWrite(err error)
}

type noopObserver struct{}

func (noopObserver) ObserveFetch(string, time.Duration) {}
func (noopObserver) ObserveFavoriteWrite(error)         {}

// Repository binds the destination list to its local and remote sources.
type Repository struct {
	local        LocalSource
	remote       RemoteSource
	observer     FetchObserver
	writeTimeout time.Duration
	log          *slog.Logger

	pending sync.WaitGroup
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithObserver reports fetch and favourite-write outcomes to o.
func WithObserver(o FetchObserver) RepositoryOption {
	return func(r *Repository) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithWriteTimeout bounds background favourite writes. Defaults to 10 seconds.
func WithWriteTimeout(d time.Duration) RepositoryOption {
	return func(r *Repository) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

// NewRepository constructs a Repository.
func NewRepository(local LocalSource, remote RemoteSource, log *slog.Logger, opts ...RepositoryOption) *Repository {
	if log == nil {
		log = slog.Default()
	}
	r := &Repository{
		local:        local,
		remote:       remote,
		observer:     noopObserver{},
		writeTimeout: defaultWriteTimeout,
		log:          log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetAll streams the destination list: cached rows when present, otherwise a
// fetch from the API first. See resource.NetworkBound for the state order.
func (r *Repository) GetAll(ctx context.Context) <-chan resource.Resource[[]Tourism] {
	nb := resource.NetworkBound[[]Tourism, []Response]{
		LoadLocal: func(ctx context.Context) <-chan []Tourism {
			return mapStream(ctx, r.local.ObserveAll(ctx), EntitiesToDomain)
		},
		ShouldFetch: resource.FetchIfEmpty[Tourism],
		FetchRemote: r.fetch,
		SaveRemote: func(ctx context.Context, data []Response) error {
			if err := r.local.UpsertAll(ctx, ResponsesToEntities(data)); err != nil {
				return fmt.Errorf("storing %d fetched destinations: %w", len(data), err)
			}
			return nil
		},
		OnFetchFailed: func(message string) {
			r.log.Warn("destination list fetch failed", "message", message)
		},
		Logger: r.log,
	}
	return nb.Stream(ctx)
}

// GetFavorites streams favourite destinations from the local store only.
func (r *Repository) GetFavorites(ctx context.Context) <-chan []Tourism {
	return mapStream(ctx, r.local.ObserveFavorites(ctx), EntitiesToDomain)
}

// SetFavorite updates the favourite flag in the background. Failures are
// logged and reported to the observer, never to the caller.
func (r *Repository) SetFavorite(item Tourism, state bool) {
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()

		if err := r.UpdateFavorite(ctx, item, state); err != nil {
			r.log.Error("favorite update failed", "id", item.ID, "favorite", state, "err", err)
		}
	}()
}

// UpdateFavorite updates the favourite flag and returns the store error.
func (r *Repository) UpdateFavorite(ctx context.Context, item Tourism, state bool) error {
	entity := DomainToEntity(item)
	entity.IsFavorite = state

	err := r.local.UpdateFavorite(ctx, entity.ID, entity.IsFavorite)
	r.observer.ObserveFavoriteWrite(err)
	if err != nil {
		return fmt.Errorf("updating favorite for %s: %w", entity.ID, err)
	}
	return nil
}

// Wait blocks until background favourite writes have finished.
func (r *Repository) Wait() {
	r.pending.Wait()
}

func (r *Repository) fetch(ctx context.Context) resource.APIResponse[[]Response] {
	start := time.Now()
	resp := r.remote.FetchList(ctx)
	r.observer.ObserveFetch(resp.Status.String(), time.Since(start))
	return resp
}

// mapStream applies fn to every value of in until in closes or ctx is done.
func mapStream[In, Out any](ctx context.Context, in <-chan In, fn func(In) Out) <-chan Out {
	out := make(chan Out)
	go func() {
		defer close(out)
		for v := range in {
			select {
			case out <- fn(v):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
