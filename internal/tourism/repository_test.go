package tourism_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricky-kiva/andro-tourism-app/internal/resource"
	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

// ---- in-memory LocalSource ----

type memStore struct {
	mu        sync.Mutex
	rows      map[string]tourism.Entity
	watchers  []chan struct{}
	upserts   int
	updateErr error
}

func newMemStore(rows ...tourism.Entity) *memStore {
	s := &memStore{rows: map[string]tourism.Entity{}}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memStore) observe(ctx context.Context, keep func(tourism.Entity) bool) <-chan []tourism.Entity {
	changed := make(chan struct{}, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, changed)
	s.mu.Unlock()

	out := make(chan []tourism.Entity)
	go func() {
		defer close(out)
		for {
			select {
			case out <- s.snapshot(keep):
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

func (s *memStore) snapshot(keep func(tourism.Entity) bool) []tourism.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []tourism.Entity{}
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) notify() {
	for _, w := range s.watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

func (s *memStore) ObserveAll(ctx context.Context) <-chan []tourism.Entity {
	return s.observe(ctx, func(tourism.Entity) bool { return true })
}

func (s *memStore) ObserveFavorites(ctx context.Context) <-chan []tourism.Entity {
	return s.observe(ctx, func(e tourism.Entity) bool { return e.IsFavorite })
}

func (s *memStore) UpsertAll(_ context.Context, entities []tourism.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	for _, e := range entities {
		s.rows[e.ID] = e
	}
	s.notify()
	return nil
}

func (s *memStore) UpdateFavorite(_ context.Context, id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	row, ok := s.rows[id]
	if !ok {
		return nil
	}
	row.IsFavorite = favorite
	s.rows[id] = row
	s.notify()
	return nil
}

func (s *memStore) ids() []string {
	var ids []string
	for _, e := range s.snapshot(func(tourism.Entity) bool { return true }) {
		ids = append(ids, e.ID)
	}
	return ids
}

// ---- fake RemoteSource ----

type fakeRemote struct {
	mu    sync.Mutex
	resp  resource.APIResponse[[]tourism.Response]
	calls int
}

func (f *fakeRemote) FetchList(context.Context) resource.APIResponse[[]tourism.Response] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ---- recording observer ----

type recordingObserver struct {
	mu        sync.Mutex
	fetches   []string
	writeErrs []error
}

func (o *recordingObserver) ObserveFetch(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetches = append(o.fetches, outcome)
}

func (o *recordingObserver) ObserveFavoriteWrite(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writeErrs = append(o.writeErrs, err)
}

// ---- helpers ----

func nextState(t *testing.T, ch <-chan resource.Resource[[]tourism.Tourism]) resource.Resource[[]tourism.Tourism] {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "stream closed early")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
		return resource.Resource[[]tourism.Tourism]{}
	}
}

func nextList(t *testing.T, ch <-chan []tourism.Tourism) []tourism.Tourism {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed early")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for list")
		return nil
	}
}

func idsOf(list []tourism.Tourism) []string {
	ids := make([]string, 0, len(list))
	for _, t := range list {
		ids = append(ids, t.ID)
	}
	return ids
}

func places(ids ...string) []tourism.Response {
	out := make([]tourism.Response, 0, len(ids))
	for _, id := range ids {
		out = append(out, tourism.Response{ID: tourism.FlexibleID(id), Name: "place " + id})
	}
	return out
}

// ---- GetAll ----

func TestGetAll_EmptyStoreFetchesAndPersists(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{resp: resource.SuccessResponse(places("A", "B"))}
	obs := &recordingObserver{}
	repo := tourism.NewRepository(store, remote, discardLogger(), tourism.WithObserver(obs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := repo.GetAll(ctx)

	assert.Equal(t, resource.StatusLoading, nextState(t, ch).Status)
	assert.Equal(t, resource.StatusLoading, nextState(t, ch).Status)
	r := nextState(t, ch)
	require.Equal(t, resource.StatusSuccess, r.Status)
	assert.Equal(t, []string{"A", "B"}, idsOf(*r.Data))

	assert.Equal(t, []string{"A", "B"}, store.ids())
	assert.Equal(t, 1, remote.callCount())
	assert.Equal(t, []string{"success"}, obs.fetches)
}

func TestGetAll_CachedStoreSkipsRemote(t *testing.T) {
	store := newMemStore(tourism.Entity{ID: "A", Name: "cached"})
	remote := &fakeRemote{resp: resource.SuccessResponse(places("X"))}
	repo := tourism.NewRepository(store, remote, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := repo.GetAll(ctx)

	assert.Equal(t, resource.StatusLoading, nextState(t, ch).Status)
	r := nextState(t, ch)
	require.Equal(t, resource.StatusSuccess, r.Status)
	assert.Equal(t, []string{"A"}, idsOf(*r.Data))
	assert.Equal(t, "cached", (*r.Data)[0].Name)
	assert.Zero(t, remote.callCount())
}

func TestGetAll_RemoteErrorLeavesStoreEmpty(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{resp: resource.ErrorResponse[[]tourism.Response]("timeout")}
	obs := &recordingObserver{}
	repo := tourism.NewRepository(store, remote, discardLogger(), tourism.WithObserver(obs))

	var states []resource.Resource[[]tourism.Tourism]
	for r := range repo.GetAll(context.Background()) {
		states = append(states, r)
	}

	require.Len(t, states, 3)
	assert.Equal(t, resource.StatusLoading, states[0].Status)
	assert.Equal(t, resource.StatusLoading, states[1].Status)
	assert.Equal(t, resource.Error[[]tourism.Tourism]("timeout", nil), states[2])
	assert.Empty(t, store.ids())
	assert.Zero(t, store.upserts)
	assert.Equal(t, []string{"error"}, obs.fetches)
}

func TestGetAll_RemoteEmptyDoesNotWrite(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{resp: resource.EmptyResponse[[]tourism.Response]()}
	repo := tourism.NewRepository(store, remote, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := repo.GetAll(ctx)

	nextState(t, ch)
	nextState(t, ch)
	r := nextState(t, ch)
	require.Equal(t, resource.StatusSuccess, r.Status)
	assert.Empty(t, *r.Data)
	assert.Zero(t, store.upserts)
}

func TestGetAll_ForwardsFavoriteChanges(t *testing.T) {
	store := newMemStore(tourism.Entity{ID: "A"})
	repo := tourism.NewRepository(store, &fakeRemote{}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := repo.GetAll(ctx)
	nextState(t, ch)
	r := nextState(t, ch)
	require.False(t, (*r.Data)[0].IsFavorite)

	require.NoError(t, repo.UpdateFavorite(ctx, (*r.Data)[0], true))

	r = nextState(t, ch)
	require.Equal(t, resource.StatusSuccess, r.Status)
	assert.True(t, (*r.Data)[0].IsFavorite)
}

func TestGetAll_ConcurrentSubscriptionsRunIndependently(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{resp: resource.ErrorResponse[[]tourism.Response]("down")}
	repo := tourism.NewRepository(store, remote, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range repo.GetAll(context.Background()) {
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, remote.callCount())
}

// ---- GetFavorites ----

func TestGetFavorites_OnlyFavouritesAndNoRemote(t *testing.T) {
	store := newMemStore(
		tourism.Entity{ID: "A", IsFavorite: true},
		tourism.Entity{ID: "B"},
	)
	remote := &fakeRemote{}
	repo := tourism.NewRepository(store, remote, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := repo.GetFavorites(ctx)

	assert.Equal(t, []string{"A"}, idsOf(nextList(t, ch)))

	repo.SetFavorite(tourism.Tourism{ID: "B"}, true)
	assert.Equal(t, []string{"A", "B"}, idsOf(nextList(t, ch)))

	repo.SetFavorite(tourism.Tourism{ID: "A", IsFavorite: true}, false)
	assert.Equal(t, []string{"B"}, idsOf(nextList(t, ch)))

	repo.Wait()
	assert.Zero(t, remote.callCount())
}

func TestGetFavorites_EmptyStore(t *testing.T) {
	repo := tourism.NewRepository(newMemStore(), &fakeRemote{}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Empty(t, nextList(t, repo.GetFavorites(ctx)))
}

// ---- SetFavorite / UpdateFavorite ----

func TestSetFavorite_FailureIsNotSurfaced(t *testing.T) {
	store := newMemStore(tourism.Entity{ID: "A"})
	store.updateErr = errors.New("locked")
	obs := &recordingObserver{}
	repo := tourism.NewRepository(store, &fakeRemote{}, discardLogger(), tourism.WithObserver(obs))

	repo.SetFavorite(tourism.Tourism{ID: "A"}, true)
	repo.Wait()

	require.Len(t, obs.writeErrs, 1)
	assert.EqualError(t, obs.writeErrs[0], "locked")
}

func TestUpdateFavorite_ReturnsStoreError(t *testing.T) {
	store := newMemStore(tourism.Entity{ID: "A"})
	store.updateErr = errors.New("locked")
	repo := tourism.NewRepository(store, &fakeRemote{}, discardLogger())

	err := repo.UpdateFavorite(context.Background(), tourism.Tourism{ID: "A"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "updating favorite for A")
}

func TestNewRepository_NilLoggerAndOptions(t *testing.T) {
	repo := tourism.NewRepository(newMemStore(), &fakeRemote{}, nil,
		tourism.WithObserver(nil),
		tourism.WithWriteTimeout(0),
	)
	require.NotNil(t, repo)
	require.NoError(t, repo.UpdateFavorite(context.Background(), tourism.Tourism{ID: "missing"}, true))
}
