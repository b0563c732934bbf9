package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"browse-movies/internal/metrics"
	"browse-movies/internal/models"
	"browse-movies/internal/notify"
	"browse-movies/internal/repository"
	"browse-movies/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFavoritesStore struct {
	mock.Mock
}

func (m *mockFavoritesStore) AddFavorite(ctx context.Context, userID, movieID string) (bool, bool, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *mockFavoritesStore) RemoveFavorite(ctx context.Context, userID, movieID string) (bool, bool, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *mockFavoritesStore) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newUser(t *testing.T, repo *repository.MemoryUserRepository) string {
	t.Helper()
	u := &models.User{Username: "abe", Email: "abe@x.com"}
	require.NoError(t, repo.Insert(context.Background(), u))
	return u.ID.Hex()
}

func TestFavoritesService_AddDistinguishesMissingUserFromDuplicate(t *testing.T) {
	ctx := context.Background()
	store := new(mockFavoritesStore)
	m := metrics.New("test", prometheus.NewRegistry())
	svc := service.NewFavoritesService(store, nil, m)

	store.On("AddFavorite", ctx, "u1", "42").Return(true, true, nil).Once()
	store.On("AddFavorite", ctx, "u1", "42").Return(true, false, nil).Once()
	store.On("AddFavorite", ctx, "ghost", "42").Return(false, false, nil).Once()

	modified, err := svc.AddFavorite(ctx, "u1", "42")
	require.NoError(t, err)
	assert.True(t, modified)

	modified, err = svc.AddFavorite(ctx, "u1", "42")
	require.NoError(t, err)
	assert.False(t, modified)

	_, err = svc.AddFavorite(ctx, "ghost", "42")
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FavoritesMutations.WithLabelValues("add", "modified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FavoritesMutations.WithLabelValues("add", "noop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FavoritesMutations.WithLabelValues("add", "user_not_found")))
	store.AssertExpectations(t)
}

func TestFavoritesService_StoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	store := new(mockFavoritesStore)
	svc := service.NewFavoritesService(store, nil, nil)

	boom := errors.New("boom")
	store.On("AddFavorite", ctx, "u1", "1").Return(false, false, boom).Once()
	store.On("RemoveFavorite", ctx, "u1", "1").Return(false, false, boom).Once()
	store.On("GetFavorites", ctx, "u1").Return(nil, boom).Once()

	_, err := svc.AddFavorite(ctx, "u1", "1")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, "u1", "1"), boom)
	_, err = svc.GetFavorites(ctx, "u1")
	assert.ErrorIs(t, err, boom)
}

func TestFavoritesService_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	svc := service.NewFavoritesService(repo, nil, nil)
	id := newUser(t, repo)

	_, err := svc.AddFavorite(ctx, id, "7")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFavorite(ctx, id, "42"))

	favs, err := svc.GetFavorites(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, favs)
}

func TestFavoritesService_GetFavoritesNeverNil(t *testing.T) {
	ctx := context.Background()
	store := new(mockFavoritesStore)
	svc := service.NewFavoritesService(store, nil, nil)

	store.On("GetFavorites", ctx, "u1").Return([]string(nil), nil).Once()

	favs, err := svc.GetFavorites(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, favs)
	assert.Empty(t, favs)
}

func TestFavoritesService_ConcurrentAddsConverge(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	svc := service.NewFavoritesService(repo, nil, nil)
	id := newUser(t, repo)

	var wg sync.WaitGroup
	var mu sync.Mutex
	modifiedCount := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			modified, err := svc.AddFavorite(ctx, id, "42")
			assert.NoError(t, err)
			if modified {
				mu.Lock()
				modifiedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	favs, err := svc.GetFavorites(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, favs)
	assert.Equal(t, 1, modifiedCount)
}

func TestFavoritesService_PublishesSnapshotToSubscribers(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryUserRepository()
	hub := notify.NewHub()
	svc := service.NewFavoritesService(repo, hub, nil)
	id := newUser(t, repo)

	events, cancel := hub.Subscribe(id)
	defer cancel()

	_, err := svc.AddFavorite(ctx, id, "100")
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "add", ev.Op)
		assert.Equal(t, "100", ev.MovieID)
		assert.Equal(t, []string{"100"}, ev.Favorites)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}

	// un add repetido no cambia el set y no publica
	_, err = svc.AddFavorite(ctx, id, "100")
	require.NoError(t, err)
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	require.NoError(t, svc.RemoveFavorite(ctx, id, "100"))
	ev := <-events
	assert.Equal(t, "remove", ev.Op)
	assert.Empty(t, ev.Favorites)
}
