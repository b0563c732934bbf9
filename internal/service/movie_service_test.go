package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"browse-movies/internal/metrics"
	"browse-movies/internal/models"
	"browse-movies/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTMDB(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "k3y", r.URL.Query().Get("api_key"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(models.MoviePage{
			Page:    2,
			Results: []models.Movie{{ID: 603, Title: "The Matrix"}},
		})
	})
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "star wars", r.URL.Query().Get("query"))
		_ = json.NewEncoder(w).Encode(models.MoviePage{Page: 1, Results: []models.Movie{{ID: 11, Title: "Star Wars"}}})
	})
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_ = json.NewEncoder(w).Encode(models.GenreList{Genres: []models.Genre{{ID: 28, Name: "Action"}}})
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "28", r.URL.Query().Get("with_genres"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(models.MoviePage{Page: 1})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMovieService_Endpoints(t *testing.T) {
	var hits int32
	srv := fakeTMDB(t, &hits)
	m := metrics.New("test", prometheus.NewRegistry())
	svc := service.NewMovieService(srv.URL, "k3y", nil, time.Minute, m)
	ctx := context.Background()

	page, err := svc.Popular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "The Matrix", page.Results[0].Title)

	found, err := svc.Search(ctx, "star wars", 0)
	require.NoError(t, err)
	assert.Equal(t, 11, found.Results[0].ID)

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Action", genres.Genres[0].Name)

	_, err = svc.DiscoverByGenre(ctx, 28, -3)
	require.NoError(t, err)

	assert.EqualValues(t, 4, atomic.LoadInt32(&hits))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.TMDBRequests.WithLabelValues("upstream")))
}

func TestMovieService_UpstreamFailure(t *testing.T) {
	var hits int32
	srv := fakeTMDB(t, &hits)

	// el mux responde 404 a cualquier ruta desconocida
	svc := service.NewMovieService(srv.URL+"/v9", "k3y", nil, time.Minute, nil)
	_, err := svc.Genres(context.Background())
	assert.ErrorIs(t, err, service.ErrUpstream)

	down := service.NewMovieService("http://127.0.0.1:1", "k3y", nil, time.Minute, nil)
	_, err = down.Popular(context.Background(), 1)
	assert.ErrorIs(t, err, service.ErrUpstream)
}
