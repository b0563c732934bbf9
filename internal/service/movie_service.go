package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"browse-movies/internal/cache"
	"browse-movies/internal/metrics"
	"browse-movies/internal/models"
)

// MovieService es un proxy al API v3 de TMDB con cache en Redis.
// La API key queda del lado del servidor.
type MovieService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewMovieService(baseURL, apiKey string, c *cache.Cache, ttl time.Duration, m *metrics.Metrics) *MovieService {
	return &MovieService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   c,
		ttl:     ttl,
		metrics: m,
	}
}

func (s *MovieService) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	var out models.MoviePage
	err := s.get(ctx, "/movie/popular", pageParams(page), &out)
	return &out, err
}

func (s *MovieService) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	params := pageParams(page)
	params.Set("query", query)

	var out models.MoviePage
	err := s.get(ctx, "/search/movie", params, &out)
	return &out, err
}

func (s *MovieService) Genres(ctx context.Context) (*models.GenreList, error) {
	params := url.Values{}
	params.Set("language", "en-US")

	var out models.GenreList
	err := s.get(ctx, "/genre/movie/list", params, &out)
	return &out, err
}

func (s *MovieService) DiscoverByGenre(ctx context.Context, genreID, page int) (*models.MoviePage, error) {
	params := pageParams(page)
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("language", "en-US")

	var out models.MoviePage
	err := s.get(ctx, "/discover/movie", params, &out)
	return &out, err
}

func pageParams(page int) url.Values {
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return params
}

func cacheKey(path string, params url.Values) string {
	// Encode ordena las keys, así la key es estable
	return "tmdb:" + path + "?" + params.Encode()
}

func (s *MovieService) get(ctx context.Context, path string, params url.Values, dest any) error {
	key := cacheKey(path, params)

	if ok, err := s.cache.GetJSON(ctx, key, dest); err == nil && ok {
		s.metrics.RecordTMDB("cache")
		return nil
	} else if err != nil {
		log.Printf("[tmdb] cache get %s: %v", key, err)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordTMDB("error")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		s.metrics.RecordTMDB("error")
		return fmt.Errorf("%w: %s returned %d", ErrUpstream, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		s.metrics.RecordTMDB("error")
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	s.metrics.RecordTMDB("upstream")

	if err := s.cache.SetJSON(ctx, key, dest, s.ttl); err != nil {
		log.Printf("[tmdb] cache set %s: %v", key, err)
	}
	return nil
}
