package handler

import (
	"net/http"
	"strconv"
	"strings"

	"browse-movies/internal/service"
)

type MovieHandler struct {
	svc *service.MovieService
}

func NewMovieHandler(s *service.MovieService) *MovieHandler { return &MovieHandler{svc: s} }

// page vacío o inválido => 1 (lo normaliza el servicio)
func pageParam(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return page
}

// @Summary Películas populares (TMDB)
// @Tags movies
// @Produce json
// @Param page query int false "página"
// @Success 200 {object} models.MoviePage
// @Failure 502 {object} errorResponse
// @Router /movies/popular [get]
func (h *MovieHandler) Popular(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Popular(r.Context(), pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// @Summary Buscar películas por título (TMDB)
// @Tags movies
// @Produce json
// @Param query query string true "texto a buscar"
// @Param page query int false "página"
// @Success 200 {object} models.MoviePage
// @Failure 400 {object} errorResponse
// @Router /movies/search [get]
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("query"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	page, err := h.svc.Search(r.Context(), q, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// @Summary Lista de géneros (TMDB)
// @Tags movies
// @Produce json
// @Success 200 {object} models.GenreList
// @Router /movies/genres [get]
func (h *MovieHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.Genres(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// @Summary Películas por género (TMDB discover)
// @Tags movies
// @Produce json
// @Param genre query int true "id de género"
// @Param page query int false "página"
// @Success 200 {object} models.MoviePage
// @Failure 400 {object} errorResponse
// @Router /movies/discover [get]
func (h *MovieHandler) Discover(w http.ResponseWriter, r *http.Request) {
	genre, err := strconv.Atoi(r.URL.Query().Get("genre"))
	if err != nil || genre <= 0 {
		writeError(w, http.StatusBadRequest, "genre must be a positive integer")
		return
	}

	page, err := h.svc.DiscoverByGenre(r.Context(), genre, pageParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
