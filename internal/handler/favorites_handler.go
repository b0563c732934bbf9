package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"browse-movies/internal/metrics"
	"browse-movies/internal/notify"
	"browse-movies/internal/service"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// el origen ya lo filtra el middleware de CORS para las rutas REST; el
// websocket exige token así que aceptamos cualquier origen
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FavoritesHandler struct {
	svc     *service.FavoritesService
	hub     *notify.Hub
	metrics *metrics.Metrics
}

func NewFavoritesHandler(s *service.FavoritesService, hub *notify.Hub, m *metrics.Metrics) *FavoritesHandler {
	return &FavoritesHandler{svc: s, hub: hub, metrics: m}
}

// @Summary Favoritos del usuario autenticado
// @Tags favorites
// @Security BearerAuth
// @Produce json
// @Success 200 {array} string
// @Failure 401 {object} errorResponse
// @Router /users/favorites [get]
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	u := IdentityFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
		return
	}

	favs, err := h.svc.GetFavorites(r.Context(), u.ID.Hex())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

// @Summary Agregar favorito
// @Tags favorites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.MovieRequest true "movieId"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorResponse
// @Router /users/favorites/add [post]
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	u, req, ok := h.movieRequest(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.AddFavorite(r.Context(), u, req.MovieID); err != nil {
		// el cliente espera 200 con este mensaje si el usuario fue borrado
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusOK, messageResponse{Message: "Error: User not found."})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Favorite added successfully"})
}

// @Summary Quitar favorito
// @Tags favorites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.MovieRequest true "movieId"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errorResponse
// @Router /users/favorites/remove [delete]
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	u, req, ok := h.movieRequest(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveFavorite(r.Context(), u, req.MovieID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Favorite removed successfully"})
}

func (h *FavoritesHandler) movieRequest(w http.ResponseWriter, r *http.Request) (string, service.MovieRequest, bool) {
	var req service.MovieRequest
	u := IdentityFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
		return "", req, false
	}
	if !decodeJSON(w, r, &req) {
		return "", req, false
	}
	if err := service.Validate(&req); err != nil {
		writeServiceError(w, err)
		return "", req, false
	}
	return u.ID.Hex(), req, true
}

// @Summary Stream de favoritos (WebSocket)
// @Description Manda el snapshot actual y luego uno nuevo por cada cambio del set.
// @Tags favorites
// @Security BearerAuth
// @Param access_token query string false "token si no se puede mandar header"
// @Router /users/favorites/ws [get]
func (h *FavoritesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	u := IdentityFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
		return
	}
	userID := u.ID.Hex()

	// suscribir antes del snapshot para no perder cambios entre medio
	events, cancel := h.hub.Subscribe(userID)
	defer cancel()

	favs, err := h.svc.GetFavorites(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade falló para %s: %v", userID, err)
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(notify.FavoritesEvent{
		Type:      "snapshot",
		UserID:    userID,
		Favorites: favs,
		At:        time.Now().UTC(),
	}); err != nil {
		return
	}

	// lector: solo para pongs y detectar el cierre del cliente
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("[ws] error enviando a %s: %v", userID, err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
