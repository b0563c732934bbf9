package service

import (
	"context"
	"log"

	"browse-movies/internal/metrics"
	"browse-movies/internal/notify"
)

// FavoritesStore: cada operación es un único update atómico en el storage.
type FavoritesStore interface {
	AddFavorite(ctx context.Context, userID, movieID string) (matched, modified bool, err error)
	RemoveFavorite(ctx context.Context, userID, movieID string) (matched, modified bool, err error)
	GetFavorites(ctx context.Context, userID string) ([]string, error)
}

type FavoritesService struct {
	store   FavoritesStore
	hub     *notify.Hub
	metrics *metrics.Metrics
}

// hub y m pueden ser nil.
func NewFavoritesService(store FavoritesStore, hub *notify.Hub, m *metrics.Metrics) *FavoritesService {
	return &FavoritesService{store: store, hub: hub, metrics: m}
}

// MovieRequest es el body de add/remove.
type MovieRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

// AddFavorite devuelve modified=false si la película ya estaba.
// Si el usuario no existe devuelve ErrUserNotFound.
func (s *FavoritesService) AddFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	matched, modified, err := s.store.AddFavorite(ctx, userID, movieID)
	if err != nil {
		s.metrics.RecordFavorite("add", "error")
		return false, err
	}
	if !matched {
		log.Printf("[favorites] add: usuario %s no encontrado", userID)
		s.metrics.RecordFavorite("add", "user_not_found")
		return false, ErrUserNotFound
	}
	if !modified {
		s.metrics.RecordFavorite("add", "noop")
		return false, nil
	}

	s.metrics.RecordFavorite("add", "modified")
	s.publish(ctx, userID, "add", movieID)
	return true, nil
}

// RemoveFavorite es idempotente: sacar un id que no está no es error.
func (s *FavoritesService) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	_, modified, err := s.store.RemoveFavorite(ctx, userID, movieID)
	if err != nil {
		s.metrics.RecordFavorite("remove", "error")
		return err
	}
	if !modified {
		s.metrics.RecordFavorite("remove", "noop")
		return nil
	}

	s.metrics.RecordFavorite("remove", "modified")
	s.publish(ctx, userID, "remove", movieID)
	return nil
}

// GetFavorites nunca devuelve nil: usuario sin favoritos o inexistente => [].
func (s *FavoritesService) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	favs, err := s.store.GetFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favs == nil {
		favs = []string{}
	}
	return favs, nil
}

func (s *FavoritesService) publish(ctx context.Context, userID, op, movieID string) {
	if s.hub == nil || s.hub.Subscribers(userID) == 0 {
		return
	}
	favs, err := s.GetFavorites(ctx, userID)
	if err != nil {
		log.Printf("[favorites] no se pudo leer snapshot para %s: %v", userID, err)
		return
	}
	s.hub.Publish(notify.FavoritesEvent{
		UserID:    userID,
		Op:        op,
		MovieID:   movieID,
		Favorites: favs,
	})
}
