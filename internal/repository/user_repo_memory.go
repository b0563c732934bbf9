package repository

import (
	"context"
	"sync"
	"time"

	"browse-movies/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository es una implementación en memoria con las mismas
// reglas que la colección de Mongo (únicos en username/email, favoritos
// como set). Se usa en tests de handlers y servicios.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *MemoryUserRepository) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return &DuplicateKeyError{Field: "username"}
		}
		if existing.Email == u.Email {
			return &DuplicateKeyError{Field: "email"}
		}
	}

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.FavoriteMovies == nil {
		u.FavoriteMovies = []string{}
	}

	cp := *u
	cp.FavoriteMovies = append([]string{}, u.FavoriteMovies...)
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.FindByEmailWithPassword(ctx, email)
	if u != nil {
		u.PasswordHash = ""
	}
	return u, err
}

func (r *MemoryUserRepository) FindByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[oid]
	if !ok {
		return nil, nil
	}
	cp := cloneUser(u)
	cp.PasswordHash = ""
	return cp, nil
}

// Delete borra un usuario; los tests lo usan para simular un usuario
// eliminado después de emitir su token.
func (r *MemoryUserRepository) Delete(id string) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return
	}
	r.mu.Lock()
	delete(r.users, oid)
	r.mu.Unlock()
}

func (r *MemoryUserRepository) AddFavorite(_ context.Context, userID, movieID string) (bool, bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[oid]
	if !ok {
		return false, false, nil
	}
	for _, id := range u.FavoriteMovies {
		if id == movieID {
			return true, false, nil
		}
	}
	u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	u.UpdatedAt = time.Now().UTC()
	return true, true, nil
}

func (r *MemoryUserRepository) RemoveFavorite(_ context.Context, userID, movieID string) (bool, bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[oid]
	if !ok {
		return false, false, nil
	}
	kept := u.FavoriteMovies[:0]
	for _, id := range u.FavoriteMovies {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	modified := len(kept) != len(u.FavoriteMovies)
	u.FavoriteMovies = kept
	if modified {
		u.UpdatedAt = time.Now().UTC()
	}
	return true, modified, nil
}

func (r *MemoryUserRepository) GetFavorites(_ context.Context, userID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []string{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[oid]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, u.FavoriteMovies...), nil
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.FavoriteMovies = append([]string{}, u.FavoriteMovies...)
	return &cp
}
