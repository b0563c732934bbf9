package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User es el documento de la colección users.
// El hash del password nunca se serializa a JSON.
type User struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Username       string             `json:"username" bson:"username"`
	FirstName      string             `json:"firstName" bson:"firstName"`
	LastName       string             `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email          string             `json:"email" bson:"email"`
	PasswordHash   string             `json:"-" bson:"password,omitempty"`
	Role           string             `json:"role" bson:"role"`
	FavoriteMovies []string           `json:"favoriteMovies" bson:"favoriteMovies"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Public devuelve una copia sin el hash del password.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	if cp.FavoriteMovies == nil {
		cp.FavoriteMovies = []string{}
	}
	return &cp
}
