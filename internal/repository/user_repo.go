package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"browse-movies/internal/db"
	"browse-movies/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate se devuelve cuando un índice único rechaza el insert.
var ErrDuplicate = errors.New("duplicate key")

// DuplicateKeyError indica qué campo único chocó (username o email).
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return ErrDuplicate.Error()
	}
	return ErrDuplicate.Error() + " on " + e.Field
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicate }

// sin el hash del password
var publicProjection = bson.M{"password": 0}

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return NewUserRepositoryFromCollection(database.Collection(db.ColUsers))
}

func NewUserRepositoryFromCollection(col *mongo.Collection) *UserRepository {
	return &UserRepository{col: col}
}

func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
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

	_, err := r.col.InsertOne(ctx, u)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{Field: duplicateField(err), Err: err}
	}
	return err
}

// duplicateField identifica el campo por el nombre del índice que saltó.
// No mira el mensaje entero: trae el valor duplicado (ej. "username@x.com").
func duplicateField(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "index: "+db.IdxUniqUsername+" "):
		return "username"
	case strings.Contains(msg, "index: "+db.IdxUniqEmail+" "):
		return "email"
	default:
		return ""
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(publicProjection))
}

// FindByEmailWithPassword es el único read que trae el hash (login).
func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(publicProjection))
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, filter, opts...).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AddFavorite agrega movieID en un solo update atómico. El filtro excluye a
// los usuarios que ya lo tienen, así updatedAt solo se mueve si el set cambió.
// matched=false si el usuario no existe; modified=false si ya estaba.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, movieID string) (matched, modified bool, err error) {
	return r.updateFavorites(ctx, userID,
		bson.M{"favoriteMovies": bson.M{"$ne": movieID}},
		bson.M{"$addToSet": bson.M{"favoriteMovies": movieID}},
	)
}

// RemoveFavorite aplica $pull; si el id no estaba no es error.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, movieID string) (matched, modified bool, err error) {
	return r.updateFavorites(ctx, userID,
		bson.M{"favoriteMovies": movieID},
		bson.M{"$pull": bson.M{"favoriteMovies": movieID}},
	)
}

func (r *UserRepository) updateFavorites(ctx context.Context, userID string, cond, update bson.M) (bool, bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, false, nil
	}

	filter := bson.M{"_id": oid}
	for k, v := range cond {
		filter[k] = v
	}
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, false, err
	}
	if res.ModifiedCount > 0 {
		return true, true, nil
	}

	// no hubo cambio: falta distinguir "ya estaba / no estaba" de "no existe"
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, false, err
	}
	return n > 0, false, nil
}

// GetFavorites devuelve la lista (vacía si el usuario no existe).
func (r *UserRepository) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []string{}, nil
	}

	var doc struct {
		FavoriteMovies []string `bson:"favoriteMovies"`
	}
	err = r.col.FindOne(ctx,
		bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"favoriteMovies": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.FavoriteMovies == nil {
		return []string{}, nil
	}
	return doc.FavoriteMovies, nil
}
