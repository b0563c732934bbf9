package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"browse-movies/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ColUsers = "users"

// nombres de los índices únicos; el repo los usa para mapear E11000 al campo
const (
	IdxUniqUsername = "uniq_username"
	IdxUniqEmail    = "uniq_email"
)

// Mongo agrupa el cliente y la base usada por la API.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect abre la conexión, hace ping y crea los índices.
func Connect(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("[mongo] error conectando: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("[mongo] ping falló: %w", err)
	}

	m, err := newMongo(ctx, client, cfg.MongoDB)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Printf("[mongo] conectado, DB=%s", cfg.MongoDB)
	return m, nil
}

// newMongo crea los índices antes de devolver el handle. Sin uniq_username
// la unicidad del username no queda garantizada, así que es un error fatal.
func newMongo(ctx context.Context, client *mongo.Client, dbName string) (*Mongo, error) {
	m := &Mongo{client: client, db: client.Database(dbName)}
	if err := EnsureIndexes(ctx, m.db); err != nil {
		return nil, fmt.Errorf("[mongo] no se pudieron crear índices: %w", err)
	}
	return m, nil
}

func (m *Mongo) DB() *mongo.Database {
	return m.db
}

// Ping se usa desde /health.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes crea los índices únicos de username y email.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(ColUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(IdxUniqUsername),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(IdxUniqEmail),
		},
	})
	return err
}
