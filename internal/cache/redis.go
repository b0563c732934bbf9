package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache es un wrapper chico sobre Redis para guardar JSON con TTL.
// Un *Cache nil es válido y se comporta como cache vacío.
type Cache struct {
	client *redis.Client
}

// NewRedis conecta a Redis. Si addr está vacío devuelve nil (cache deshabilitado).
func NewRedis(ctx context.Context, addr, password string) (*Cache, error) {
	if addr == "" {
		log.Println("[redis] REDIS_ADDR vacío, cache deshabilitado")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redis] error conectando a %s: %w", addr, err)
	}

	log.Printf("[redis] conectado a %s", addr)
	return &Cache{client: client}, nil
}

// NewFromClient envuelve un cliente ya creado.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// GetJSON lee una key; si existe deserializa el JSON en dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializa value y lo guarda con el TTL dado.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}
