package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/entryd/entryd/internal/model"
)

// Key prefix for collection hashes.
const redisKeyPrefix = "entryd:collection:"

// Redis is a Collection stored in one Redis hash mapping key -> JSON document.
type Redis struct {
	client  *redis.Client
	name    string
	hashKey string
}

// NewRedis creates a Redis collection from a redis:// URL.
func NewRedis(ctx context.Context, redisURL, name string) (*Redis, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewRedisFromClient(client, name), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, name string) *Redis {
	return &Redis{
		client:  client,
		name:    name,
		hashKey: redisKeyPrefix + name,
	}
}

// Name returns the collection name.
func (r *Redis) Name() string {
	return r.name
}

// Save stores doc under a new key. HSETNX keeps an existing key untouched.
func (r *Redis) Save(ctx context.Context, doc model.Document) (model.Meta, error) {
	meta := NewMeta()

	data, err := json.Marshal(doc.WithMeta(meta))
	if err != nil {
		return model.Meta{}, fmt.Errorf("failed to encode document: %w", err)
	}

	created, err := r.client.HSetNX(ctx, r.hashKey, meta.Key, data).Result()
	if err != nil {
		return model.Meta{}, fmt.Errorf("failed to save document: %w", err)
	}
	if !created {
		return model.Meta{}, fmt.Errorf("%w: %s", ErrConflict, meta.Key)
	}

	return meta, nil
}

// Lookup fetches a document by key.
func (r *Redis) Lookup(ctx context.Context, key string) Lookup {
	data, err := r.client.HGet(ctx, r.hashKey, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NotFound(key)
		}
		return Failed(fmt.Errorf("failed to get document by key: %w", err))
	}

	doc, err := model.DecodeDocument(data)
	if err != nil {
		return Failed(fmt.Errorf("failed to decode document %s: %w", key, err))
	}
	return Found(doc)
}

// All returns every document. Hash order is arbitrary, so documents are
// sorted by key, which for generated keys is creation order.
func (r *Redis) All(ctx context.Context) ([]model.Document, error) {
	entries, err := r.client.HGetAll(ctx, r.hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	docs := make([]model.Document, 0, len(keys))
	for _, key := range keys {
		doc, err := model.DecodeDocument([]byte(entries[key]))
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", key, err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Ping checks Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Redis.
func (r *Redis) Client() *redis.Client {
	return r.client
}
