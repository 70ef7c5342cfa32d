package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Key prefix for Redis storage
const sessionPrefix = "oauth_session:"

// RedisStore implements the core.Store interface using Redis via rueidis.
// Every value is written with an expiry so abandoned flows age out.
type RedisStore struct {
	client rueidis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client, ttl time.Duration) *RedisStore {
	if ttl < time.Second {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions, ttl time.Duration) (*RedisStore, error) {
	return NewRedisStoreFromClientOption(rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	}, ttl)
}

// NewRedisStoreFromClientOption creates a new RedisStore with full rueidis client options.
func NewRedisStoreFromClientOption(opts rueidis.ClientOption, ttl time.Duration) (*RedisStore, error) {
	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

// Ping checks that the Redis server is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Do(ctx, r.client.B().Ping().Build()).Error()
}

func redisKey(session, key string) string {
	return sessionPrefix + session + ":" + key
}

// Set stores value under key for the given session with the store TTL.
func (r *RedisStore) Set(ctx context.Context, session, key, value string) error {
	if err := validate(session, key); err != nil {
		return err
	}

	cmd := r.client.B().Set().Key(redisKey(session, key)).Value(value).ExSeconds(int64(r.ttl.Seconds())).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", key, err)
	}
	return nil
}

// Get retrieves the value stored under key for the given session.
// It returns ErrKeyNotFound if the key does not exist or has expired.
// Client-side caching is not used: a delete must be visible to the next read.
func (r *RedisStore) Get(ctx context.Context, session, key string) (string, error) {
	if err := validate(session, key); err != nil {
		return "", err
	}

	cmd := r.client.B().Get().Key(redisKey(session, key)).Build()
	result, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return result, nil
}

// Delete removes the given keys from the session. Missing keys are ignored.
func (r *RedisStore) Delete(ctx context.Context, session string, keys ...string) error {
	if session == "" {
		return ErrEmptySession
	}
	if len(keys) == 0 {
		return nil
	}

	redisKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		redisKeys = append(redisKeys, redisKey(session, key))
	}

	cmd := r.client.B().Del().Key(redisKeys...).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete keys from redis: %w", err)
	}
	return nil
}
