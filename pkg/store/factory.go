package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-training/oauth-playground/pkg/core"
)

// StoreType represents the type of ephemeral store backend.
type StoreType string

const (
	// StoreTypeMemory keeps staged credentials in process memory.
	StoreTypeMemory StoreType = "memory"
	// StoreTypeRedis keeps staged credentials in Redis, shared between replicas.
	StoreTypeRedis StoreType = "redis"
)

// Config contains configuration for creating a store.
type Config struct {
	// Type specifies the store type (memory or redis).
	Type StoreType
	// Redis contains Redis-specific configuration.
	Redis RedisOptions
	// TTL bounds the lifetime of staged values; zero means DefaultTTL.
	TTL time.Duration
}

// Factory creates store instances based on configuration.
type Factory struct {
	config Config
}

// NewFactory creates a new store factory with the provided configuration.
func NewFactory(config Config) *Factory {
	return &Factory{config: config}
}

// Create returns a new store for the configured backend.
func (f *Factory) Create() (core.Store, error) {
	switch f.config.Type {
	case StoreTypeMemory:
		return NewMemoryStore(f.config.TTL), nil
	case StoreTypeRedis:
		return NewRedisStoreFromOptions(f.config.Redis, f.config.TTL)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", f.config.Type)
	}
}

// NewStore is shorthand for NewFactory(config).Create().
func NewStore(config Config) (core.Store, error) {
	return NewFactory(config).Create()
}

// ErrUnknownStoreType is returned by ParseStoreType for unsupported backends.
var ErrUnknownStoreType = errors.New("unknown store type")

// ParseStoreType parses a flag value into a StoreType, case-insensitively.
func ParseStoreType(s string) (StoreType, error) {
	t := StoreType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q (want memory or redis)", ErrUnknownStoreType, s)
	}
	return t, nil
}

// String returns the string representation of a StoreType.
func (t StoreType) String() string {
	return string(t)
}

// IsValid returns true if the StoreType is valid.
func (t StoreType) IsValid() bool {
	return t == StoreTypeMemory || t == StoreTypeRedis
}
