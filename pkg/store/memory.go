package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrKeyNotFound is returned when a key is not present (or has expired) in the store.
	ErrKeyNotFound = errors.New("key not found")
	// ErrEmptySession is returned when the flow session identifier is empty.
	ErrEmptySession = errors.New("session cannot be empty")
	// ErrEmptyKey is returned when the key string is empty.
	ErrEmptyKey = errors.New("key cannot be empty")
)

// DefaultTTL bounds how long a staged value survives when nobody deletes it.
const DefaultTTL = 10 * time.Minute

// maxSweepInterval caps how long an expired entry can stay resident.
const maxSweepInterval = time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore implements the core.Store interface using an in-memory map.
// It provides thread-safe, session-partitioned storage with per-entry expiry.
// A background janitor drops expired entries until Close is called.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]entry
	ttl      time.Duration
	now      func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a new instance of MemoryStore and starts its janitor.
// A non-positive ttl falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		sessions: make(map[string]map[string]entry),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go m.janitor(min(ttl, maxSweepInterval))
	return m
}

// Close stops the janitor. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

// deleteExpired removes every expired entry and any session left empty.
// It returns the number of entries removed.
func (m *MemoryStore) deleteExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for session, bucket := range m.sessions {
		for key, e := range bucket {
			if !now.Before(e.expiresAt) {
				delete(bucket, key)
				removed++
			}
		}
		if len(bucket) == 0 {
			delete(m.sessions, session)
		}
	}
	return removed
}

// Set stores value under key for the given session.
func (m *MemoryStore) Set(ctx context.Context, session, key, value string) error {
	if err := validate(session, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.sessions[session]
	if !ok {
		bucket = make(map[string]entry)
		m.sessions[session] = bucket
	}
	bucket[key] = entry{value: value, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Get retrieves the value stored under key for the given session.
// It returns ErrKeyNotFound if the key does not exist or has expired.
func (m *MemoryStore) Get(ctx context.Context, session, key string) (string, error) {
	if err := validate(session, key); err != nil {
		return "", err
	}

	m.mu.RLock()
	e, ok := m.sessions[session][key]
	m.mu.RUnlock()

	if !ok {
		return "", ErrKeyNotFound
	}
	if !m.now().Before(e.expiresAt) {
		_ = m.Delete(ctx, session, key)
		return "", ErrKeyNotFound
	}
	return e.value, nil
}

// Delete removes the given keys from the session. Missing keys are ignored.
func (m *MemoryStore) Delete(ctx context.Context, session string, keys ...string) error {
	if session == "" {
		return ErrEmptySession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.sessions[session]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(bucket, key)
	}
	if len(bucket) == 0 {
		delete(m.sessions, session)
	}
	return nil
}

// Len reports the number of live keys held for session.
func (m *MemoryStore) Len(session string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	now := m.now()
	for _, e := range m.sessions[session] {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func validate(session, key string) error {
	if session == "" {
		return ErrEmptySession
	}
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
