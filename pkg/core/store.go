package core

import "context"

// Keys under which the capture step stages credentials for the callback.
const (
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
)

// Credential is the application credential typed in by the operator.
// It must never be logged and lives only until one exchange attempt ends.
type Credential struct {
	ClientID     string
	ClientSecret string
}

// Store is an ephemeral key/value store partitioned by flow session.
// Values written with Set expire on their own after the backend's TTL,
// but callers are expected to Delete them explicitly.
type Store interface {
	Set(ctx context.Context, session, key, value string) error
	Get(ctx context.Context, session, key string) (string, error)
	Delete(ctx context.Context, session string, keys ...string) error
}

// KV is a Store view bound to a single flow session.
type KV interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}
