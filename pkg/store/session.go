package store

import (
	"context"

	"github.com/go-training/oauth-playground/pkg/core"
)

// sessionKV binds a core.Store to one flow session.
type sessionKV struct {
	store   core.Store
	session string
}

// ForSession returns a core.KV that reads and writes only the given session.
func ForSession(store core.Store, session string) core.KV {
	return &sessionKV{store: store, session: session}
}

func (s *sessionKV) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.session, key, value)
}

func (s *sessionKV) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.session, key)
}

func (s *sessionKV) Delete(ctx context.Context, keys ...string) error {
	return s.store.Delete(ctx, s.session, keys...)
}
