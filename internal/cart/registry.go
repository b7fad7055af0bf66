package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry hands out one Manager per signed-in user. The manager is created
// and loaded on first touch; afterwards the same instance (and its cached
// cart) is reused for the rest of the session.
type Registry struct {
	remote RemoteStore
	log    *zap.Logger
	opts   []Option

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(remote RemoteStore, log *zap.Logger, opts ...Option) *Registry {
	return &Registry{
		remote:   remote,
		log:      log,
		opts:     opts,
		managers: make(map[string]*Manager),
	}
}

// ForUser returns the user's manager, loading the remote cart on first touch.
// A failed initial load is logged by the manager and leaves the cart empty;
// it does not block the session (the next Load retries).
func (r *Registry) ForUser(ctx context.Context, userID string) *Manager {
	r.mu.Lock()
	m, ok := r.managers[userID]
	if !ok {
		m = NewManager(r.remote, userID, r.log, r.opts...)
		r.managers[userID] = m
	}
	r.mu.Unlock()

	if !ok {
		_ = m.Load(ctx)
	}
	return m
}
