package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chandraa-ads/sthree-storefront/internal/domain"
	"github.com/chandraa-ads/sthree-storefront/internal/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoUser          = errors.New("no user identity")
	ErrMissingProduct  = errors.New("cart line has no product id")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("line not found in cart")
)

// RemoteStore is the slice of the backend API the manager needs.
// Consumers define this interface, not the HTTP client.
type RemoteStore interface {
	FetchCart(ctx context.Context, userID string) ([]domain.CartLine, error)
	AddLine(ctx context.Context, userID string, line domain.CartLine) ([]domain.CartLine, error)
	UpdateQuantity(ctx context.Context, userID string, line domain.CartLine, quantity int) error
	RemoveLine(ctx context.Context, userID, lineID string) error
	ClearCart(ctx context.Context, userID string) error
}

// Manager holds the authoritative-as-of-last-sync cart for one user.
//
// The local slice is a cache of confirmed remote state, never a guess: no
// operation mutates it optimistically, and on any remote failure it is left
// exactly as it was. The user identity is injected at construction and never
// read from ambient storage.
type Manager struct {
	remote RemoteStore
	log    *zap.Logger
	userID string
	opened func() // fired after a successful add, the old UI opened the cart drawer

	mu    sync.RWMutex
	lines []domain.CartLine

	loads singleflight.Group
	locks keyLocks
}

type Option func(*Manager)

// WithCartOpenedHook registers a callback invoked after every successful add.
func WithCartOpenedHook(fn func()) Option {
	return func(m *Manager) { m.opened = fn }
}

func NewManager(remote RemoteStore, userID string, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		remote: remote,
		log:    log.With(zap.String("user_id", userID)),
		userID: userID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces local state wholesale with the remote cart. Without a user
// identity it is a no-op and the cart stays empty. Concurrent loads for the
// same user collapse into one remote call.
func (m *Manager) Load(ctx context.Context) error {
	if m.userID == "" {
		return nil
	}

	_, err, _ := m.loads.Do(m.userID, func() (interface{}, error) {
		lines, err := m.remote.FetchCart(ctx, m.userID)
		if err != nil {
			m.log.Warn("cart load failed, keeping local state", zap.Error(err))
			return nil, err
		}
		m.replace(lines)
		return nil, nil
	})
	return err
}

// AddItem sends a fully-formed line candidate to the remote store and, on
// success, reconciles local state from the returned authoritative cart. The
// backend decides whether the candidate became a new line or merged into an
// existing one (same product+variant+size+color increments quantity).
//
// Callers are expected to have checked AvailableStock first; the remote store
// still enforces stock on its side.
func (m *Manager) AddItem(ctx context.Context, line domain.CartLine) error {
	if m.userID == "" {
		return ErrNoUser
	}
	if line.ProductID == "" {
		return ErrMissingProduct
	}
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	line.AddedAt = time.Now()

	// Serialize on the merge key so a double-click cannot race two adds of
	// the same selection.
	unlock := m.locks.lock(line.Key())
	defer unlock()

	full, err := m.remote.AddLine(ctx, m.userID, line)
	if err != nil {
		m.log.Error("add to cart failed",
			zap.String("product_id", line.ProductID),
			zap.String("variant_id", line.VariantID),
			zap.Error(err))
		return err
	}

	m.replace(full)
	if m.opened != nil {
		m.opened()
	}
	return nil
}

// UpdateQuantity sets an existing line to a new quantity. Targets below 1 are
// rejected locally before any network call; removal is a distinct operation,
// not a quantity of zero. Mutations on the same line are serialized so two
// rapid clicks apply in order instead of racing.
func (m *Manager) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	unlock := m.locks.lock(lineID)
	defer unlock()

	line, ok := m.line(lineID)
	if !ok {
		return ErrLineNotFound
	}

	if err := m.remote.UpdateQuantity(ctx, m.userID, line, quantity); err != nil {
		m.log.Error("quantity update failed",
			zap.String("line_id", lineID), zap.Int("quantity", quantity), zap.Error(err))
		return err
	}

	// Reconcile from the authoritative cart rather than patching locally.
	// The update itself is confirmed, so if the refetch fails we fall back
	// to applying the acknowledged quantity.
	lines, err := m.remote.FetchCart(ctx, m.userID)
	if err != nil {
		m.log.Warn("cart refetch after update failed, applying acknowledged quantity", zap.Error(err))
		m.patchQuantity(lineID, quantity)
		return nil
	}
	m.replace(lines)
	return nil
}

// RemoveItem deletes one line. An unknown line id is an idempotent no-op.
func (m *Manager) RemoveItem(ctx context.Context, lineID string) error {
	unlock := m.locks.lock(lineID)
	defer unlock()

	if _, ok := m.line(lineID); !ok {
		return nil
	}

	if err := m.remote.RemoveLine(ctx, m.userID, lineID); err != nil {
		m.log.Error("remove from cart failed", zap.String("line_id", lineID), zap.Error(err))
		return err
	}

	lines, err := m.remote.FetchCart(ctx, m.userID)
	if err != nil {
		m.log.Warn("cart refetch after remove failed, filtering locally", zap.Error(err))
		m.filterOut(lineID)
		return nil
	}
	m.replace(lines)
	return nil
}

// ClearCart deletes every line for the user. On success the local cart is
// empty regardless of prior contents.
func (m *Manager) ClearCart(ctx context.Context) error {
	if m.userID == "" {
		return ErrNoUser
	}

	if err := m.remote.ClearCart(ctx, m.userID); err != nil {
		m.log.Error("clear cart failed", zap.Error(err))
		return err
	}

	m.replace(nil)
	return nil
}

// AvailableStock derives how many more units of product+variant the user can
// add right now. Pure computation over the cached lines, no I/O.
func (m *Manager) AvailableStock(p *domain.Product, v *domain.ProductVariant) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return stock.Available(p, v, m.lines)
}

// Lines returns a copy of the cached cart.
func (m *Manager) Lines() []domain.CartLine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CartLine, len(m.lines))
	copy(out, m.lines)
	return out
}

// Subtotal is the sum of unit price times quantity over the cached cart.
func (m *Manager) Subtotal() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Subtotal(m.lines)
}

// Units is the total quantity across all lines, for the cart badge.
func (m *Manager) Units() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Units(m.lines)
}

func (m *Manager) line(id string) (domain.CartLine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lines {
		if l.ID == id {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func (m *Manager) replace(lines []domain.CartLine) {
	m.mu.Lock()
	m.lines = lines
	m.mu.Unlock()
}

func (m *Manager) patchQuantity(lineID string, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lines {
		if m.lines[i].ID == lineID {
			m.lines[i].Quantity = quantity
			return
		}
	}
}

func (m *Manager) filterOut(lineID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.lines[:0]
	for _, l := range m.lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	m.lines = kept
}

// keyLocks serializes mutations per line (or merge key), so overlapping
// requests on the same line wait for each other instead of last-write-wins.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*sync.Mutex)
	}
	l, ok := k.m[key]
	if !ok {
		l = &sync.Mutex{}
		k.m[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
