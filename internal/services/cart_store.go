package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/repositories"
)

var (
	errCartStoreRepositoryRequired = errors.New("cart store: repository is required")

	// ErrCartInvalidInput indicates the caller supplied invalid input.
	ErrCartInvalidInput = errors.New("cart store: invalid input")
	// ErrCartUnavailable indicates the durable slot rejected a write; the
	// previous snapshot remains in effect.
	ErrCartUnavailable = errors.New("cart store: unavailable")
)

// CartStoreDeps wires the persistence and pricing dependencies for the cart store.
type CartStoreDeps struct {
	Repository repositories.CartRepository
	Policy     domain.PricingPolicy
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartStore struct {
	repo   repositories.CartRepository
	policy domain.PricingPolicy
	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	mu      sync.RWMutex
	current domain.CartSnapshot

	subMu   sync.Mutex
	subs    map[int]chan domain.CartSnapshot
	nextSub int
}

// NewCartStore constructs the cart store and restores the persisted
// snapshot. A missing or corrupt slot falls back to the empty snapshot;
// restore failure is recoverable and never surfaces to the caller.
func NewCartStore(ctx context.Context, deps CartStoreDeps) (CartStore, error) {
	if deps.Repository == nil {
		return nil, errCartStoreRepositoryRequired
	}

	policy := deps.Policy
	if policy == (domain.PricingPolicy{}) {
		policy = domain.DefaultPricingPolicy()
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	store := &cartStore{
		repo:   deps.Repository,
		policy: policy,
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
		subs:   map[int]chan domain.CartSnapshot{},
	}
	store.restore(ctx)
	return store, nil
}

func (s *cartStore) restore(ctx context.Context) {
	saved, err := s.repo.Load(ctx)
	if err != nil {
		if !repositories.IsNotFound(err) {
			s.logger(ctx, "cart.restore_failed", map[string]any{"error": err.Error()})
		}
		s.current = s.emptySnapshot()
		return
	}

	lines := normaliseLines(saved.Lines)
	updatedAt := saved.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	// Stored totals are never trusted; derive them fresh from the lines.
	s.current = domain.CartSnapshot{
		Lines:     lines,
		Totals:    s.policy.Totals(lines),
		UpdatedAt: updatedAt,
	}
}

// Snapshot returns a read-only copy of the current snapshot.
func (s *cartStore) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// AddLine merges the product into the cart: an existing line has its
// quantity incremented, otherwise a new line is appended preserving
// insertion order.
func (s *cartStore) AddLine(ctx context.Context, product domain.Product, quantity int) (domain.CartSnapshot, error) {
	productID := strings.TrimSpace(product.ID)
	if productID == "" {
		return domain.CartSnapshot{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if quantity < 1 {
		return domain.CartSnapshot{}, fmt.Errorf("%w: quantity must be at least 1", ErrCartInvalidInput)
	}
	if product.Price < 0 {
		return domain.CartSnapshot{}, fmt.Errorf("%w: product price must not be negative", ErrCartInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := domain.CloneCartLines(s.current.Lines)
	merged := false
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, domain.CartLine{Product: product, Quantity: quantity})
	}

	return s.commit(ctx, lines)
}

// RemoveLine deletes the matching line. Removing an absent product is a
// no-op, not an error.
func (s *cartStore) RemoveLine(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.CartSnapshot{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := domain.CloneCartLines(s.current.Lines)
	filtered := lines[:0]
	found := false
	for _, line := range lines {
		if line.Product.ID == productID {
			found = true
			continue
		}
		filtered = append(filtered, line)
	}
	if !found {
		return s.current.Clone(), nil
	}

	return s.commit(ctx, filtered)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// behaves as RemoveLine. Stock clamping is a caller concern.
func (s *cartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	if quantity <= 0 {
		return s.RemoveLine(ctx, productID)
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.CartSnapshot{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := domain.CloneCartLines(s.current.Lines)
	found := false
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return s.current.Clone(), nil
	}

	return s.commit(ctx, lines)
}

// Clear resets to the empty snapshot and removes the persisted slot.
func (s *cartStore) Clear(ctx context.Context) (domain.CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger(ctx, "cart.clear_failed", map[string]any{"error": err.Error()})
		return domain.CartSnapshot{}, ErrCartUnavailable
	}

	s.current = s.emptySnapshot()
	s.publish(s.current)
	return s.current.Clone(), nil
}

// Subscribe registers a snapshot feed. The returned function unsubscribes
// and closes the channel; callers must invoke it to avoid leaks. Slow
// consumers drop events rather than stall mutations.
func (s *cartStore) Subscribe(buffer int) (<-chan domain.CartSnapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.CartSnapshot, buffer)
	s.subs[id] = ch
	s.subMu.Unlock()

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

// commit derives totals from scratch, persists the snapshot, and only then
// makes it current and publishes it. Callers hold the write lock.
func (s *cartStore) commit(ctx context.Context, lines []domain.CartLine) (domain.CartSnapshot, error) {
	next := domain.CartSnapshot{
		Lines:     lines,
		Totals:    s.policy.Totals(lines),
		UpdatedAt: s.now(),
	}

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger(ctx, "cart.save_failed", map[string]any{"error": err.Error()})
		return domain.CartSnapshot{}, ErrCartUnavailable
	}

	s.current = next
	s.publish(next)
	return next.Clone(), nil
}

func (s *cartStore) publish(snapshot domain.CartSnapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot.Clone():
		default:
		}
	}
}

func (s *cartStore) emptySnapshot() domain.CartSnapshot {
	return domain.CartSnapshot{
		Lines:     []domain.CartLine{},
		UpdatedAt: s.now(),
	}
}

// normaliseLines drops invalid persisted lines and merges duplicates so the
// one-line-per-product invariant holds even for a hand-edited slot.
func normaliseLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		id := strings.TrimSpace(line.Product.ID)
		if id == "" || line.Quantity < 1 {
			continue
		}
		if at, ok := index[id]; ok {
			out[at].Quantity += line.Quantity
			continue
		}
		index[id] = len(out)
		out = append(out, line)
	}
	return domain.CloneCartLines(out)
}
