// Package memory holds the in-memory order registry. Orders live for the
// process lifetime only; there is no backend in this core.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/repositories"
)

// OrderRepository keys orders by identifier and guards them with a mutex so
// the placement goroutine and readers never race.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewOrderRepository constructs an empty registry.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]domain.Order)}
}

// Insert stores the order, rejecting duplicate identifiers.
func (r *OrderRepository) Insert(_ context.Context, order domain.Order) error {
	id := strings.TrimSpace(order.ID)
	if id == "" {
		return repositories.NewConflictError("memory: order id is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[id]; exists {
		return repositories.NewConflictError("memory: duplicate order id", nil)
	}
	order.Cart = order.Cart.Clone()
	r.orders[id] = order
	return nil
}

// FindByID returns a copy of the stored order or a not-found error.
func (r *OrderRepository) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[strings.TrimSpace(orderID)]
	if !ok {
		return domain.Order{}, repositories.NewNotFoundError("memory: order not found", nil)
	}
	order.Cart = order.Cart.Clone()
	return order, nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		order.Cart = order.Cart.Clone()
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
