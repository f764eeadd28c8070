package repositories

import (
	"context"

	"github.com/wishlane/storefront/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation
// used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository owns the single durable cart slot. Load reports not-found
// for both a missing and a corrupt slot; the stored document never carries
// trusted totals, so callers recompute after every Load.
type CartRepository interface {
	Save(ctx context.Context, snapshot domain.CartSnapshot) error
	Load(ctx context.Context) (domain.CartSnapshot, error)
	Clear(ctx context.Context) error
}

// OrderRepository is the in-memory order registry keyed by order ID.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// ProductRepository supplies read-only catalog records.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, productID string) (domain.Product, error)
}
