package services

import (
	"context"

	"github.com/wishlane/storefront/internal/domain"
)

// CartStore owns the single authoritative cart snapshot for the session.
// Every mutation recomputes derived totals in full, persists the new
// snapshot, and publishes it to subscribers.
type CartStore interface {
	Snapshot() domain.CartSnapshot
	AddLine(ctx context.Context, product domain.Product, quantity int) (domain.CartSnapshot, error)
	RemoveLine(ctx context.Context, productID string) (domain.CartSnapshot, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error)
	Clear(ctx context.Context) (domain.CartSnapshot, error)
	Subscribe(buffer int) (<-chan domain.CartSnapshot, func())
}

// PlaceOrderCommand carries everything needed to place an order. The cart
// snapshot is the one the caller saw; the service freezes its own copy.
type PlaceOrderCommand struct {
	Customer        domain.Customer
	ShippingAddress domain.Address
	BillingAddress  *domain.Address
	Payment         domain.PaymentCard
	Cart            domain.CartSnapshot
}

// OrderService places orders against the in-memory registry.
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*Placement, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// ProductFilter narrows a catalog listing. All criteria are combined in a
// single pass; Featured and New are ordinary filter fields, not a separate
// query channel.
type ProductFilter struct {
	Category     string
	MinPrice     *int64
	MaxPrice     *int64
	Tags         []string
	FeaturedOnly bool
	NewOnly      bool
	Limit        int
}

// CatalogService is the read-only product catalog collaborator.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error)
	NewProducts(ctx context.Context, limit int) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	FilterProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
}
