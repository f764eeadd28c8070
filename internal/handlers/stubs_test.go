package handlers

import (
	"context"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/services"
)

type stubCartStore struct {
	snapshot      domain.CartSnapshot
	addFunc       func(ctx context.Context, product domain.Product, quantity int) (domain.CartSnapshot, error)
	removeFunc    func(ctx context.Context, productID string) (domain.CartSnapshot, error)
	updateFunc    func(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error)
	clearFunc     func(ctx context.Context) (domain.CartSnapshot, error)
	subscribeFunc func(buffer int) (<-chan domain.CartSnapshot, func())
}

func (s *stubCartStore) Snapshot() domain.CartSnapshot {
	return s.snapshot.Clone()
}

func (s *stubCartStore) AddLine(ctx context.Context, product domain.Product, quantity int) (domain.CartSnapshot, error) {
	if s.addFunc != nil {
		return s.addFunc(ctx, product, quantity)
	}
	return s.snapshot, nil
}

func (s *stubCartStore) RemoveLine(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	if s.removeFunc != nil {
		return s.removeFunc(ctx, productID)
	}
	return s.snapshot, nil
}

func (s *stubCartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, productID, quantity)
	}
	return s.snapshot, nil
}

func (s *stubCartStore) Clear(ctx context.Context) (domain.CartSnapshot, error) {
	if s.clearFunc != nil {
		return s.clearFunc(ctx)
	}
	return domain.CartSnapshot{Lines: []domain.CartLine{}}, nil
}

func (s *stubCartStore) Subscribe(buffer int) (<-chan domain.CartSnapshot, func()) {
	if s.subscribeFunc != nil {
		return s.subscribeFunc(buffer)
	}
	ch := make(chan domain.CartSnapshot, buffer)
	return ch, func() { close(ch) }
}

type stubCatalogService struct {
	products   []domain.Product
	getFunc    func(ctx context.Context, productID string) (domain.Product, error)
	searchFunc func(ctx context.Context, query string) ([]domain.Product, error)
	filterFunc func(ctx context.Context, filter services.ProductFilter) ([]domain.Product, error)
}

func (s *stubCatalogService) ListProducts(context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, productID)
	}
	for _, product := range s.products {
		if product.ID == productID {
			return product, nil
		}
	}
	return domain.Product{}, services.ErrCatalogProductNotFound
}

func (s *stubCatalogService) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.FilterProducts(ctx, services.ProductFilter{FeaturedOnly: true, Limit: limit})
}

func (s *stubCatalogService) NewProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.FilterProducts(ctx, services.ProductFilter{NewOnly: true, Limit: limit})
}

func (s *stubCatalogService) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	if s.searchFunc != nil {
		return s.searchFunc(ctx, query)
	}
	return s.products, nil
}

func (s *stubCatalogService) FilterProducts(ctx context.Context, filter services.ProductFilter) ([]domain.Product, error) {
	if s.filterFunc != nil {
		return s.filterFunc(ctx, filter)
	}
	matched := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		if filter.FeaturedOnly && !product.Featured {
			continue
		}
		if filter.NewOnly && !product.New {
			continue
		}
		matched = append(matched, product)
		if filter.Limit > 0 && len(matched) >= filter.Limit {
			break
		}
	}
	return matched, nil
}

func (s *stubCatalogService) Categories(context.Context) ([]string, error) {
	return []string{"Kitchen"}, nil
}

func (s *stubCatalogService) Tags(context.Context) ([]string, error) {
	return []string{"wood"}, nil
}

type stubOrderService struct {
	placeFunc func(ctx context.Context, cmd services.PlaceOrderCommand) (*services.Placement, error)
	getFunc   func(ctx context.Context, orderID string) (domain.Order, error)
	listFunc  func(ctx context.Context) ([]domain.Order, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, cmd services.PlaceOrderCommand) (*services.Placement, error) {
	if s.placeFunc != nil {
		return s.placeFunc(ctx, cmd)
	}
	return nil, services.ErrOrderUnavailable
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, orderID)
	}
	return domain.Order{}, services.ErrOrderNotFound
}

func (s *stubOrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx)
	}
	return nil, nil
}
