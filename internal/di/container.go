// Package di assembles the storefront runtime: repositories, services, and
// the idempotency store, wired from configuration.
package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/platform/config"
	"github.com/wishlane/storefront/internal/platform/idempotency"
	"github.com/wishlane/storefront/internal/platform/observability"
	"github.com/wishlane/storefront/internal/platform/session"
	"github.com/wishlane/storefront/internal/repositories"
	"github.com/wishlane/storefront/internal/repositories/cartfile"
	"github.com/wishlane/storefront/internal/repositories/catalog"
	"github.com/wishlane/storefront/internal/repositories/memory"
	"github.com/wishlane/storefront/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Cart    services.CartStore
	Catalog services.CatalogService
	Orders  services.OrderService
}

// Repositories bundles the storage implementations behind the services.
type Repositories struct {
	Cart     repositories.CartRepository
	Orders   repositories.OrderRepository
	Products repositories.ProductRepository
}

// Container wires repositories, services, and shared infrastructure for
// runtime use.
type Container struct {
	Config       config.Config
	Repositories Repositories
	Services     Services
	Sessions     *session.Store
	Idempotency  *idempotency.MemoryStore
}

// NewContainer constructs the runtime dependencies from configuration.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cartRepo, err := cartfile.NewRepository(cfg.Persistence.CartSlotFile)
	if err != nil {
		return nil, fmt.Errorf("build cart repository: %w", err)
	}
	productRepo, err := catalog.NewRepositoryFromFile(cfg.Catalog.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("build product repository: %w", err)
	}
	orderRepo := memory.NewOrderRepository()

	policy := domain.PricingPolicy{
		TaxRate:               cfg.Pricing.TaxRate,
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		ShippingFlatCost:      cfg.Pricing.ShippingFlatCost,
	}

	cartStore, err := services.NewCartStore(ctx, services.CartStoreDeps{
		Repository: cartRepo,
		Policy:     policy,
		Clock:      time.Now,
		Logger:     observability.ServiceLogger(logger.Named("cart")),
	})
	if err != nil {
		return nil, fmt.Errorf("build cart store: %w", err)
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: productRepo,
		Logger:   observability.ServiceLogger(logger.Named("catalog")),
	})
	if err != nil {
		return nil, fmt.Errorf("build catalog service: %w", err)
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:  orderRepo,
		Cart:    cartStore,
		Gateway: services.SimulatedGateway{Delay: cfg.Checkout.AckDelay},
		Clock:   time.Now,
		Logger:  observability.ServiceLogger(logger.Named("orders")),
	})
	if err != nil {
		return nil, fmt.Errorf("build order service: %w", err)
	}

	return &Container{
		Config: cfg,
		Repositories: Repositories{
			Cart:     cartRepo,
			Orders:   orderRepo,
			Products: productRepo,
		},
		Services: Services{
			Cart:    cartStore,
			Catalog: catalogService,
			Orders:  orderService,
		},
		Sessions:    session.NewStore(),
		Idempotency: idempotency.NewMemoryStore(),
	}, nil
}
