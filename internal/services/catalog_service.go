package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/repositories"
)

var (
	errCatalogServiceProductsRequired = errors.New("catalog service: product repository is required")

	// ErrCatalogInvalidInput indicates the caller supplied invalid input.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
	// ErrCatalogProductNotFound indicates no product matches the given ID.
	ErrCatalogProductNotFound = errors.New("catalog service: product not found")
	// ErrCatalogUnavailable indicates the underlying catalog failed.
	ErrCatalogUnavailable = errors.New("catalog service: unavailable")
)

const (
	defaultFeaturedLimit = 6
	defaultNewLimit      = 8
)

// CatalogServiceDeps wires the catalog collaborators.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
	Logger   func(context.Context, string, map[string]any)
}

type catalogService struct {
	products repositories.ProductRepository
	logger   func(context.Context, string, map[string]any)
	matcher  *search.Matcher
}

// NewCatalogService validates dependencies and constructs the catalog service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errCatalogServiceProductsRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		products: deps.Products,
		logger:   logger,
		matcher:  search.New(language.Und, search.IgnoreCase, search.IgnoreDiacritics),
	}, nil
}

// ListProducts returns the full catalog in seed order.
func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return products, nil
}

// GetProduct fetches a single product by ID.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Product{}, ErrCatalogProductNotFound
		}
		return domain.Product{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return product, nil
}

// FeaturedProducts returns featured products up to the limit. Featured is
// an ordinary filter over the catalog, so other criteria stack on top of
// it through FilterProducts without surprises.
func (s *catalogService) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	return s.FilterProducts(ctx, ProductFilter{FeaturedOnly: true, Limit: limit})
}

// NewProducts returns products flagged as new, up to the limit.
func (s *catalogService) NewProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultNewLimit
	}
	return s.FilterProducts(ctx, ProductFilter{NewOnly: true, Limit: limit})
}

// SearchProducts matches the query against name, description, and tags,
// case- and diacritic-insensitively. A blank query returns the full
// catalog.
func (s *catalogService) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if query == "" {
		return products, nil
	}

	pattern := s.matcher.CompileString(query)
	matched := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if s.matchesQuery(product, pattern) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (s *catalogService) matchesQuery(product domain.Product, pattern *search.Pattern) bool {
	if start, _ := pattern.IndexString(product.Name); start >= 0 {
		return true
	}
	if start, _ := pattern.IndexString(product.Description); start >= 0 {
		return true
	}
	for _, tag := range product.Tags {
		if start, _ := pattern.IndexString(tag); start >= 0 {
			return true
		}
	}
	return false
}

// FilterProducts applies every criterion in one pass over the catalog.
// Price bounds compare against the base price, not the discount price.
func (s *catalogService) FilterProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	category := strings.TrimSpace(filter.Category)
	tags := make([]string, 0, len(filter.Tags))
	for _, tag := range filter.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	matched := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if category != "" && !strings.EqualFold(product.Category, category) {
			continue
		}
		if filter.MinPrice != nil && product.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && product.Price > *filter.MaxPrice {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(product.Tags, tags) {
			continue
		}
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

func hasAnyTag(productTags, wanted []string) bool {
	for _, tag := range productTags {
		for _, want := range wanted {
			if strings.EqualFold(tag, want) {
				return true
			}
		}
	}
	return false
}

// Categories returns the distinct categories in first-seen order.
func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	seen := make(map[string]struct{}, len(products))
	categories := make([]string, 0, len(products))
	for _, product := range products {
		category := strings.TrimSpace(product.Category)
		if category == "" {
			continue
		}
		key := strings.ToLower(category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		categories = append(categories, category)
	}
	return categories, nil
}

// Tags returns the distinct tags in first-seen order.
func (s *catalogService) Tags(ctx context.Context) ([]string, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, product := range products {
		for _, tag := range product.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
