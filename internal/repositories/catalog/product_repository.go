// Package catalog loads the read-only product catalog from a YAML seed
// file and serves it from memory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/repositories"
)

// Repository holds the decoded catalog. Products are immutable after load;
// List and FindByID hand out copies.
type Repository struct {
	products []domain.Product
	byID     map[string]int
}

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID            string       `yaml:"id"`
	Name          string       `yaml:"name"`
	Description   string       `yaml:"description"`
	Price         int64        `yaml:"price"`
	DiscountPrice *int64       `yaml:"discountPrice"`
	Images        []string     `yaml:"images"`
	Category      string       `yaml:"category"`
	Tags          []string     `yaml:"tags"`
	Rating        float64      `yaml:"rating"`
	Reviews       int          `yaml:"reviews"`
	Stock         int          `yaml:"stock"`
	Featured      bool         `yaml:"featured"`
	New           bool         `yaml:"new"`
	Details       *seedDetails `yaml:"details"`
}

type seedDetails struct {
	Dimensions string   `yaml:"dimensions"`
	Weight     string   `yaml:"weight"`
	Materials  []string `yaml:"materials"`
	Colors     []string `yaml:"colors"`
	Features   []string `yaml:"features"`
}

// NewRepositoryFromFile reads and validates the seed file at path.
func NewRepositoryFromFile(path string) (*Repository, error) {
	payload, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("catalog: read seed file: %w", err)
	}
	return NewRepository(payload)
}

// NewRepository decodes a YAML catalog seed.
func NewRepository(payload []byte) (*Repository, error) {
	var seed seedFile
	if err := yaml.Unmarshal(payload, &seed); err != nil {
		return nil, fmt.Errorf("catalog: decode seed: %w", err)
	}
	if len(seed.Products) == 0 {
		return nil, errors.New("catalog: seed contains no products")
	}

	repo := &Repository{
		products: make([]domain.Product, 0, len(seed.Products)),
		byID:     make(map[string]int, len(seed.Products)),
	}
	for i, p := range seed.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: product %d is missing an id", i)
		}
		if _, dup := repo.byID[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", id)
		}
		if p.Price < 0 || p.Stock < 0 {
			return nil, fmt.Errorf("catalog: product %q has negative price or stock", id)
		}
		if p.DiscountPrice != nil && *p.DiscountPrice >= p.Price {
			return nil, fmt.Errorf("catalog: product %q discount price must be below base price", id)
		}
		repo.byID[id] = len(repo.products)
		repo.products = append(repo.products, decodeSeedProduct(p, id))
	}
	return repo, nil
}

// List returns a copy of every product in seed order.
func (r *Repository) List(_ context.Context) ([]domain.Product, error) {
	return domain.CloneProducts(r.products), nil
}

// FindByID returns the product or a not-found repository error.
func (r *Repository) FindByID(_ context.Context, productID string) (domain.Product, error) {
	idx, ok := r.byID[strings.TrimSpace(productID)]
	if !ok {
		return domain.Product{}, repositories.NewNotFoundError("catalog: product not found", nil)
	}
	products := domain.CloneProducts(r.products[idx : idx+1])
	return products[0], nil
}

func decodeSeedProduct(p seedProduct, id string) domain.Product {
	product := domain.Product{
		ID:            id,
		Name:          strings.TrimSpace(p.Name),
		Description:   strings.TrimSpace(p.Description),
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Images:        p.Images,
		Category:      strings.TrimSpace(p.Category),
		Tags:          p.Tags,
		Rating:        p.Rating,
		Reviews:       p.Reviews,
		Stock:         p.Stock,
		Featured:      p.Featured,
		New:           p.New,
	}
	if p.Details != nil {
		product.Details = &domain.ProductDetails{
			Dimensions: p.Details.Dimensions,
			Weight:     p.Details.Weight,
			Materials:  p.Details.Materials,
			Colors:     p.Details.Colors,
			Features:   p.Details.Features,
		}
	}
	return product
}
