// Package cartfile persists the cart snapshot to a single JSON slot on
// local disk, the storefront's durable-storage analogue.
package cartfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/repositories"
)

const slotFileMode = 0o600

// Repository stores the serialized cart in one named file. Writes go
// through a temp file and rename so a crash cannot leave a torn slot.
type Repository struct {
	path string
}

// NewRepository validates the slot path and ensures its directory exists.
func NewRepository(path string) (*Repository, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("cartfile: slot path is required")
	}
	if dir := filepath.Dir(trimmed); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("cartfile: create slot directory: %w", err)
		}
	}
	return &Repository{path: trimmed}, nil
}

// storedCart is the wire document. Derived totals are deliberately absent:
// they are recomputed on load rather than trusted from storage.
type storedCart struct {
	Lines     []storedLine `json:"lines"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type storedLine struct {
	Product  storedProduct `json:"product"`
	Quantity int           `json:"quantity"`
}

type storedProduct struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         int64    `json:"price"`
	DiscountPrice *int64   `json:"discountPrice,omitempty"`
	Images        []string `json:"images,omitempty"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Reviews       int      `json:"reviews,omitempty"`
	Stock         int      `json:"stock"`
	Featured      bool     `json:"featured,omitempty"`
	New           bool     `json:"new,omitempty"`
}

// Save serializes the snapshot into the slot, replacing any previous value.
func (r *Repository) Save(_ context.Context, snapshot domain.CartSnapshot) error {
	doc := storedCart{
		Lines:     make([]storedLine, 0, len(snapshot.Lines)),
		UpdatedAt: snapshot.UpdatedAt.UTC(),
	}
	for _, line := range snapshot.Lines {
		doc.Lines = append(doc.Lines, storedLine{
			Product:  encodeProduct(line.Product),
			Quantity: line.Quantity,
		})
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return repositories.NewUnavailableError("cartfile: encode snapshot", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, payload, slotFileMode); err != nil {
		return repositories.NewUnavailableError("cartfile: write slot", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return repositories.NewUnavailableError("cartfile: replace slot", err)
	}
	return nil
}

// Load reads the slot back. A missing or malformed slot is a not-found
// condition, not a failure; callers fall back to the empty snapshot.
func (r *Repository) Load(_ context.Context) (domain.CartSnapshot, error) {
	payload, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CartSnapshot{}, repositories.NewNotFoundError("cartfile: slot absent", err)
		}
		return domain.CartSnapshot{}, repositories.NewUnavailableError("cartfile: read slot", err)
	}

	var doc storedCart
	if err := json.Unmarshal(payload, &doc); err != nil {
		return domain.CartSnapshot{}, repositories.NewNotFoundError("cartfile: malformed slot", err)
	}

	snapshot := domain.CartSnapshot{
		Lines:     make([]domain.CartLine, 0, len(doc.Lines)),
		UpdatedAt: doc.UpdatedAt,
	}
	for _, line := range doc.Lines {
		if strings.TrimSpace(line.Product.ID) == "" || line.Quantity < 1 {
			return domain.CartSnapshot{}, repositories.NewNotFoundError("cartfile: malformed slot line", nil)
		}
		snapshot.Lines = append(snapshot.Lines, domain.CartLine{
			Product:  decodeProduct(line.Product),
			Quantity: line.Quantity,
		})
	}
	return snapshot, nil
}

// Clear removes the slot. Clearing an absent slot is a no-op.
func (r *Repository) Clear(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return repositories.NewUnavailableError("cartfile: clear slot", err)
	}
	return nil
}

func encodeProduct(p domain.Product) storedProduct {
	return storedProduct{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Images:        p.Images,
		Category:      p.Category,
		Tags:          p.Tags,
		Rating:        p.Rating,
		Reviews:       p.Reviews,
		Stock:         p.Stock,
		Featured:      p.Featured,
		New:           p.New,
	}
}

func decodeProduct(p storedProduct) domain.Product {
	return domain.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Images:        p.Images,
		Category:      p.Category,
		Tags:          p.Tags,
		Rating:        p.Rating,
		Reviews:       p.Reviews,
		Stock:         p.Stock,
		Featured:      p.Featured,
		New:           p.New,
	}
}
