package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/services"
)

func productTestRouter(catalog services.CatalogService) http.Handler {
	return NewRouter(
		WithProductRoutes(NewProductHandlers(catalog).Routes),
	)
}

func decodeProductList(t *testing.T, rr *httptest.ResponseRecorder) []productPayload {
	t.Helper()
	var body struct {
		Products []productPayload `json:"products"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return body.Products
}

func TestProductHandlersList(t *testing.T) {
	catalog := &stubCatalogService{
		products: []domain.Product{
			{ID: "p1", Name: "Walnut Serving Tray", Price: 4500},
			{ID: "p2", Name: "Ceramic Mug", Price: 1800},
		},
	}
	router := productTestRouter(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	products := decodeProductList(t, rr)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}

func TestProductHandlersListWithSearchQuery(t *testing.T) {
	var searched string
	catalog := &stubCatalogService{
		searchFunc: func(ctx context.Context, query string) ([]domain.Product, error) {
			searched = query
			return []domain.Product{{ID: "p1", Name: "Walnut Serving Tray", Price: 4500}}, nil
		},
	}
	router := productTestRouter(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=walnut", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if searched != "walnut" {
		t.Fatalf("expected search query forwarded, got %q", searched)
	}
}

func TestProductHandlersListForwardsFilter(t *testing.T) {
	var captured services.ProductFilter
	catalog := &stubCatalogService{
		filterFunc: func(ctx context.Context, filter services.ProductFilter) ([]domain.Product, error) {
			captured = filter
			return nil, nil
		},
	}
	router := productTestRouter(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=Kitchen&minPrice=1000&maxPrice=5000&tags=wood,handmade&featured=true&limit=3", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if captured.Category != "Kitchen" {
		t.Fatalf("expected category Kitchen, got %q", captured.Category)
	}
	if captured.MinPrice == nil || *captured.MinPrice != 1000 {
		t.Fatalf("expected min price 1000, got %v", captured.MinPrice)
	}
	if captured.MaxPrice == nil || *captured.MaxPrice != 5000 {
		t.Fatalf("expected max price 5000, got %v", captured.MaxPrice)
	}
	if len(captured.Tags) != 2 || captured.Tags[0] != "wood" {
		t.Fatalf("expected tags forwarded, got %v", captured.Tags)
	}
	if !captured.FeaturedOnly {
		t.Fatalf("expected featured flag set")
	}
	if captured.Limit != 3 {
		t.Fatalf("expected limit 3, got %d", captured.Limit)
	}
}

func TestProductHandlersListRejectsBadPrice(t *testing.T) {
	router := productTestRouter(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?minPrice=abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestProductHandlersFeatured(t *testing.T) {
	catalog := &stubCatalogService{
		products: []domain.Product{
			{ID: "p1", Featured: true},
			{ID: "p2"},
			{ID: "p3", Featured: true},
		},
	}
	router := productTestRouter(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/featured", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	products := decodeProductList(t, rr)
	if len(products) != 2 {
		t.Fatalf("expected 2 featured products, got %d", len(products))
	}
}

func TestProductHandlersGetProduct(t *testing.T) {
	catalog := &stubCatalogService{
		products: []domain.Product{{ID: "p1", Name: "Walnut Serving Tray", Price: 4500}},
	}
	router := productTestRouter(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/p1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Product productPayload `json:"product"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Product.Name != "Walnut Serving Tray" {
		t.Fatalf("unexpected product %+v", body.Product)
	}
}

func TestProductHandlersGetProductNotFound(t *testing.T) {
	router := productTestRouter(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestProductHandlersCategoriesAndTags(t *testing.T) {
	router := productTestRouter(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/categories", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for categories, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/tags", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for tags, got %d", rr.Code)
	}
}
