package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/platform/httpx"
	"github.com/wishlane/storefront/internal/services"
)

const (
	maxCartBodySize = 16 * 1024
	cartEventBuffer = 8
)

// CartHandlers exposes the cart endpoints for the storefront session.
type CartHandlers struct {
	cart    services.CartStore
	catalog services.CatalogService
}

// NewCartHandlers constructs handlers backed by the cart store and catalog.
func NewCartHandlers(cart services.CartStore, catalog services.CatalogService) *CartHandlers {
	return &CartHandlers{cart: cart, catalog: catalog}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Get("/events", h.streamEvents)
	r.Post("/items", h.addItem)
	r.Patch("/items/{productID}", h.updateItem)
	r.Delete("/items/{productID}", h.removeItem)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		writeCartUnavailable(ctx, w)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(h.cart.Snapshot())})
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil || h.catalog == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req addItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId is required", http.StatusBadRequest))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity must be at least 1", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCatalogProductNotFound):
			httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
		case errors.Is(err, services.ErrCatalogInvalidInput):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		default:
			writeCatalogUnavailable(ctx, w)
		}
		return
	}

	quantity, err := clampToStock(h.cart.Snapshot(), product, req.Quantity)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_stock", err.Error(), http.StatusConflict).
			WithDetails(map[string]any{"productId": product.ID, "stock": product.Stock}))
		return
	}

	snapshot, err := h.cart.AddLine(ctx, product, quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(snapshot)})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	body, err := readLimitedBody(r, maxCartBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req updateItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	if req.Quantity < 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity must not be negative", http.StatusBadRequest))
		return
	}

	snapshot, err := h.cart.UpdateQuantity(ctx, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(snapshot)})
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	snapshot, err := h.cart.RemoveLine(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(snapshot)})
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	snapshot, err := h.cart.Clear(ctx)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(snapshot)})
}

// streamEvents pushes cart snapshots as server-sent events. The current
// snapshot is sent immediately so new listeners render without waiting for
// a mutation.
func (h *CartHandlers) streamEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil {
		writeCartUnavailable(ctx, w)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("streaming_unsupported", "response writer does not support streaming", http.StatusInternalServerError))
		return
	}

	events, unsubscribe := h.cart.Subscribe(cartEventBuffer)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeCartEvent(w, h.cart.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, open := <-events:
			if !open {
				return
			}
			if err := writeCartEvent(w, snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeCartEvent(w http.ResponseWriter, snapshot domain.CartSnapshot) error {
	payload, err := json.Marshal(map[string]any{"cart": buildCartPayload(snapshot)})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: cart\ndata: %s\n\n", payload)
	return err
}

// clampToStock caps the requested addition so the resulting line quantity
// never exceeds the product's stock. A product with zero recorded stock is
// treated as unlimited.
func clampToStock(snapshot domain.CartSnapshot, product domain.Product, requested int) (int, error) {
	if product.Stock <= 0 {
		return requested, nil
	}
	inCart := 0
	for _, line := range snapshot.Lines {
		if line.Product.ID == product.ID {
			inCart = line.Quantity
			break
		}
	}
	available := product.Stock - inCart
	if available <= 0 {
		return 0, fmt.Errorf("no remaining stock for product %s", product.ID)
	}
	if requested > available {
		return available, nil
	}
	return requested, nil
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		writeCartUnavailable(ctx, w)
	}
}

func writeCartUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("cart_unavailable", "cart is unavailable", http.StatusServiceUnavailable))
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	}
}
