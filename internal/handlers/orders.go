package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wishlane/storefront/internal/platform/httpx"
	"github.com/wishlane/storefront/internal/platform/session"
	"github.com/wishlane/storefront/internal/services"
)

// OrderHandlers exposes the order history endpoints.
type OrderHandlers struct {
	orders   services.OrderService
	sessions *session.Store
}

// NewOrderHandlers constructs handlers backed by the order service.
func NewOrderHandlers(orders services.OrderService, sessions *session.Store) *OrderHandlers {
	return &OrderHandlers{orders: orders, sessions: sessions}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listOrders)
	r.Get("/latest", h.latestOrder)
	r.Get("/{orderID}", h.getOrder)
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeOrdersUnavailable(ctx, w)
		return
	}

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	payloads := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payloads = append(payloads, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"orders": payloads})
}

// latestOrder resolves the order recorded by the most recent checkout in
// this session, the confirmation-view lookup.
func (h *OrderHandlers) latestOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeOrdersUnavailable(ctx, w)
		return
	}

	if h.sessions == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "no order has been placed in this session", http.StatusNotFound))
		return
	}
	orderID, ok := h.sessions.Get(session.LastOrderKey)
	if !ok || orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "no order has been placed in this session", http.StatusNotFound))
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": buildOrderPayload(order)})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeOrdersUnavailable(ctx, w)
		return
	}

	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": buildOrderPayload(order)})
}

func (h *OrderHandlers) writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	default:
		writeOrdersUnavailable(ctx, w)
	}
}

func writeOrdersUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "orders are unavailable", http.StatusServiceUnavailable))
}
