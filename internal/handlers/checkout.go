package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/platform/httpx"
	"github.com/wishlane/storefront/internal/platform/session"
	"github.com/wishlane/storefront/internal/services"
)

const maxCheckoutBodySize = 32 * 1024

// CheckoutHandlers exposes the order placement endpoint. The route sits
// behind the idempotency middleware so a double submission replays the
// first response instead of placing twice.
type CheckoutHandlers struct {
	cart     services.CartStore
	orders   services.OrderService
	sessions *session.Store
}

// NewCheckoutHandlers constructs the checkout endpoint handlers.
func NewCheckoutHandlers(cart services.CartStore, orders services.OrderService, sessions *session.Store) *CheckoutHandlers {
	return &CheckoutHandlers{cart: cart, orders: orders, sessions: sessions}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/orders", h.placeOrder)
}

type checkoutRequest struct {
	Customer        customerPayload `json:"customer"`
	ShippingAddress addressPayload  `json:"shippingAddress"`
	BillingAddress  *addressPayload `json:"billingAddress"`
	Payment         struct {
		CardNumber string `json:"cardNumber"`
		NameOnCard string `json:"nameOnCard"`
		Expiry     string `json:"expiry"`
		CVC        string `json:"cvc"`
	} `json:"payment"`
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cart == nil || h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req checkoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	cmd := services.PlaceOrderCommand{
		Customer: domain.Customer{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
		ShippingAddress: decodeAddressPayload(req.ShippingAddress),
		Payment: domain.PaymentCard{
			CardNumber: req.Payment.CardNumber,
			NameOnCard: req.Payment.NameOnCard,
			Expiry:     req.Payment.Expiry,
			CVC:        req.Payment.CVC,
		},
		Cart: h.cart.Snapshot(),
	}
	if req.BillingAddress != nil {
		billing := decodeAddressPayload(*req.BillingAddress)
		cmd.BillingAddress = &billing
	}

	placement, err := h.orders.PlaceOrder(ctx, cmd)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	// The confirmation blocks until the simulated gateway acknowledges,
	// mirroring a buyer waiting on the checkout screen.
	order, err := placement.Result()
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	if h.sessions != nil {
		h.sessions.Set(session.LastOrderKey, order.ID)
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"order": buildOrderPayload(order)})
}

func (h *CheckoutHandlers) writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cannot place an order with an empty cart", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderRejected):
		httpx.WriteError(ctx, w, httpx.NewError("order_rejected", "order was rejected; the cart has been preserved", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is unavailable", http.StatusServiceUnavailable))
	}
}

func decodeAddressPayload(payload addressPayload) domain.Address {
	return domain.Address{
		Line1:   payload.Line1,
		Line2:   payload.Line2,
		City:    payload.City,
		State:   payload.State,
		ZipCode: payload.ZipCode,
		Country: payload.Country,
	}
}
