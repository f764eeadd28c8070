package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/platform/idempotency"
	"github.com/wishlane/storefront/internal/platform/session"
	"github.com/wishlane/storefront/internal/repositories"
	"github.com/wishlane/storefront/internal/services"
)

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]domain.Order)}
}

func (s *stubOrderRepo) Insert(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrderRepo) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, repositories.NewNotFoundError("order not found", nil)
	}
	return order, nil
}

func (s *stubOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

const checkoutBody = `{
	"customer": {"firstName": "Ava", "lastName": "Lane", "email": "ava@example.com"},
	"shippingAddress": {"line1": "12 Birch Street", "city": "Portland", "zipCode": "97201", "country": "US"},
	"payment": {"cardNumber": "4111 1111 1111 1111", "nameOnCard": "Ava Lane", "expiry": "12/28", "cvc": "123"}
}`

func newCheckoutTestRouter(t *testing.T, cart services.CartStore, sessions *session.Store) (http.Handler, *stubOrderRepo) {
	t.Helper()
	repo := newStubOrderRepo()
	now := time.Date(2026, 3, 6, 11, 0, 0, 0, time.UTC)
	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:      repo,
		Cart:        cart,
		Gateway:     services.SimulatedGateway{},
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { return "WL-TEST-1" },
	})
	if err != nil {
		t.Fatalf("unexpected error constructing order service: %v", err)
	}

	router := NewRouter(
		WithCheckoutRoutes(NewCheckoutHandlers(cart, orders, sessions).Routes),
		WithCheckoutMiddlewares(idempotency.Middleware(idempotency.NewMemoryStore())),
		WithOrderRoutes(NewOrderHandlers(orders, sessions).Routes),
	)
	return router, repo
}

func postCheckout(router http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/orders", strings.NewReader(checkoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCheckoutHandlersPlaceOrder(t *testing.T) {
	cart := &stubCartStore{snapshot: cartFixture()}
	sessions := session.NewStore()
	router, repo := newCheckoutTestRouter(t, cart, sessions)

	rr := postCheckout(router, "key-1")

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Order orderPayload `json:"order"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Order.ID != "WL-TEST-1" {
		t.Fatalf("expected order id WL-TEST-1, got %q", body.Order.ID)
	}
	if body.Order.Status != "pending" {
		t.Fatalf("expected pending status, got %q", body.Order.Status)
	}
	if body.Order.Payment.Last4 != "1111" {
		t.Fatalf("expected redacted payment, got %+v", body.Order.Payment)
	}

	if _, err := repo.FindByID(context.Background(), "WL-TEST-1"); err != nil {
		t.Fatalf("expected order registered, got %v", err)
	}
	if lastID, ok := sessions.Get(session.LastOrderKey); !ok || lastID != "WL-TEST-1" {
		t.Fatalf("expected session handoff, got %q %v", lastID, ok)
	}
}

func TestCheckoutHandlersRequiresIdempotencyKey(t *testing.T) {
	router, _ := newCheckoutTestRouter(t, &stubCartStore{snapshot: cartFixture()}, session.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/orders", strings.NewReader(checkoutBody))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCheckoutHandlersReplaysDuplicateSubmission(t *testing.T) {
	cart := &stubCartStore{snapshot: cartFixture()}
	router, repo := newCheckoutTestRouter(t, cart, session.NewStore())

	first := postCheckout(router, "key-dup")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first submission, got %d: %s", first.Code, first.Body.String())
	}

	second := postCheckout(router, "key-dup")
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d: %s", second.Code, second.Body.String())
	}
	if second.Header().Get("X-Idempotent-Replay") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected identical replayed body")
	}

	orders, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected exactly one registered order, got %d", len(orders))
	}
}

func TestCheckoutHandlersRejectsEmptyCart(t *testing.T) {
	cart := &stubCartStore{snapshot: domain.CartSnapshot{Lines: []domain.CartLine{}}}
	router, _ := newCheckoutTestRouter(t, cart, session.NewStore())

	rr := postCheckout(router, "key-empty")

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty cart, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCheckoutHandlersRejectsInvalidBody(t *testing.T) {
	router, _ := newCheckoutTestRouter(t, &stubCartStore{snapshot: cartFixture()}, session.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/orders", strings.NewReader(`{"customer":`))
	req.Header.Set("Idempotency-Key", "key-bad")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d: %s", rr.Code, rr.Body.String())
	}
}
