package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/wishlane/storefront/internal/domain"
	"github.com/wishlane/storefront/internal/repositories"
)

var (
	errOrderServiceOrdersRequired  = errors.New("order service: order repository is required")
	errOrderServiceCartRequired    = errors.New("order service: cart store is required")
	errOrderServiceGatewayRequired = errors.New("order service: placement gateway is required")

	// ErrOrderInvalidInput indicates the placement command failed validation.
	ErrOrderInvalidInput = errors.New("order service: invalid input")
	// ErrOrderEmptyCart indicates a placement attempt against an empty cart.
	ErrOrderEmptyCart = fmt.Errorf("%w: cart is empty", ErrOrderInvalidInput)
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order service: order not found")
	// ErrOrderRejected indicates the placement gateway declined the order.
	ErrOrderRejected = errors.New("order service: placement rejected")
	// ErrOrderUnavailable indicates a downstream dependency failed.
	ErrOrderUnavailable = errors.New("order service: unavailable")
)

const orderIDPrefix = "WL-"

// PlacementGateway acknowledges a submitted order. The simulated gateway
// stands in for a real payment and fulfilment backend.
type PlacementGateway interface {
	Submit(ctx context.Context, order domain.Order) error
}

// SimulatedGateway acknowledges every order after a fixed delay, matching
// the latency of a slow external confirmation.
type SimulatedGateway struct {
	Delay time.Duration
}

// Submit waits out the configured delay and acknowledges the order. The
// delay is not interruptible: once issued, a placement runs to completion.
func (g SimulatedGateway) Submit(_ context.Context, _ domain.Order) error {
	if g.Delay > 0 {
		time.Sleep(g.Delay)
	}
	return nil
}

// Placement is the handle for an in-flight order placement. The order is
// not registered until the gateway acknowledges it; callers wait on Done
// or block in Result.
type Placement struct {
	orderID string
	done    chan struct{}
	order   domain.Order
	err     error
}

// OrderID returns the identifier assigned at submission time, available
// before the acknowledgment arrives.
func (p *Placement) OrderID() string {
	return p.orderID
}

// Done is closed once the placement settles, successfully or not.
func (p *Placement) Done() <-chan struct{} {
	return p.done
}

// Result blocks until the placement settles and returns the registered
// order or the settlement error.
func (p *Placement) Result() (domain.Order, error) {
	<-p.done
	return p.order, p.err
}

func (p *Placement) settle(order domain.Order, err error) {
	p.order = order
	p.err = err
	close(p.done)
}

type cartClearer interface {
	Clear(ctx context.Context) (domain.CartSnapshot, error)
}

// OrderServiceDeps wires the order service collaborators.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Cart        cartClearer
	Gateway     PlacementGateway
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
	Sanitizer   *bluemonday.Policy
}

type orderService struct {
	orders    repositories.OrderRepository
	cart      cartClearer
	gateway   PlacementGateway
	now       func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
	sanitizer *bluemonday.Policy
}

// NewOrderService validates dependencies and constructs the order service.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errOrderServiceOrdersRequired
	}
	if deps.Cart == nil {
		return nil, errOrderServiceCartRequired
	}
	if deps.Gateway == nil {
		return nil, errOrderServiceGatewayRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return orderIDPrefix + ulid.Make().String() }
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = bluemonday.StrictPolicy()
	}

	return &orderService{
		orders:    deps.Orders,
		cart:      deps.Cart,
		gateway:   deps.Gateway,
		now:       func() time.Time { return clock().UTC() },
		newID:     newID,
		logger:    logger,
		sanitizer: sanitizer,
	}, nil
}

// PlaceOrder validates the command, freezes the cart snapshot into a new
// order, and submits it to the gateway asynchronously. The cart is cleared
// only after the gateway acknowledges; a rejected placement leaves the cart
// untouched so the buyer can retry.
func (s *orderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*Placement, error) {
	if len(cmd.Cart.Lines) == 0 {
		return nil, ErrOrderEmptyCart
	}
	if err := s.validateCommand(cmd); err != nil {
		return nil, err
	}

	billing := cmd.ShippingAddress
	if cmd.BillingAddress != nil {
		billing = *cmd.BillingAddress
	}

	order := domain.Order{
		ID:              s.newID(),
		Customer:        s.sanitizeCustomer(cmd.Customer),
		ShippingAddress: s.sanitizeAddress(cmd.ShippingAddress),
		BillingAddress:  s.sanitizeAddress(billing),
		Payment:         summarisePayment(cmd.Payment, s.sanitizer),
		Cart:            cmd.Cart.Clone(),
		Status:          domain.OrderStatusPending,
		CreatedAt:       s.now(),
	}

	placement := &Placement{
		orderID: order.ID,
		done:    make(chan struct{}),
	}

	s.logger(ctx, "order.placement_started", map[string]any{
		"order_id":   order.ID,
		"item_count": order.Cart.Totals.ItemCount,
		"total":      order.Cart.Totals.Total,
	})

	// The submission outlives the request; once issued it is never
	// cancelled, so the goroutine carries a fresh context.
	go s.submit(context.Background(), order, placement)

	return placement, nil
}

func (s *orderService) submit(ctx context.Context, order domain.Order, placement *Placement) {
	if err := s.gateway.Submit(ctx, order); err != nil {
		s.logger(ctx, "order.placement_rejected", map[string]any{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		placement.settle(domain.Order{}, fmt.Errorf("%w: %v", ErrOrderRejected, err))
		return
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		s.logger(ctx, "order.registry_insert_failed", map[string]any{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		placement.settle(domain.Order{}, fmt.Errorf("%w: %v", ErrOrderUnavailable, err))
		return
	}

	// Clearing is best-effort: the order is already registered, so a
	// failed clear is logged and the placement still succeeds.
	if _, err := s.cart.Clear(ctx); err != nil {
		s.logger(ctx, "order.cart_clear_failed", map[string]any{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	s.logger(ctx, "order.placement_confirmed", map[string]any{
		"order_id": order.ID,
	})
	placement.settle(order, nil)
}

// GetOrder fetches a single registered order by ID.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}
	return order, nil
}

// ListOrders returns every registered order, newest first.
func (s *orderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}
	return orders, nil
}

func (s *orderService) validateCommand(cmd PlaceOrderCommand) error {
	var missing []string

	if strings.TrimSpace(cmd.Customer.FirstName) == "" {
		missing = append(missing, "customer.firstName")
	}
	if strings.TrimSpace(cmd.Customer.LastName) == "" {
		missing = append(missing, "customer.lastName")
	}
	if !isPlausibleEmail(cmd.Customer.Email) {
		missing = append(missing, "customer.email")
	}
	missing = append(missing, missingAddressFields("shippingAddress", cmd.ShippingAddress)...)
	if cmd.BillingAddress != nil {
		missing = append(missing, missingAddressFields("billingAddress", *cmd.BillingAddress)...)
	}
	missing = append(missing, missingPaymentFields(cmd.Payment)...)

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or invalid fields [%s]", ErrOrderInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

func missingAddressFields(prefix string, addr domain.Address) []string {
	var missing []string
	if strings.TrimSpace(addr.Line1) == "" {
		missing = append(missing, prefix+".line1")
	}
	if strings.TrimSpace(addr.City) == "" {
		missing = append(missing, prefix+".city")
	}
	if strings.TrimSpace(addr.ZipCode) == "" {
		missing = append(missing, prefix+".zipCode")
	}
	if strings.TrimSpace(addr.Country) == "" {
		missing = append(missing, prefix+".country")
	}
	return missing
}

func missingPaymentFields(card domain.PaymentCard) []string {
	var missing []string
	if len(cardDigits(card.CardNumber)) < 12 {
		missing = append(missing, "payment.cardNumber")
	}
	if strings.TrimSpace(card.NameOnCard) == "" {
		missing = append(missing, "payment.nameOnCard")
	}
	if strings.TrimSpace(card.Expiry) == "" {
		missing = append(missing, "payment.expiry")
	}
	if strings.TrimSpace(card.CVC) == "" {
		missing = append(missing, "payment.cvc")
	}
	return missing
}

func isPlausibleEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func cardDigits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *orderService) sanitizeCustomer(c domain.Customer) domain.Customer {
	return domain.Customer{
		FirstName: s.sanitizeText(c.FirstName),
		LastName:  s.sanitizeText(c.LastName),
		Email:     s.sanitizeText(c.Email),
		Phone:     s.sanitizeText(c.Phone),
	}
}

func (s *orderService) sanitizeAddress(a domain.Address) domain.Address {
	return domain.Address{
		Line1:   s.sanitizeText(a.Line1),
		Line2:   s.sanitizeText(a.Line2),
		City:    s.sanitizeText(a.City),
		State:   s.sanitizeText(a.State),
		ZipCode: s.sanitizeText(a.ZipCode),
		Country: s.sanitizeText(a.Country),
	}
}

func (s *orderService) sanitizeText(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

// summarisePayment reduces the raw card to the redacted record stored on
// the order. The full PAN and CVC are dropped here and never persisted.
func summarisePayment(card domain.PaymentCard, sanitizer *bluemonday.Policy) domain.PaymentSummary {
	digits := cardDigits(card.CardNumber)
	last4 := digits
	if len(digits) > 4 {
		last4 = digits[len(digits)-4:]
	}
	return domain.PaymentSummary{
		NameOnCard: strings.TrimSpace(sanitizer.Sanitize(card.NameOnCard)),
		Last4:      last4,
		Expiry:     strings.TrimSpace(sanitizer.Sanitize(card.Expiry)),
	}
}
