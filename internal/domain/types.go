package domain

import (
	"time"
)

// Product is the catalog record a cart line references. The cart holds a
// copy taken at the moment of addition, so later catalog edits never leak
// into an open cart or a placed order.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         int64
	DiscountPrice *int64
	Images        []string
	Category      string
	Tags          []string
	Rating        float64
	Reviews       int
	Stock         int
	Featured      bool
	New           bool
	Details       *ProductDetails
}

// ProductDetails carries the optional long-form attributes shown on a
// product detail page.
type ProductDetails struct {
	Dimensions string
	Weight     string
	Materials  []string
	Colors     []string
	Features   []string
}

// CartLine pairs a product snapshot with a quantity. A snapshot holds at
// most one line per product ID.
type CartLine struct {
	Product  Product
	Quantity int
}

// CartTotals are the derived monetary fields of a snapshot. They are always
// recomputed from the lines and the pricing policy, never mutated directly.
type CartTotals struct {
	ItemCount int
	Subtotal  int64
	Shipping  int64
	Tax       int64
	Total     int64
}

// CartSnapshot is the authoritative cart state published after every
// mutation. Lines keep their insertion order for display.
type CartSnapshot struct {
	Lines     []CartLine
	Totals    CartTotals
	UpdatedAt time.Time
}

// Clone returns a deep copy so consumers can hold a snapshot without
// observing later mutations.
func (s CartSnapshot) Clone() CartSnapshot {
	dup := s
	dup.Lines = CloneCartLines(s.Lines)
	return dup
}

// CloneCartLines deep-copies a line slice including per-product slices.
func CloneCartLines(lines []CartLine) []CartLine {
	if len(lines) == 0 {
		return []CartLine{}
	}
	dup := make([]CartLine, len(lines))
	copy(dup, lines)
	for i := range dup {
		dup[i].Product = cloneProduct(dup[i].Product)
	}
	return dup
}

// CloneProducts deep-copies a product slice.
func CloneProducts(products []Product) []Product {
	if len(products) == 0 {
		return []Product{}
	}
	dup := make([]Product, len(products))
	for i, p := range products {
		dup[i] = cloneProduct(p)
	}
	return dup
}

func cloneProduct(p Product) Product {
	if p.DiscountPrice != nil {
		v := *p.DiscountPrice
		p.DiscountPrice = &v
	}
	p.Images = cloneStrings(p.Images)
	p.Tags = cloneStrings(p.Tags)
	if p.Details != nil {
		details := *p.Details
		details.Materials = cloneStrings(details.Materials)
		details.Colors = cloneStrings(details.Colors)
		details.Features = cloneStrings(details.Features)
		p.Details = &details
	}
	return p
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	dup := make([]string, len(values))
	copy(dup, values)
	return dup
}

// Customer identifies the buyer placing an order.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Address is a shipping or billing address. Billing defaults to a copy of
// shipping at order construction, never an alias.
type Address struct {
	Line1   string
	Line2   string
	City    string
	State   string
	ZipCode string
	Country string
}

// PaymentCard is the raw payment input collected at checkout. The full PAN
// and CVC never reach a stored order.
type PaymentCard struct {
	CardNumber string
	NameOnCard string
	Expiry     string
	CVC        string
}

// PaymentSummary is the redacted payment record kept on an order.
type PaymentSummary struct {
	NameOnCard string
	Last4      string
	Expiry     string
}

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

const (
	// OrderStatusPending is the status assigned at placement.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing indicates fulfilment has started.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the parcel left the warehouse.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the parcel reached the buyer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the record produced by a successful placement. It owns a frozen
// copy of the cart snapshot; later cart mutations do not touch it.
type Order struct {
	ID              string
	Customer        Customer
	ShippingAddress Address
	BillingAddress  Address
	Payment         PaymentSummary
	Cart            CartSnapshot
	Status          OrderStatus
	CreatedAt       time.Time
}
