package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wishlane/storefront/internal/domain"
)

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body too large")
)

type productPayload struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	Price         int64                  `json:"price"`
	DiscountPrice *int64                 `json:"discountPrice,omitempty"`
	Images        []string               `json:"images,omitempty"`
	Category      string                 `json:"category,omitempty"`
	Tags          []string               `json:"tags,omitempty"`
	Rating        float64                `json:"rating,omitempty"`
	Reviews       int                    `json:"reviews,omitempty"`
	Stock         int                    `json:"stock"`
	Featured      bool                   `json:"featured,omitempty"`
	New           bool                   `json:"new,omitempty"`
	Details       *productDetailsPayload `json:"details,omitempty"`
}

type productDetailsPayload struct {
	Dimensions string   `json:"dimensions,omitempty"`
	Weight     string   `json:"weight,omitempty"`
	Materials  []string `json:"materials,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	Features   []string `json:"features,omitempty"`
}

type cartLinePayload struct {
	Product  productPayload `json:"product"`
	Quantity int            `json:"quantity"`
}

type cartTotalsPayload struct {
	ItemCount int   `json:"itemCount"`
	Subtotal  int64 `json:"subtotal"`
	Shipping  int64 `json:"shipping"`
	Tax       int64 `json:"tax"`
	Total     int64 `json:"total"`
}

type cartPayload struct {
	Lines     []cartLinePayload `json:"lines"`
	Totals    cartTotalsPayload `json:"totals"`
	UpdatedAt string            `json:"updatedAt,omitempty"`
}

type addressPayload struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type customerPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type paymentSummaryPayload struct {
	NameOnCard string `json:"nameOnCard"`
	Last4      string `json:"last4"`
	Expiry     string `json:"expiry"`
}

type orderPayload struct {
	ID              string                `json:"id"`
	Customer        customerPayload       `json:"customer"`
	ShippingAddress addressPayload        `json:"shippingAddress"`
	BillingAddress  addressPayload        `json:"billingAddress"`
	Payment         paymentSummaryPayload `json:"payment"`
	Cart            cartPayload           `json:"cart"`
	Status          string                `json:"status"`
	CreatedAt       string                `json:"createdAt"`
}

func buildProductPayload(product domain.Product) productPayload {
	payload := productPayload{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		DiscountPrice: product.DiscountPrice,
		Images:        product.Images,
		Category:      product.Category,
		Tags:          product.Tags,
		Rating:        product.Rating,
		Reviews:       product.Reviews,
		Stock:         product.Stock,
		Featured:      product.Featured,
		New:           product.New,
	}
	if product.Details != nil {
		payload.Details = &productDetailsPayload{
			Dimensions: product.Details.Dimensions,
			Weight:     product.Details.Weight,
			Materials:  product.Details.Materials,
			Colors:     product.Details.Colors,
			Features:   product.Details.Features,
		}
	}
	return payload
}

func buildProductListPayload(products []domain.Product) []productPayload {
	payloads := make([]productPayload, 0, len(products))
	for _, product := range products {
		payloads = append(payloads, buildProductPayload(product))
	}
	return payloads
}

func buildCartPayload(snapshot domain.CartSnapshot) cartPayload {
	payload := cartPayload{
		Lines: make([]cartLinePayload, 0, len(snapshot.Lines)),
		Totals: cartTotalsPayload{
			ItemCount: snapshot.Totals.ItemCount,
			Subtotal:  snapshot.Totals.Subtotal,
			Shipping:  snapshot.Totals.Shipping,
			Tax:       snapshot.Totals.Tax,
			Total:     snapshot.Totals.Total,
		},
		UpdatedAt: formatTime(snapshot.UpdatedAt),
	}
	for _, line := range snapshot.Lines {
		payload.Lines = append(payload.Lines, cartLinePayload{
			Product:  buildProductPayload(line.Product),
			Quantity: line.Quantity,
		})
	}
	return payload
}

func buildOrderPayload(order domain.Order) orderPayload {
	return orderPayload{
		ID: order.ID,
		Customer: customerPayload{
			FirstName: order.Customer.FirstName,
			LastName:  order.Customer.LastName,
			Email:     order.Customer.Email,
			Phone:     order.Customer.Phone,
		},
		ShippingAddress: buildAddressPayload(order.ShippingAddress),
		BillingAddress:  buildAddressPayload(order.BillingAddress),
		Payment: paymentSummaryPayload{
			NameOnCard: order.Payment.NameOnCard,
			Last4:      order.Payment.Last4,
			Expiry:     order.Payment.Expiry,
		},
		Cart:      buildCartPayload(order.Cart),
		Status:    string(order.Status),
		CreatedAt: formatTime(order.CreatedAt),
	}
}

func buildAddressPayload(addr domain.Address) addressPayload {
	return addressPayload{
		Line1:   addr.Line1,
		Line2:   addr.Line2,
		City:    addr.City,
		State:   addr.State,
		ZipCode: addr.ZipCode,
		Country: addr.Country,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = 16 * 1024
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}
