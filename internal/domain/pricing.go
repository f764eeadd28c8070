package domain

import "math"

// PricingPolicy holds the business constants that derive cart totals.
// Amounts are minor units (cents); TaxRate is a fraction.
type PricingPolicy struct {
	TaxRate               float64
	FreeShippingThreshold int64
	ShippingFlatCost      int64
}

// DefaultPricingPolicy mirrors the storefront defaults: 7% tax, free
// shipping at $100, $10 flat shipping below the threshold.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:               0.07,
		FreeShippingThreshold: 10000,
		ShippingFlatCost:      1000,
	}
}

// EffectivePrice returns the discount price when present and valid,
// otherwise the base price. The policy never rejects input; callers
// guarantee quantity and price invariants upstream.
func (p PricingPolicy) EffectivePrice(product Product) int64 {
	if product.DiscountPrice != nil && *product.DiscountPrice > 0 && *product.DiscountPrice < product.Price {
		return *product.DiscountPrice
	}
	return product.Price
}

// ItemCount sums the quantities across all lines.
func ItemCount(lines []CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

// Subtotal sums effective price times quantity over all lines.
func (p PricingPolicy) Subtotal(lines []CartLine) int64 {
	var subtotal int64
	for _, line := range lines {
		subtotal += p.EffectivePrice(line.Product) * int64(line.Quantity)
	}
	return subtotal
}

// Shipping is zero at or above the free-shipping threshold, otherwise the
// flat cost.
func (p PricingPolicy) Shipping(subtotal int64) int64 {
	if subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.ShippingFlatCost
}

// Tax applies the tax rate to the subtotal, rounded to the nearest cent.
func (p PricingPolicy) Tax(subtotal int64) int64 {
	return int64(math.Round(float64(subtotal) * p.TaxRate))
}

// Total sums subtotal, shipping, and tax.
func (p PricingPolicy) Total(subtotal, shipping, tax int64) int64 {
	return subtotal + shipping + tax
}

// Totals derives every monetary field from scratch. Mutations always run
// the full recompute; there is no incremental path to drift from. An empty
// line list yields the zero totals of the empty snapshot; no shipping is
// charged when there is nothing to ship.
func (p PricingPolicy) Totals(lines []CartLine) CartTotals {
	if len(lines) == 0 {
		return CartTotals{}
	}
	subtotal := p.Subtotal(lines)
	shipping := p.Shipping(subtotal)
	tax := p.Tax(subtotal)
	return CartTotals{
		ItemCount: ItemCount(lines),
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     p.Total(subtotal, shipping, tax),
	}
}
