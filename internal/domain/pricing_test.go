package domain

import "testing"

func centsPtr(v int64) *int64 {
	return &v
}

func TestPricingPolicyEffectivePrice(t *testing.T) {
	policy := DefaultPricingPolicy()

	cases := []struct {
		name    string
		product Product
		want    int64
	}{
		{name: "no discount", product: Product{Price: 2500}, want: 2500},
		{name: "valid discount", product: Product{Price: 2500, DiscountPrice: centsPtr(1999)}, want: 1999},
		{name: "discount equal to price", product: Product{Price: 2500, DiscountPrice: centsPtr(2500)}, want: 2500},
		{name: "discount above price", product: Product{Price: 2500, DiscountPrice: centsPtr(3000)}, want: 2500},
		{name: "zero discount", product: Product{Price: 2500, DiscountPrice: centsPtr(0)}, want: 2500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.EffectivePrice(tc.product); got != tc.want {
				t.Fatalf("expected effective price %d, got %d", tc.want, got)
			}
		})
	}
}

func TestPricingPolicyTotalsBelowThreshold(t *testing.T) {
	policy := DefaultPricingPolicy()
	lines := []CartLine{
		{Product: Product{ID: "p1", Price: 2000}, Quantity: 2},
		{Product: Product{ID: "p2", Price: 1000}, Quantity: 1},
	}

	totals := policy.Totals(lines)

	if totals.ItemCount != 3 {
		t.Fatalf("expected item count 3, got %d", totals.ItemCount)
	}
	if totals.Subtotal != 5000 {
		t.Fatalf("expected subtotal 5000, got %d", totals.Subtotal)
	}
	if totals.Shipping != 1000 {
		t.Fatalf("expected flat shipping 1000, got %d", totals.Shipping)
	}
	if totals.Tax != 350 {
		t.Fatalf("expected tax 350, got %d", totals.Tax)
	}
	if totals.Total != 6350 {
		t.Fatalf("expected total 6350, got %d", totals.Total)
	}
}

func TestPricingPolicyTotalsAtThreshold(t *testing.T) {
	policy := DefaultPricingPolicy()
	lines := []CartLine{
		{Product: Product{ID: "p1", Price: 11000}, Quantity: 1},
	}

	totals := policy.Totals(lines)

	if totals.Subtotal != 11000 {
		t.Fatalf("expected subtotal 11000, got %d", totals.Subtotal)
	}
	if totals.Shipping != 0 {
		t.Fatalf("expected free shipping, got %d", totals.Shipping)
	}
	if totals.Tax != 770 {
		t.Fatalf("expected tax 770, got %d", totals.Tax)
	}
	if totals.Total != 11770 {
		t.Fatalf("expected total 11770, got %d", totals.Total)
	}
}

func TestPricingPolicyShippingExactlyAtThreshold(t *testing.T) {
	policy := DefaultPricingPolicy()

	if got := policy.Shipping(10000); got != 0 {
		t.Fatalf("expected free shipping at threshold, got %d", got)
	}
	if got := policy.Shipping(9999); got != 1000 {
		t.Fatalf("expected flat shipping just below threshold, got %d", got)
	}
}

func TestPricingPolicyTotalsUsesDiscountPrice(t *testing.T) {
	policy := DefaultPricingPolicy()
	lines := []CartLine{
		{Product: Product{ID: "p1", Price: 3000, DiscountPrice: centsPtr(2000)}, Quantity: 2},
	}

	totals := policy.Totals(lines)

	if totals.Subtotal != 4000 {
		t.Fatalf("expected discounted subtotal 4000, got %d", totals.Subtotal)
	}
}

func TestPricingPolicyTaxRounding(t *testing.T) {
	policy := DefaultPricingPolicy()

	// 7% of 1005 is 70.35, rounding down to 70; 7% of 1050 is 73.5,
	// rounding up to 74.
	if got := policy.Tax(1005); got != 70 {
		t.Fatalf("expected tax 70, got %d", got)
	}
	if got := policy.Tax(1050); got != 74 {
		t.Fatalf("expected tax 74, got %d", got)
	}
}

func TestPricingPolicyTotalsEmptyCart(t *testing.T) {
	policy := DefaultPricingPolicy()

	totals := policy.Totals(nil)

	if totals != (CartTotals{}) {
		t.Fatalf("expected zero totals for empty cart, got %+v", totals)
	}
}

func TestCartSnapshotCloneIsolatesLines(t *testing.T) {
	snapshot := CartSnapshot{
		Lines: []CartLine{
			{Product: Product{ID: "p1", Tags: []string{"wood"}}, Quantity: 1},
		},
	}

	clone := snapshot.Clone()
	clone.Lines[0].Quantity = 99
	clone.Lines[0].Product.Tags[0] = "metal"

	if snapshot.Lines[0].Quantity != 1 {
		t.Fatalf("expected original quantity untouched, got %d", snapshot.Lines[0].Quantity)
	}
	if snapshot.Lines[0].Product.Tags[0] != "wood" {
		t.Fatalf("expected original tags untouched, got %q", snapshot.Lines[0].Product.Tags[0])
	}
}
