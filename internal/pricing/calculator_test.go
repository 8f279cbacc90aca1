package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestLineItemNetTotal(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want float64
	}{
		{
			name: "percent discount",
			item: LineItem{UnitPrice: 100, Quantity: 2, DiscountValue: 10, DiscountType: DiscountPercent},
			want: 180,
		},
		{
			name: "amount discount",
			item: LineItem{UnitPrice: 100, Quantity: 2, DiscountValue: 25, DiscountType: DiscountAmount},
			want: 175,
		},
		{
			name: "no discount defaults to percent zero",
			item: LineItem{UnitPrice: 50, Quantity: 3},
			want: 150,
		},
		{
			name: "amount discount exceeding gross clamps to zero",
			item: LineItem{UnitPrice: 10, Quantity: 1, DiscountValue: 500, DiscountType: DiscountAmount},
			want: 0,
		},
		{
			name: "percent discount above 100 clamps to zero",
			item: LineItem{UnitPrice: 10, Quantity: 1, DiscountValue: 150, DiscountType: DiscountPercent},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.item.NetTotal(), 1e-9)
		})
	}
}

func TestNetTotalNeverExceedsGross(t *testing.T) {
	prices := []float64{0, 0.5, 9.99, 100, 54321.12}
	quantities := []int{1, 2, 7}
	discounts := []float64{0, 1, 50, 99.5, 100}
	for _, price := range prices {
		for _, qty := range quantities {
			for _, disc := range discounts {
				for _, dt := range []DiscountType{DiscountPercent, DiscountAmount} {
					li := LineItem{UnitPrice: price, Quantity: qty, DiscountValue: disc, DiscountType: dt}
					net := li.NetTotal()
					if net < 0 || net > li.Gross()+1e-9 {
						t.Fatalf("net %g out of [0, %g] for %+v", net, li.Gross(), li)
					}
				}
			}
		}
	}
}

func TestComputeTotalsBasic(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", UnitPrice: 100, Quantity: 2, DiscountValue: 10, DiscountType: DiscountPercent},
		{ProductID: "p2", UnitPrice: 250, Quantity: 1},
	}
	b, err := ComputeTotals(items, Adjustments{})
	require.NoError(t, err)

	assert.InDelta(t, 450, b.Subtotal, 1e-9)
	assert.InDelta(t, 20, b.ItemDiscountTotal, 1e-9)
	assert.InDelta(t, 430, b.TaxableValue, 1e-9)
	assert.InDelta(t, 430, b.GrandTotal, 1e-9)
	assert.InDelta(t, b.GrandTotal, b.DisplayTotal, 1e-9)
}

func TestComputeTotalsDiscountIdentity(t *testing.T) {
	items := []LineItem{
		{ProductID: "a", UnitPrice: 33.33, Quantity: 3, DiscountValue: 7, DiscountType: DiscountPercent},
		{ProductID: "b", UnitPrice: 120, Quantity: 2, DiscountValue: 15, DiscountType: DiscountAmount},
		{ProductID: "c", UnitPrice: 9.5, Quantity: 5},
	}
	b, err := ComputeTotals(items, Adjustments{})
	require.NoError(t, err)

	var sumNet float64
	for _, li := range items {
		sumNet += li.NetTotal()
	}
	assert.InDelta(t, sumNet, b.Subtotal-b.ItemDiscountTotal, 1e-9)
}

func TestComputeTotalsOptionalItemsExcluded(t *testing.T) {
	main := []LineItem{
		{ProductID: "m1", UnitPrice: 500, Quantity: 1},
		{ProductID: "m2", UnitPrice: 75, Quantity: 4},
	}
	withOptional := append(append([]LineItem{}, main...),
		LineItem{ProductID: "o1", UnitPrice: 999, Quantity: 2, IsOptional: true},
		LineItem{ProductID: "o2", UnitPrice: 123, Quantity: 1, IsOptional: true},
	)

	base, err := ComputeTotals(main, Adjustments{})
	require.NoError(t, err)
	got, err := ComputeTotals(withOptional, Adjustments{})
	require.NoError(t, err)

	assert.InDelta(t, base.GrandTotal, got.GrandTotal, 1e-9)
	assert.InDelta(t, base.Subtotal, got.Subtotal, 1e-9)
	assert.InDelta(t, 2*999+123, got.OptionalValue, 1e-9)
}

func TestComputeTotalsExtraDiscount(t *testing.T) {
	items := []LineItem{{ProductID: "p", UnitPrice: 1000, Quantity: 1}}

	t.Run("percent", func(t *testing.T) {
		b, err := ComputeTotals(items, Adjustments{ExtraDiscountValue: 10, ExtraDiscountType: DiscountPercent})
		require.NoError(t, err)
		assert.InDelta(t, 100, b.ExtraDiscount, 1e-9)
		assert.InDelta(t, 900, b.TaxableValue, 1e-9)
	})
	t.Run("amount", func(t *testing.T) {
		b, err := ComputeTotals(items, Adjustments{ExtraDiscountValue: 250, ExtraDiscountType: DiscountAmount})
		require.NoError(t, err)
		assert.InDelta(t, 250, b.ExtraDiscount, 1e-9)
		assert.InDelta(t, 750, b.TaxableValue, 1e-9)
	})
	t.Run("amount capped at base", func(t *testing.T) {
		b, err := ComputeTotals(items, Adjustments{ExtraDiscountValue: 5000, ExtraDiscountType: DiscountAmount})
		require.NoError(t, err)
		assert.InDelta(t, 1000, b.ExtraDiscount, 1e-9)
		assert.InDelta(t, 0, b.TaxableValue, 1e-9)
	})
}

func TestComputeTotalsTax(t *testing.T) {
	items := []LineItem{{ProductID: "p", UnitPrice: 200, Quantity: 1}}

	t.Run("derived from rate", func(t *testing.T) {
		b, err := ComputeTotals(items, Adjustments{TaxRate: 18, RoundOff: f64(0)})
		require.NoError(t, err)
		assert.InDelta(t, 36, b.TaxAmount, 1e-9)
		assert.InDelta(t, 236, b.GrandTotal, 1e-9)
	})
	t.Run("supplied amount wins over rate", func(t *testing.T) {
		b, err := ComputeTotals(items, Adjustments{TaxRate: 18, TaxAmount: f64(40), RoundOff: f64(0)})
		require.NoError(t, err)
		assert.InDelta(t, 40, b.TaxAmount, 1e-9)
		assert.InDelta(t, 240, b.GrandTotal, 1e-9)
	})
}

func TestComputeTotalsRoundOff(t *testing.T) {
	items := []LineItem{{ProductID: "p", UnitPrice: 99.49, Quantity: 1}}

	t.Run("derived lands on whole unit", func(t *testing.T) {
		b, err := ComputeTotals(items, Adjustments{})
		require.NoError(t, err)
		assert.InDelta(t, -0.49, b.RoundOff, 1e-9)
		assert.InDelta(t, 99, b.GrandTotal, 1e-9)
		assert.InDelta(t, b.GrandTotal, math.Round(b.GrandTotal), 1e-9)
	})
	t.Run("supplied used verbatim", func(t *testing.T) {
		b, err := ComputeTotals(items, Adjustments{RoundOff: f64(0.51)})
		require.NoError(t, err)
		assert.InDelta(t, 0.51, b.RoundOff, 1e-9)
		assert.InDelta(t, 100, b.GrandTotal, 1e-9)
	})
}

func TestComputeTotalsShipping(t *testing.T) {
	items := []LineItem{{ProductID: "p", UnitPrice: 100, Quantity: 1}}
	b, err := ComputeTotals(items, Adjustments{Shipping: 49.5, RoundOff: f64(0)})
	require.NoError(t, err)
	assert.InDelta(t, 149.5, b.GrandTotal, 1e-9)
}

func TestComputeTotalsAuthoritativeFinalAmount(t *testing.T) {
	items := []LineItem{{ProductID: "p", UnitPrice: 100, Quantity: 1}}
	b, err := ComputeTotals(items, Adjustments{FinalAmount: f64(95), RoundOff: f64(0)})
	require.NoError(t, err)
	// Display prefers the backend value, the local figure stays available.
	assert.InDelta(t, 95, b.DisplayTotal, 1e-9)
	assert.InDelta(t, 100, b.GrandTotal, 1e-9)
}

func TestComputeTotalsValidation(t *testing.T) {
	tests := []struct {
		name      string
		items     []LineItem
		adj       Adjustments
		wantField string
	}{
		{
			name:      "zero quantity",
			items:     []LineItem{{ProductID: "p", UnitPrice: 10, Quantity: 0}},
			wantField: "items[0].quantity",
		},
		{
			name:      "negative price",
			items:     []LineItem{{ProductID: "p", UnitPrice: -1, Quantity: 1}},
			wantField: "items[0].unitPrice",
		},
		{
			name: "negative discount on second item",
			items: []LineItem{
				{ProductID: "p", UnitPrice: 10, Quantity: 1},
				{ProductID: "q", UnitPrice: 10, Quantity: 1, DiscountValue: -5},
			},
			wantField: "items[1].discountValue",
		},
		{
			name:      "negative shipping",
			items:     []LineItem{{ProductID: "p", UnitPrice: 10, Quantity: 1}},
			adj:       Adjustments{Shipping: -2},
			wantField: "shipping",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotals(tt.items, tt.adj)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestRoundDisplay(t *testing.T) {
	assert.InDelta(t, 10.57, RoundDisplay(10.567), 1e-9)
	assert.InDelta(t, 10.56, RoundDisplay(10.562), 1e-9)
	assert.Zero(t, RoundDisplay(0))
}
