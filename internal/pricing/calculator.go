// Package pricing implements the totals calculator for quotations and
// purchase documents: per-line discounting, order-level adjustments, tax,
// round-off and the grand total. All functions are pure; rounding happens
// only at display time.
package pricing

import (
	"fmt"
	"math"
)

// DiscountType selects how DiscountValue is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// LineItem is one priced row of a document. Optional items are listed on a
// separate page and never contribute to the primary totals.
type LineItem struct {
	ProductID     string
	Name          string
	Code          string
	ImageRef      string
	UnitPrice     float64
	Quantity      int
	DiscountValue float64
	DiscountType  DiscountType
	IsOptional    bool
}

// Gross returns UnitPrice * Quantity before any discount.
func (li LineItem) Gross() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// NetTotal returns the line total after the item-level discount, clamped so
// a discount can never push a line negative.
func (li LineItem) NetTotal() float64 {
	gross := li.Gross()
	var discount float64
	switch li.DiscountType {
	case DiscountAmount:
		discount = li.DiscountValue
	default:
		// percent is the default when unset
		discount = gross * (li.DiscountValue / 100)
	}
	net := gross - discount
	if net < 0 {
		return 0
	}
	return net
}

// Adjustments carries the order-level inputs applied after line totals.
// Pointer fields distinguish "absent" from zero: a non-nil TaxAmount,
// RoundOff or FinalAmount is an authoritative backend value and takes
// precedence over local derivation.
type Adjustments struct {
	ExtraDiscountValue float64
	ExtraDiscountType  DiscountType
	Shipping           float64
	TaxRate            float64
	TaxAmount          *float64
	RoundOff           *float64
	FinalAmount        *float64
}

// Breakdown is the derived totals block. GrandTotal is always the locally
// computed value; DisplayTotal prefers an authoritative FinalAmount so the
// two can be reconciled against each other.
type Breakdown struct {
	Subtotal          float64
	ItemDiscountTotal float64
	ExtraDiscount     float64
	TaxableValue      float64
	TaxAmount         float64
	Shipping          float64
	RoundOff          float64
	GrandTotal        float64
	DisplayTotal      float64
	OptionalValue     float64
}

// ComputeTotals derives the totals breakdown for a document. Optional items
// are summed into OptionalValue only. Invalid numeric input returns a
// *ValidationError and no breakdown.
func ComputeTotals(items []LineItem, adj Adjustments) (Breakdown, error) {
	if err := validate(items, adj); err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	for _, li := range items {
		if li.IsOptional {
			b.OptionalValue += li.NetTotal()
			continue
		}
		b.Subtotal += li.Gross()
		b.ItemDiscountTotal += li.Gross() - li.NetTotal()
	}

	discounted := b.Subtotal - b.ItemDiscountTotal
	b.ExtraDiscount = extraDiscount(discounted, adj)
	b.TaxableValue = discounted - b.ExtraDiscount

	if adj.TaxAmount != nil {
		b.TaxAmount = *adj.TaxAmount
	} else {
		b.TaxAmount = b.TaxableValue * adj.TaxRate / 100
	}
	b.Shipping = adj.Shipping

	beforeRound := b.TaxableValue + b.TaxAmount + b.Shipping
	if adj.RoundOff != nil {
		b.RoundOff = *adj.RoundOff
	} else {
		b.RoundOff = math.Round(beforeRound) - beforeRound
	}
	b.GrandTotal = beforeRound + b.RoundOff

	b.DisplayTotal = b.GrandTotal
	if adj.FinalAmount != nil {
		b.DisplayTotal = *adj.FinalAmount
	}
	return b, nil
}

// extraDiscount applies the order-level discount against the sum of line
// totals, capped so the taxable value cannot go negative.
func extraDiscount(base float64, adj Adjustments) float64 {
	if adj.ExtraDiscountValue <= 0 {
		return 0
	}
	var amount float64
	if adj.ExtraDiscountType == DiscountAmount {
		amount = adj.ExtraDiscountValue
	} else {
		amount = base * (adj.ExtraDiscountValue / 100)
	}
	if amount > base {
		return base
	}
	return amount
}

func validate(items []LineItem, adj Adjustments) error {
	for i, li := range items {
		switch {
		case li.Quantity < 1:
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].quantity", i),
				Reason: fmt.Sprintf("must be >= 1, got %d", li.Quantity),
			}
		case li.UnitPrice < 0:
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].unitPrice", i),
				Reason: fmt.Sprintf("must be >= 0, got %g", li.UnitPrice),
			}
		case li.DiscountValue < 0:
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].discountValue", i),
				Reason: fmt.Sprintf("must be >= 0, got %g", li.DiscountValue),
			}
		}
	}
	if adj.Shipping < 0 {
		return &ValidationError{Field: "shipping", Reason: fmt.Sprintf("must be >= 0, got %g", adj.Shipping)}
	}
	if adj.ExtraDiscountValue < 0 {
		return &ValidationError{Field: "extraDiscountValue", Reason: fmt.Sprintf("must be >= 0, got %g", adj.ExtraDiscountValue)}
	}
	return nil
}

// RoundDisplay rounds a computed amount to two decimals for presentation.
// Internal math is kept in full precision; this is the single rounding step.
func RoundDisplay(v float64) float64 {
	return math.Round(v*100) / 100
}
