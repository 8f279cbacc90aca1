// Package quotations owns the quotation lifecycle: drafting, pricing,
// versioning, the approval workflow and the export surface.
package quotations

import (
	"time"

	"github.com/quotadesk/quotadesk/internal/pricing"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

type Quotation struct {
	ID         int64     `json:"id"`
	RefID      string    `json:"ref_id"`
	Title      string    `json:"title"`
	CustomerID int64     `json:"customer_id"`
	Status     Status    `json:"status"`
	Version    int       `json:"version"`
	QuoteDate  time.Time `json:"quote_date"`
	ValidUntil time.Time `json:"valid_until"`
	Notes      *string   `json:"notes,omitempty"`

	// Order-level adjustments. The three pointer fields hold values fixed
	// at approval time; when nil the totals are derived on read.
	ExtraDiscountValue float64              `json:"extra_discount_value"`
	ExtraDiscountType  pricing.DiscountType `json:"extra_discount_type"`
	Shipping           float64              `json:"shipping"`
	TaxRate            float64              `json:"tax_rate"`
	TaxAmount          *float64             `json:"tax_amount,omitempty"`
	RoundOff           *float64             `json:"round_off,omitempty"`
	FinalAmount        *float64             `json:"final_amount,omitempty"`

	// Persisted snapshot of the derived totals, refreshed on every write.
	Subtotal     float64 `json:"subtotal"`
	TaxableValue float64 `json:"taxable_value"`
	GrandTotal   float64 `json:"grand_total"`

	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []Item `json:"items,omitempty"`
}

// Item is one stored quotation line. Name, price and image are copied from
// the product at quoting time so later catalog edits do not alter issued
// quotations.
type Item struct {
	ID            int64                `json:"id"`
	QuotationID   int64                `json:"quotation_id"`
	ProductCode   string               `json:"product_code"`
	Name          string               `json:"name"`
	ImageURL      string               `json:"image_url,omitempty"`
	UnitPrice     float64              `json:"unit_price"`
	Quantity      int                  `json:"quantity"`
	DiscountValue float64              `json:"discount_value"`
	DiscountType  pricing.DiscountType `json:"discount_type"`
	IsOptional    bool                 `json:"is_optional"`
	Position      int                  `json:"position"`
}

// LineItem converts a stored item to its pricing representation.
func (it Item) LineItem() pricing.LineItem {
	return pricing.LineItem{
		ProductID:     it.ProductCode,
		Name:          it.Name,
		Code:          it.ProductCode,
		ImageRef:      it.ImageURL,
		UnitPrice:     it.UnitPrice,
		Quantity:      it.Quantity,
		DiscountValue: it.DiscountValue,
		DiscountType:  it.DiscountType,
		IsOptional:    it.IsOptional,
	}
}

// Adjustments collects the order-level pricing inputs.
func (q *Quotation) Adjustments() pricing.Adjustments {
	return pricing.Adjustments{
		ExtraDiscountValue: q.ExtraDiscountValue,
		ExtraDiscountType:  q.ExtraDiscountType,
		Shipping:           q.Shipping,
		TaxRate:            q.TaxRate,
		TaxAmount:          q.TaxAmount,
		RoundOff:           q.RoundOff,
		FinalAmount:        q.FinalAmount,
	}
}

// LineItems splits the stored items into main and optional groups,
// preserving stored order.
func (q *Quotation) LineItems() (main, optional []pricing.LineItem) {
	for _, it := range q.Items {
		li := it.LineItem()
		if it.IsOptional {
			optional = append(optional, li)
		} else {
			main = append(main, li)
		}
	}
	return main, optional
}

// QuotationSummary is the list-view projection.
type QuotationSummary struct {
	Quotation
	CustomerName string `json:"customer_name"`
}
