package quotations

import (
	"time"

	"github.com/quotadesk/quotadesk/internal/pricing"
)

type ItemRequest struct {
	ProductCode   string               `json:"product_code" validate:"required,max=50"`
	Name          string               `json:"name,omitempty" validate:"omitempty,max=300"`
	ImageURL      string               `json:"image_url,omitempty" validate:"omitempty,url"`
	UnitPrice     *float64             `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Quantity      int                  `json:"quantity" validate:"required,gte=1"`
	DiscountValue float64              `json:"discount_value" validate:"gte=0"`
	DiscountType  pricing.DiscountType `json:"discount_type,omitempty" validate:"omitempty,oneof=percent amount"`
	IsOptional    bool                 `json:"is_optional"`
}

type CreateQuotationRequest struct {
	Title      string        `json:"title" validate:"required,max=200"`
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	QuoteDate  time.Time     `json:"quote_date" validate:"required"`
	ValidUntil time.Time     `json:"valid_until" validate:"required"`
	Notes      *string       `json:"notes,omitempty"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`

	ExtraDiscountValue float64              `json:"extra_discount_value" validate:"gte=0"`
	ExtraDiscountType  pricing.DiscountType `json:"extra_discount_type,omitempty" validate:"omitempty,oneof=percent amount"`
	Shipping           float64              `json:"shipping" validate:"gte=0"`
	TaxRate            float64              `json:"tax_rate" validate:"gte=0,lte=100"`
	TaxAmount          *float64             `json:"tax_amount,omitempty" validate:"omitempty,gte=0"`
	RoundOff           *float64             `json:"round_off,omitempty"`
	FinalAmount        *float64             `json:"final_amount,omitempty" validate:"omitempty,gte=0"`
}

type UpdateQuotationRequest struct {
	Title      *string        `json:"title,omitempty" validate:"omitempty,max=200"`
	QuoteDate  *time.Time     `json:"quote_date,omitempty"`
	ValidUntil *time.Time     `json:"valid_until,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
	Items      *[]ItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`

	ExtraDiscountValue *float64              `json:"extra_discount_value,omitempty" validate:"omitempty,gte=0"`
	ExtraDiscountType  *pricing.DiscountType `json:"extra_discount_type,omitempty" validate:"omitempty,oneof=percent amount"`
	Shipping           *float64              `json:"shipping,omitempty" validate:"omitempty,gte=0"`
	TaxRate            *float64              `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TaxAmount          *float64              `json:"tax_amount,omitempty" validate:"omitempty,gte=0"`
	RoundOff           *float64              `json:"round_off,omitempty"`
	FinalAmount        *float64              `json:"final_amount,omitempty" validate:"omitempty,gte=0"`
}

type ListQuotationsRequest struct {
	CustomerID *int64     `json:"customer_id,omitempty"`
	Status     *Status    `json:"status,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	Limit      int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int        `json:"offset" validate:"gte=0"`
}

// TotalsResponse pairs the stored quotation with its full derived
// breakdown, rounded for display.
type TotalsResponse struct {
	Subtotal          float64 `json:"subtotal"`
	ItemDiscountTotal float64 `json:"item_discount_total"`
	ExtraDiscount     float64 `json:"extra_discount"`
	TaxableValue      float64 `json:"taxable_value"`
	TaxAmount         float64 `json:"tax_amount"`
	Shipping          float64 `json:"shipping"`
	RoundOff          float64 `json:"round_off"`
	GrandTotal        float64 `json:"grand_total"`
	DisplayTotal      float64 `json:"display_total"`
	OptionalValue     float64 `json:"optional_value"`
	AmountInWords     string  `json:"amount_in_words"`
}

func totalsResponse(b pricing.Breakdown) TotalsResponse {
	return TotalsResponse{
		Subtotal:          pricing.RoundDisplay(b.Subtotal),
		ItemDiscountTotal: pricing.RoundDisplay(b.ItemDiscountTotal),
		ExtraDiscount:     pricing.RoundDisplay(b.ExtraDiscount),
		TaxableValue:      pricing.RoundDisplay(b.TaxableValue),
		TaxAmount:         pricing.RoundDisplay(b.TaxAmount),
		Shipping:          pricing.RoundDisplay(b.Shipping),
		RoundOff:          pricing.RoundDisplay(b.RoundOff),
		GrandTotal:        pricing.RoundDisplay(b.GrandTotal),
		DisplayTotal:      pricing.RoundDisplay(b.DisplayTotal),
		OptionalValue:     pricing.RoundDisplay(b.OptionalValue),
		AmountInWords:     pricing.AmountInWords(b.DisplayTotal),
	}
}
