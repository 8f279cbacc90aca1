// Package products manages the catalog quotation lines draw from. Each
// product carries its image list and a free-form slug/value metadata block
// (HSN code, brand, warranty) alongside the pricing fields.
package products

import "time"

type MetaDetail struct {
	Slug  string `json:"slug"`
	Value string `json:"value"`
}

type Product struct {
	ID        int64        `json:"id"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	MRP       float64      `json:"mrp"`
	Price     float64      `json:"price"`
	Unit      string       `json:"unit"`
	Images    []string     `json:"images"`
	Meta      []MetaDetail `json:"meta"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// MetaValue looks up a metadata entry by slug.
func (p Product) MetaValue(slug string) string {
	for _, m := range p.Meta {
		if m.Slug == slug {
			return m.Value
		}
	}
	return ""
}

// HSN is the tax classification code, read from metadata.
func (p Product) HSN() string {
	return p.MetaValue("hsn")
}

// EffectivePrice is the quoted unit price, falling back to MRP when no
// selling price is set.
func (p Product) EffectivePrice() float64 {
	if p.Price > 0 {
		return p.Price
	}
	return p.MRP
}
