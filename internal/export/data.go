// Package export serializes paginated quotation documents to downloadable
// files: a raster-captured PDF and a spreadsheet that mirrors the print
// layout. Both paths consume the same Document view-model so the on-screen
// preview, the PDF and the Excel file always agree.
package export

import (
	"fmt"
	"time"

	"github.com/quotadesk/quotadesk/internal/document"
	"github.com/quotadesk/quotadesk/internal/pricing"
)

// BankDetails feeds the bank block at the foot of exported documents.
type BankDetails struct {
	AccountHolder string
	BankName      string
	AccountNumber string
	BranchIFSC    string
	PAN           string
}

// Document aggregates everything the export pipelines render. It is built
// once per export invocation from the stored quotation and discarded after;
// nothing here is mutated or persisted.
type Document struct {
	Title           string
	RefID           string
	Version         int
	BrandLine       string
	LogoURL         string
	Date            time.Time
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string

	Main     []pricing.LineItem
	Optional []pricing.LineItem
	Totals   pricing.Breakdown
	TaxRate  float64

	// HSN/SAC code per product, for the spreadsheet tax summary.
	HSNByProduct map[string]string

	Bank        BankDetails
	Declaration string

	Pages []document.Page
}

// FileName builds the download name shared by both exporters:
// <Title>_<Id>_Version_<v>.<ext>.
func FileName(title, refID string, version int, ext string) string {
	return fmt.Sprintf("%s_%s_Version_%d.%s", title, refID, version, ext)
}

// AmountInWords is the words line rendered beneath the grand total.
func (d *Document) AmountInWords() string {
	return pricing.AmountInWords(d.Totals.DisplayTotal)
}

// HSN returns the HSN/SAC code for a product, or "N/A" when unknown.
func (d *Document) HSN(productID string) string {
	if code, ok := d.HSNByProduct[productID]; ok && code != "" {
		return code
	}
	return "N/A"
}

// DiscountDisplay renders an item discount the way the print layout shows
// it: "12%" for percent, "₹40.00" for flat amounts, "0" when absent.
func DiscountDisplay(li pricing.LineItem) string {
	if li.DiscountValue == 0 {
		return "0"
	}
	if li.DiscountType == pricing.DiscountAmount {
		return fmt.Sprintf("₹%.2f", li.DiscountValue)
	}
	return fmt.Sprintf("%g%%", li.DiscountValue)
}
