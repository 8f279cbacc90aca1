package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quotadesk/quotadesk/internal/pricing"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "Quotation_Q-1042_Version_2.pdf", FileName("Quotation", "Q-1042", 2, "pdf"))
	assert.Equal(t, "Quotation_Q-1042_Version_2.xlsx", FileName("Quotation", "Q-1042", 2, "xlsx"))
}

func TestDiscountDisplay(t *testing.T) {
	assert.Equal(t, "0", DiscountDisplay(pricing.LineItem{}))
	assert.Equal(t, "12.5%", DiscountDisplay(pricing.LineItem{DiscountValue: 12.5}))
	assert.Equal(t, "₹40.00", DiscountDisplay(pricing.LineItem{
		DiscountValue: 40, DiscountType: pricing.DiscountAmount,
	}))
}

func TestHSNFallback(t *testing.T) {
	doc := &Document{HSNByProduct: map[string]string{"p1": "8414"}}
	assert.Equal(t, "8414", doc.HSN("p1"))
	assert.Equal(t, "N/A", doc.HSN("p2"))
	assert.Equal(t, "N/A", (&Document{}).HSN("p1"))
}
