package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestExcelExporter() *ExcelExporter {
	return NewExcelExporter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sheetText(t *testing.T, data []byte) (string, string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "|"))
		b.WriteString("\n")
	}
	return sheet, b.String()
}

func TestExcelExport(t *testing.T) {
	doc := exportDocument(t)
	out, err := newTestExcelExporter().Export(context.Background(), doc)
	require.NoError(t, err)

	sheet, text := sheetText(t, out)
	assert.Equal(t, "Quotation", sheet)
	assert.Contains(t, text, "Estimate / Quotation")
	assert.Contains(t, text, "Asha Traders")
	assert.Contains(t, text, "Ceiling Fan")
	assert.Contains(t, text, "Wall Switch")
	assert.Contains(t, text, "Grand Total")
	assert.Contains(t, text, "Amount Chargeable (in words): "+doc.AmountInWords())
	assert.Contains(t, text, "HSN/SAC")
	assert.Contains(t, text, "Authorised Signatory")
}

func TestExcelExportOptionalSection(t *testing.T) {
	doc := exportDocument(t)
	doc.Optional = append(doc.Optional, doc.Main[0])

	out, err := newTestExcelExporter().Export(context.Background(), doc)
	require.NoError(t, err)

	_, text := sheetText(t, out)
	assert.Contains(t, text, "Optional / Suggested Accessories")
}

func TestExcelExportDiscountSignPrecedesRupee(t *testing.T) {
	doc := exportDocument(t)

	out, err := newTestExcelExporter().Export(context.Background(), doc)
	require.NoError(t, err)

	_, text := sheetText(t, out)
	assert.Contains(t, text, "-₹150.00")
	assert.NotContains(t, text, "₹-")
}

func TestExcelExportImageFailureUsesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	doc := exportDocument(t)
	doc.Main[0].ImageRef = srv.URL + "/gone.png"

	out, err := newTestExcelExporter().Export(context.Background(), doc)
	require.NoError(t, err, "a dead image URL must not abort the export")

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	pics, err := f.GetPictures(f.GetSheetName(0), "B10")
	require.NoError(t, err)
	require.Len(t, pics, 1)
	assert.Equal(t, PlaceholderPNG(), pics[0].File, "row image must be the placeholder")
}

func TestExcelExportSkipsTaxSummaryWithoutRate(t *testing.T) {
	doc := exportDocument(t)
	doc.TaxRate = 0

	out, err := newTestExcelExporter().Export(context.Background(), doc)
	require.NoError(t, err)

	_, text := sheetText(t, out)
	assert.NotContains(t, text, "HSN/SAC")
}
