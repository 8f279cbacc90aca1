package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/quotadesk/quotadesk/internal/pricing"
)

// ExcelExporter writes the spreadsheet rendition of a Document: one row per
// line item with its image, followed by the totals block, the
// amount-in-words line, the HSN tax summary and the bank/declaration foot.
type ExcelExporter struct {
	Fetcher *ImageFetcher
	Logger  *slog.Logger
}

// NewExcelExporter builds an exporter with the default image fetcher.
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	return &ExcelExporter{Fetcher: NewImageFetcher(), Logger: logger}
}

var sheetColumns = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}

// Export produces the workbook bytes. Per-image fetch failures degrade to
// the placeholder; a workbook write failure is fatal to this attempt.
func (e *ExcelExporter) Export(ctx context.Context, doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := doc.Title
	if sheet == "" || len(sheet) > 31 {
		sheet = "Quotation"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, &RenderError{Stage: "worksheet setup", Err: err}
	}

	widths := []float64{6, 12, 35, 14, 12, 12, 12, 8, 14}
	for i, col := range sheetColumns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, &RenderError{Stage: "worksheet setup", Err: err}
		}
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, &RenderError{Stage: "worksheet styles", Err: err}
	}

	row := e.writeHeader(f, sheet, doc, styles)
	row, err = e.writeItems(ctx, f, sheet, doc, styles, row)
	if err != nil {
		return nil, err
	}
	row = e.writeTotals(f, sheet, doc, styles, row)
	row = e.writeTaxSummary(f, sheet, doc, styles, row)
	e.writeFoot(f, sheet, doc, styles, row)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, &RenderError{Stage: "workbook write", Err: err}
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	title   int
	bold    int
	header  int
	cell    int
	summary int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, err
	}
	s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, err
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9D9D9"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return s, err
	}
	s.cell, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return s, err
	}
	s.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	return s, err
}

func thinBorders() []excelize.Border {
	sides := []string{"top", "left", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Style: 1, Color: "#000000"}
	}
	return borders
}

func cellRef(col string, row int) string { return fmt.Sprintf("%s%d", col, row) }

func (e *ExcelExporter) writeHeader(f *excelize.File, sheet string, doc *Document, styles sheetStyles) int {
	_ = f.MergeCell(sheet, "B2", "E2")
	_ = f.SetCellValue(sheet, "B2", "Estimate / Quotation")
	_ = f.SetCellStyle(sheet, "B2", "B2", styles.title)

	_ = f.MergeCell(sheet, "F2", "I2")
	_ = f.SetCellValue(sheet, "F2", doc.BrandLine)
	_ = f.SetCellStyle(sheet, "F2", "F2", styles.bold)

	_ = f.MergeCell(sheet, "B4", "E5")
	_ = f.SetCellValue(sheet, "B4", doc.CustomerName)
	_ = f.MergeCell(sheet, "G4", "I5")
	if !doc.Date.IsZero() {
		_ = f.SetCellValue(sheet, "G4", doc.Date.Format("02/01/2006"))
	}
	_ = f.MergeCell(sheet, "B6", "I7")
	_ = f.SetCellValue(sheet, "B6", doc.CustomerAddress)

	return 9
}

func (e *ExcelExporter) writeItems(ctx context.Context, f *excelize.File, sheet string, doc *Document, styles sheetStyles, row int) (int, error) {
	row = e.writeItemTable(ctx, f, sheet, doc.Main, styles, row)

	if len(doc.Optional) > 0 {
		row++
		_ = f.MergeCell(sheet, cellRef("A", row), cellRef("I", row))
		_ = f.SetCellValue(sheet, cellRef("A", row), "Optional / Suggested Accessories (not included in the quoted total)")
		_ = f.SetCellStyle(sheet, cellRef("A", row), cellRef("A", row), styles.bold)
		row++
		row = e.writeItemTable(ctx, f, sheet, doc.Optional, styles, row)
	}
	return row, nil
}

func (e *ExcelExporter) writeItemTable(ctx context.Context, f *excelize.File, sheet string, items []pricing.LineItem, styles sheetStyles, row int) int {
	header := []any{"S.No", "Image", "Product Name", "Code", "MRP", "Discount", "Rate", "Unit", "Total"}
	for i, v := range header {
		ref := cellRef(sheetColumns[i], row)
		_ = f.SetCellValue(sheet, ref, v)
		_ = f.SetCellStyle(sheet, ref, ref, styles.header)
	}
	_ = f.SetRowHeight(sheet, row, 30)
	row++

	fetcher := e.Fetcher
	if fetcher == nil {
		fetcher = NewImageFetcher()
	}
	urls := make([]string, len(items))
	for i, li := range items {
		urls[i] = li.ImageRef
	}
	images := fetcher.FetchAll(ctx, urls)

	for i, li := range items {
		net := pricing.RoundDisplay(li.NetTotal())
		rate := li.UnitPrice
		if li.Quantity > 0 {
			rate = net / float64(li.Quantity)
		}
		values := []any{
			i + 1,
			"", // image cell
			li.Name,
			li.Code,
			fmt.Sprintf("₹%.2f", li.UnitPrice),
			DiscountDisplay(li),
			fmt.Sprintf("₹%.2f", rate),
			li.Quantity,
			fmt.Sprintf("₹%.2f", net),
		}
		for c, v := range values {
			ref := cellRef(sheetColumns[c], row)
			_ = f.SetCellValue(sheet, ref, v)
			_ = f.SetCellStyle(sheet, ref, ref, styles.cell)
		}
		_ = f.SetRowHeight(sheet, row, 60)

		img := images[i]
		if err := f.AddPictureFromBytes(sheet, cellRef("B", row), &excelize.Picture{
			Extension: "." + img.Extension,
			File:      img.Data,
			Format:    &excelize.GraphicOptions{AutoFit: true},
		}); err != nil && e.Logger != nil {
			e.Logger.Warn("embed product image failed", slog.Int("row", row), slog.Any("error", err))
		}
		row++
	}
	return row
}

func (e *ExcelExporter) writeTotals(f *excelize.File, sheet string, doc *Document, styles sheetStyles, row int) int {
	row++
	put := func(label string, value float64) {
		_ = f.SetCellValue(sheet, cellRef("G", row), label)
		_ = f.SetCellStyle(sheet, cellRef("G", row), cellRef("G", row), styles.summary)
		// Same renderer as the HTML summary block, so negatives come out
		// as -₹x.xx in both exports.
		_ = f.SetCellValue(sheet, cellRef("I", row), pricing.FormatINR(pricing.RoundDisplay(value)))
		row++
	}
	t := doc.Totals
	put("Subtotal", t.Subtotal)
	if t.ItemDiscountTotal > 0 {
		put("Total Discount", -t.ItemDiscountTotal)
	}
	if t.ExtraDiscount > 0 {
		put("Extra Discount", -t.ExtraDiscount)
	}
	put("Taxable Value", t.TaxableValue)
	if t.TaxAmount > 0 {
		put("Tax", t.TaxAmount)
	}
	if t.Shipping > 0 {
		put("Shipping", t.Shipping)
	}
	if t.RoundOff != 0 {
		put("Round Off", t.RoundOff)
	}
	put("Grand Total", t.DisplayTotal)

	_ = f.MergeCell(sheet, cellRef("A", row), cellRef("I", row))
	_ = f.SetCellValue(sheet, cellRef("A", row), "Amount Chargeable (in words): "+doc.AmountInWords())
	_ = f.SetCellStyle(sheet, cellRef("A", row), cellRef("A", row), styles.bold)
	return row + 1
}

func (e *ExcelExporter) writeTaxSummary(f *excelize.File, sheet string, doc *Document, styles sheetStyles, row int) int {
	if doc.TaxRate <= 0 {
		return row
	}
	row++
	header := []any{"HSN/SAC", "Taxable Value", "CGST", "CGST Amt", "SGST", "SGST Amt", "Total"}
	for i, v := range header {
		ref := cellRef(sheetColumns[i], row)
		_ = f.SetCellValue(sheet, ref, v)
		_ = f.SetCellStyle(sheet, ref, ref, styles.header)
	}
	row++

	// Aggregate taxable value per HSN code; CGST and SGST each take half
	// the configured rate.
	type bucket struct {
		taxable float64
		cgst    float64
	}
	var order []string
	buckets := make(map[string]*bucket)
	for _, li := range doc.Main {
		hsn := doc.HSN(li.ProductID)
		b, ok := buckets[hsn]
		if !ok {
			b = &bucket{}
			buckets[hsn] = b
			order = append(order, hsn)
		}
		taxable := li.NetTotal()
		b.taxable += taxable
		b.cgst += taxable * doc.TaxRate / 200
	}

	half := doc.TaxRate / 2
	for _, hsn := range order {
		b := buckets[hsn]
		values := []any{
			hsn,
			fmt.Sprintf("₹%.2f", pricing.RoundDisplay(b.taxable)),
			fmt.Sprintf("%.1f%%", half),
			fmt.Sprintf("₹%.2f", pricing.RoundDisplay(b.cgst)),
			fmt.Sprintf("%.1f%%", half),
			fmt.Sprintf("₹%.2f", pricing.RoundDisplay(b.cgst)),
			fmt.Sprintf("₹%.2f", pricing.RoundDisplay(b.taxable+2*b.cgst)),
		}
		for c, v := range values {
			_ = f.SetCellValue(sheet, cellRef(sheetColumns[c], row), v)
		}
		row++
	}

	_ = f.MergeCell(sheet, cellRef("A", row), cellRef("G", row))
	_ = f.SetCellValue(sheet, cellRef("A", row), "Tax Amount (in words): "+pricing.AmountInWords(doc.Totals.TaxAmount))
	_ = f.SetCellStyle(sheet, cellRef("A", row), cellRef("A", row), styles.bold)
	return row + 1
}

func (e *ExcelExporter) writeFoot(f *excelize.File, sheet string, doc *Document, styles sheetStyles, row int) {
	row++
	bank := doc.Bank
	_ = f.MergeCell(sheet, cellRef("A", row), cellRef("D", row))
	_ = f.SetCellValue(sheet, cellRef("A", row), fmt.Sprintf(
		"Company's Bank Details\nA/c Holder: %s\nBank: %s\nA/c No: %s\nBranch & IFS: %s",
		bank.AccountHolder, bank.BankName, bank.AccountNumber, bank.BranchIFSC,
	))
	_ = f.MergeCell(sheet, cellRef("E", row), cellRef("I", row))
	_ = f.SetCellValue(sheet, cellRef("E", row), fmt.Sprintf("PAN: %s\nDeclaration: %s", bank.PAN, doc.Declaration))
	row += 2

	_ = f.MergeCell(sheet, cellRef("A", row), cellRef("I", row))
	_ = f.SetCellValue(sheet, cellRef("A", row), "Authorised Signatory")
	_ = f.SetCellStyle(sheet, cellRef("A", row), cellRef("A", row), styles.summary)
	row += 2

	_ = f.MergeCell(sheet, cellRef("A", row), cellRef("I", row))
	_ = f.SetCellValue(sheet, cellRef("A", row), "Terms & Conditions: Refer attached document.")
	_ = f.SetCellStyle(sheet, cellRef("A", row), cellRef("A", row), styles.bold)
}
