package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotadesk/quotadesk/internal/document"
	"github.com/quotadesk/quotadesk/internal/pricing"
)

type stubCapturer struct {
	png []byte
	err error
}

func (s *stubCapturer) CapturePNG(ctx context.Context, html string) ([]byte, error) {
	return s.png, s.err
}

func capturedPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func exportDocument(t *testing.T) *Document {
	t.Helper()
	main := []pricing.LineItem{
		{ProductID: "p1", Name: "Ceiling Fan", Code: "CF-100", UnitPrice: 2500, Quantity: 2},
		{ProductID: "p2", Name: "Wall Switch", Code: "WS-20", UnitPrice: 150, Quantity: 10, DiscountValue: 10},
	}
	totals, err := pricing.ComputeTotals(main, pricing.Adjustments{TaxRate: 18})
	require.NoError(t, err)
	pages, err := document.Paginate(main, nil, document.DefaultConfig())
	require.NoError(t, err)

	return &Document{
		Title:        "Quotation",
		RefID:        "Q-1042",
		Version:      2,
		BrandLine:    "Sunrise Electricals",
		Date:         time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		CustomerName: "Asha Traders",
		Main:         main,
		Totals:       totals,
		TaxRate:      18,
		Pages:        pages,
	}
}

func newTestPDFExporter(t *testing.T, cap Capturer) *PDFExporter {
	t.Helper()
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)
	return NewPDFExporter(renderer, cap, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPDFExport(t *testing.T) {
	exp := newTestPDFExporter(t, &stubCapturer{png: capturedPNG(t, 794, 2400)})

	out, err := exp.Export(context.Background(), exportDocument(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output must be a PDF")
}

func TestPDFExportCaptureFailureIsFatal(t *testing.T) {
	boom := &RenderError{Stage: "raster capture", Err: errors.New("chrome exited")}
	exp := newTestPDFExporter(t, &stubCapturer{err: boom})

	out, err := exp.Export(context.Background(), exportDocument(t))
	assert.Nil(t, out, "a failed attempt must yield no partial file")

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "raster capture", re.Stage)
}

func TestPDFExportBadRasterIsFatal(t *testing.T) {
	exp := newTestPDFExporter(t, &stubCapturer{png: []byte("not a png")})

	_, err := exp.Export(context.Background(), exportDocument(t))
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "raster decode", re.Stage)
}

func TestPDFExportTermsFailureDegradesToMainDocument(t *testing.T) {
	exp := newTestPDFExporter(t, &stubCapturer{png: capturedPNG(t, 794, 1200)})
	exp.TermsPDF = []byte("corrupt terms attachment")

	out, err := exp.Export(context.Background(), exportDocument(t))
	require.NoError(t, err, "a broken terms file must not fail the export")
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestHTMLRender(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	doc := exportDocument(t)
	html, err := renderer.Render(doc)
	require.NoError(t, err)

	assert.Contains(t, html, "Asha Traders")
	assert.Contains(t, html, "Ceiling Fan")
	// No optional items, so the summary renders inline on the last item page.
	assert.Contains(t, html, "Total Amount:")
	assert.NotContains(t, html, "Quotation Summary")
	assert.Contains(t, html, "Page 1 of")
	assert.Contains(t, html, pricing.AmountInWords(doc.Totals.DisplayTotal))
}

func TestHTMLRenderDedicatedSummaryPage(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	doc := exportDocument(t)
	doc.Optional = []pricing.LineItem{
		{ProductID: "p3", Name: "Remote Control", Code: "RC-5", UnitPrice: 450, Quantity: 1, IsOptional: true},
	}
	pages, err := document.Paginate(doc.Main, doc.Optional, document.DefaultConfig())
	require.NoError(t, err)
	doc.Pages = pages

	html, err := renderer.Render(doc)
	require.NoError(t, err)

	assert.Contains(t, html, "Optional / Suggested Accessories")
	assert.Contains(t, html, "Quotation Summary")
}

func TestRenderKeepsInlinedImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(capturedPNG(t, 2, 2))
	}))
	defer srv.Close()

	exp := newTestPDFExporter(t, &stubCapturer{png: capturedPNG(t, 794, 1200)})
	doc := exportDocument(t)
	doc.LogoURL = srv.URL + "/logo.png"
	for pi := range doc.Pages {
		for ii := range doc.Pages[pi].Items {
			doc.Pages[pi].Items[ii].ImageRef = srv.URL + "/product.png"
		}
	}

	html, err := exp.Renderer.Render(exp.inlineImages(context.Background(), doc))
	require.NoError(t, err)

	assert.Contains(t, html, `src="data:image/png;base64,`)
	assert.NotContains(t, html, "ZgotmplZ", "inlined images must survive template URL filtering")
}

func TestRenderInlinesPlaceholderForDeadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	exp := newTestPDFExporter(t, &stubCapturer{png: capturedPNG(t, 794, 1200)})
	doc := exportDocument(t)
	for pi := range doc.Pages {
		for ii := range doc.Pages[pi].Items {
			doc.Pages[pi].Items[ii].ImageRef = srv.URL + "/gone.png"
		}
	}

	html, err := exp.Renderer.Render(exp.inlineImages(context.Background(), doc))
	require.NoError(t, err)

	placeholder := "data:image/png;base64," + base64.StdEncoding.EncodeToString(PlaceholderPNG())
	assert.Contains(t, html, placeholder)
	assert.NotContains(t, html, "ZgotmplZ")
}
