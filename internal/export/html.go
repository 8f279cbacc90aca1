package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/quotadesk/quotadesk/internal/document"
	"github.com/quotadesk/quotadesk/internal/pricing"
	"github.com/quotadesk/quotadesk/web"
)

// HTMLRenderer produces the print-layout HTML consumed by the raster
// capture step and by the on-screen preview endpoint.
type HTMLRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer parses the embedded export templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"inr":      pricing.FormatINR,
		"words":    pricing.AmountInWords,
		"discount": DiscountDisplay,
		"net": func(li pricing.LineItem) float64 {
			return pricing.RoundDisplay(li.NetTotal())
		},
		"add": func(a, b int) int { return a + b },
		"isKind": func(p document.Page, kind string) bool {
			return p.Kind == document.PageKind(kind)
		},
		// html/template rewrites data: URLs to #ZgotmplZ. The inlining step
		// builds these itself from fetched bytes, so only that scheme is
		// marked trusted; anything else keeps the default URL filtering.
		"imgSrc": func(s string) any {
			if strings.HasPrefix(s, "data:image/") {
				return template.URL(s)
			}
			return s
		},
	}

	tpl, err := template.New("quotation.html").Funcs(funcMap).ParseFS(
		web.Templates, "templates/export/quotation.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse export template: %w", err)
	}
	return &HTMLRenderer{templates: tpl}, nil
}

// Render produces the full multi-page HTML document. Every page descriptor
// becomes one div.page; the capture step rasterizes the whole sequence.
func (r *HTMLRenderer) Render(doc *Document) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("html renderer not initialized")
	}
	buf := &bytes.Buffer{}
	if err := r.templates.ExecuteTemplate(buf, "quotation.html", doc); err != nil {
		return "", fmt.Errorf("render export template: %w", err)
	}
	return buf.String(), nil
}
