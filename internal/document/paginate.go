// Package document turns a priced line-item list into the ordered page
// sequence of a printable quotation: fixed cover and letterhead pages, item
// pages, an optional-accessories page, the totals summary and a closing
// thank-you page. The output drives both the HTML renderer and the export
// pipelines.
package document

import (
	"fmt"

	"github.com/quotadesk/quotadesk/internal/pricing"
)

// PageKind identifies what a page renders.
type PageKind string

const (
	PageCover         PageKind = "cover"
	PageLetterhead    PageKind = "letterhead"
	PageLineItems     PageKind = "lineItems"
	PageOptionalItems PageKind = "optionalItems"
	PageSummary       PageKind = "summary"
	PageThankYou      PageKind = "thankYou"
)

// Page describes one rendered page. Items is empty for non-item pages.
// PageNumber and TotalPages are 1-based and count within pages of the same
// kind, so item pages number independently of the fixed pages around them.
type Page struct {
	Kind            PageKind
	Items           []pricing.LineItem
	IncludesSummary bool
	PageNumber      int
	TotalPages      int
}

// Config carries the page-capacity constants. The final page holds fewer
// items than a normal one because the totals summary shares it.
type Config struct {
	ItemsPerNormalPage           int
	ItemsPerFinalPageWithSummary int
}

// DefaultConfig mirrors the print layout: ten rows on a full page, eight on
// the page that also carries the summary block.
func DefaultConfig() Config {
	return Config{ItemsPerNormalPage: 10, ItemsPerFinalPageWithSummary: 8}
}

// ConfigError reports unusable pagination constants. With the fixed defaults
// it indicates a programming error, not bad user input.
type ConfigError struct {
	Field string
	Value int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("document: %s must be positive, got %d", e.Field, e.Value)
}

// Paginate splits main items into pages and places the totals summary.
//
// The summary lands on the last item page only when that page's remainder
// fits ItemsPerFinalPageWithSummary and no optional group follows. Whenever
// optional items exist they get their own page, followed by a dedicated
// summary page; the summary is never glued to the optional-items page.
func Paginate(main, optional []pricing.LineItem, cfg Config) ([]Page, error) {
	if cfg.ItemsPerNormalPage <= 0 {
		return nil, &ConfigError{Field: "ItemsPerNormalPage", Value: cfg.ItemsPerNormalPage}
	}
	if cfg.ItemsPerFinalPageWithSummary <= 0 {
		return nil, &ConfigError{Field: "ItemsPerFinalPageWithSummary", Value: cfg.ItemsPerFinalPageWithSummary}
	}

	hasSecondary := len(optional) > 0

	pages := []Page{
		{Kind: PageCover},
		{Kind: PageLetterhead},
	}

	remaining := main
	for len(remaining) > 0 {
		if len(remaining) <= cfg.ItemsPerFinalPageWithSummary && !hasSecondary {
			// Terminal chunk: everything left fits alongside the summary.
			pages = append(pages, Page{
				Kind:            PageLineItems,
				Items:           remaining,
				IncludesSummary: true,
			})
			remaining = nil
			continue
		}
		n := cfg.ItemsPerNormalPage
		if n > len(remaining) {
			n = len(remaining)
		}
		pages = append(pages, Page{Kind: PageLineItems, Items: remaining[:n]})
		remaining = remaining[n:]
	}

	if hasSecondary {
		pages = append(pages,
			Page{Kind: PageOptionalItems, Items: optional},
			Page{Kind: PageSummary, IncludesSummary: true},
		)
	}

	pages = append(pages, Page{Kind: PageThankYou})
	number(pages)
	return pages, nil
}

// number assigns PageNumber/TotalPages within each kind group.
func number(pages []Page) {
	counts := make(map[PageKind]int)
	for _, p := range pages {
		counts[p.Kind]++
	}
	seen := make(map[PageKind]int)
	for i := range pages {
		seen[pages[i].Kind]++
		pages[i].PageNumber = seen[pages[i].Kind]
		pages[i].TotalPages = counts[pages[i].Kind]
	}
}
