package document

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotadesk/quotadesk/internal/pricing"
)

func makeItems(n int, prefix string) []pricing.LineItem {
	items := make([]pricing.LineItem, n)
	for i := range items {
		items[i] = pricing.LineItem{
			ProductID: fmt.Sprintf("%s-%d", prefix, i),
			UnitPrice: 10,
			Quantity:  1,
		}
	}
	return items
}

func itemPages(pages []Page) []Page {
	var out []Page
	for _, p := range pages {
		if p.Kind == PageLineItems {
			out = append(out, p)
		}
	}
	return out
}

func countSummaries(pages []Page) int {
	n := 0
	for _, p := range pages {
		if p.IncludesSummary {
			n++
		}
	}
	return n
}

func TestPaginateSummaryOnFinalItemPage(t *testing.T) {
	// 25 items, 10 per normal page, 8 on the final page with summary:
	// [10, 10, 5] and the 5-item page carries the summary.
	pages, err := Paginate(makeItems(25, "m"), nil, DefaultConfig())
	require.NoError(t, err)

	ip := itemPages(pages)
	require.Len(t, ip, 3)
	assert.Len(t, ip[0].Items, 10)
	assert.Len(t, ip[1].Items, 10)
	assert.Len(t, ip[2].Items, 5)
	assert.False(t, ip[0].IncludesSummary)
	assert.False(t, ip[1].IncludesSummary)
	assert.True(t, ip[2].IncludesSummary)
	assert.Equal(t, 1, countSummaries(pages))

	// No dedicated summary page in this branch.
	for _, p := range pages {
		assert.NotEqual(t, PageSummary, p.Kind)
	}
}

func TestPaginateSummaryDeferredWhenOptionalsExist(t *testing.T) {
	pages, err := Paginate(makeItems(25, "m"), makeItems(3, "o"), DefaultConfig())
	require.NoError(t, err)

	ip := itemPages(pages)
	require.Len(t, ip, 3)
	assert.Len(t, ip[2].Items, 5)
	for _, p := range ip {
		assert.False(t, p.IncludesSummary)
	}

	// ... optionalItems page then a dedicated summary page, in that order.
	kinds := make([]PageKind, len(pages))
	for i, p := range pages {
		kinds[i] = p.Kind
	}
	assert.Equal(t, []PageKind{
		PageCover, PageLetterhead,
		PageLineItems, PageLineItems, PageLineItems,
		PageOptionalItems, PageSummary, PageThankYou,
	}, kinds)

	var optPage Page
	for _, p := range pages {
		if p.Kind == PageOptionalItems {
			optPage = p
		}
	}
	assert.Len(t, optPage.Items, 3)
	assert.Equal(t, 1, countSummaries(pages))
}

func TestPaginateTerminalChunkRule(t *testing.T) {
	// 12 items: first pass remaining=12 > 8 so a full 10-item page is
	// emitted, then remaining=2 <= 8 finishes with the summary.
	pages, err := Paginate(makeItems(12, "m"), nil, DefaultConfig())
	require.NoError(t, err)

	ip := itemPages(pages)
	require.Len(t, ip, 2)
	assert.Len(t, ip[0].Items, 10)
	assert.Len(t, ip[1].Items, 2)
	assert.True(t, ip[1].IncludesSummary)
}

func TestPaginateOrderPreserved(t *testing.T) {
	main := makeItems(37, "m")
	for _, optional := range [][]pricing.LineItem{nil, makeItems(4, "o")} {
		pages, err := Paginate(main, optional, DefaultConfig())
		require.NoError(t, err)

		var got []string
		for _, p := range itemPages(pages) {
			for _, it := range p.Items {
				got = append(got, it.ProductID)
			}
		}
		require.Len(t, got, len(main))
		for i, it := range main {
			assert.Equal(t, it.ProductID, got[i])
		}
		assert.Equal(t, 1, countSummaries(pages))
	}
}

func TestPaginateEmpty(t *testing.T) {
	pages, err := Paginate(nil, nil, DefaultConfig())
	require.NoError(t, err)

	kinds := make([]PageKind, len(pages))
	for i, p := range pages {
		kinds[i] = p.Kind
	}
	assert.Equal(t, []PageKind{PageCover, PageLetterhead, PageThankYou}, kinds)
	assert.Equal(t, 0, countSummaries(pages))
}

func TestPaginateFixedPagesAlwaysPresent(t *testing.T) {
	pages, err := Paginate(makeItems(5, "m"), nil, DefaultConfig())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(pages), 3)
	assert.Equal(t, PageCover, pages[0].Kind)
	assert.Equal(t, PageLetterhead, pages[1].Kind)
	assert.Equal(t, PageThankYou, pages[len(pages)-1].Kind)
}

func TestPaginateNumbersWithinKindGroup(t *testing.T) {
	pages, err := Paginate(makeItems(25, "m"), nil, DefaultConfig())
	require.NoError(t, err)

	ip := itemPages(pages)
	for i, p := range ip {
		assert.Equal(t, i+1, p.PageNumber)
		assert.Equal(t, len(ip), p.TotalPages)
	}
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, 1, pages[0].TotalPages)
}

func TestPaginateConfigErrors(t *testing.T) {
	_, err := Paginate(makeItems(1, "m"), nil, Config{ItemsPerNormalPage: 0, ItemsPerFinalPageWithSummary: 8})
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "ItemsPerNormalPage", cerr.Field)

	_, err = Paginate(makeItems(1, "m"), nil, Config{ItemsPerNormalPage: 10, ItemsPerFinalPageWithSummary: -1})
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "ItemsPerFinalPageWithSummary", cerr.Field)
}
