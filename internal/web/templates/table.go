package templates

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/WorldInfo/internal/core"
)

// TableID is the element id htmx swaps when the table is re-sorted.
const TableID = "countries-table"

// column is one sortable table column.
type column struct {
	label   string
	key     string
	numeric bool
}

var columns = []column{
	{"Country", "name", false},
	{"Code", "code", false},
	{"Population", "population", true},
	{"Area (km²)", "area", true},
	{"1 USD =", "currencyRate", true},
	{"Official Language", "officialLanguage", false},
	{"GDP per Capita", "gdpPerCapita", true},
	{"GDP Total", "gdpTotal", true},
	{"Gini", "gini", true},
	{"Internet Users %", "internetUsers", true},
	{"Urban Pop %", "urbanPopulation", true},
	{"Status", "status", false},
}

// TableState is a sorted table and the sort that produced it. An empty
// SortKey means the rows are in default order.
type TableState struct {
	Rows    []core.CountryRow
	SortKey string
	Order   core.SortOrder
}

// sortQuery builds the query string for sorting by key.
func sortQuery(key string, order core.SortOrder) string {
	v := url.Values{}
	v.Set("sort", key)
	v.Set("order", string(order))
	return v.Encode()
}

// nextOrder is the order a header link requests: the opposite direction on
// the active column, otherwise ascending for text and descending for numbers.
func (s TableState) nextOrder(c column) core.SortOrder {
	if c.key == s.SortKey {
		if s.Order == core.SortAsc {
			return core.SortDesc
		}
		return core.SortAsc
	}
	if c.numeric {
		return core.SortDesc
	}
	return core.SortAsc
}

// CountriesTable renders the country table fragment. Header links re-fetch
// the fragment from /countries-table with htmx and fall back to a full page
// load without it.
func CountriesTable(state TableState) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		nf := newNumberFormat()

		h.raw(`<div id="`, TableID, `" class="table-wrapper">`)
		h.raw(`<div class="table-toolbar"><span class="row-count">`)
		h.text(strconv.Itoa(len(state.Rows)) + " countries")
		h.raw(`</span>`)

		exportQuery := ""
		if state.SortKey != "" {
			exportQuery = "?" + sortQuery(state.SortKey, state.Order)
		}
		h.raw(`<a class="btn-export" href="/api/export.csv`)
		h.text(exportQuery)
		h.raw(`" download>Export CSV</a></div>`)

		h.raw(`<table class="countries-table"><thead><tr><th scope="col" class="flag-header">Flag</th>`)
		for _, c := range columns {
			q := sortQuery(c.key, state.nextOrder(c))
			h.raw(`<th scope="col"`)
			if c.key == state.SortKey {
				if state.Order == core.SortAsc {
					h.raw(` aria-sort="ascending"`)
				} else {
					h.raw(` aria-sort="descending"`)
				}
			}
			h.raw(`><a href="/?`)
			h.text(q)
			h.raw(`" hx-get="/countries-table?`)
			h.text(q)
			h.raw(`" hx-target="#`, TableID, `" hx-swap="outerHTML" hx-push-url="/?`)
			h.text(q)
			h.raw(`">`)
			h.text(c.label)
			if c.key == state.SortKey {
				if state.Order == core.SortAsc {
					h.raw(` ▲`)
				} else {
					h.raw(` ▼`)
				}
			}
			h.raw(`</a></th>`)
		}
		h.raw(`</tr></thead><tbody>`)

		if len(state.Rows) == 0 {
			h.raw(`<tr><td colspan="`, strconv.Itoa(len(columns)+1), `" class="empty">No countries found</td></tr>`)
		}
		for i := range state.Rows {
			writeRow(h, nf, &state.Rows[i])
		}
		h.raw(`</tbody></table></div>`)
	})
}

func writeRow(h *htmlWriter, nf numberFormat, row *core.CountryRow) {
	h.raw(`<tr data-code="`)
	h.text(row.Code)
	h.raw(`"><td class="flag-cell">`)
	if row.FlagSvg != "" {
		h.raw(`<img class="flag-svg" loading="lazy" src="`)
		h.text(string(templ.URL(row.FlagSvg)))
		h.raw(`" alt="`)
		h.text(row.Name)
		h.raw(`">`)
	}
	h.raw(`</td>`)

	language := row.DisplayLanguage()
	if language == "" {
		language = missing
	}
	status := row.DisplayStatus()

	for _, cell := range []string{
		row.Name,
		row.Code,
		nf.integer(row.Population),
		nf.number(row.Area),
		nf.fixed(row.CurrencyRate, 2),
		language,
		nf.currency(row.GdpPerCapita),
		nf.compactCurrency(row.GdpTotal),
		nf.fixed(row.Gini, 1),
		nf.percent(row.InternetUsers),
		nf.percent(row.UrbanPopulation),
		status,
	} {
		h.raw(`<td>`)
		h.text(cell)
		h.raw(`</td>`)
	}
	h.raw(`</tr>`)
}

// Dashboard is the main page body: heading, tabs and the active view.
func Dashboard(active Page, state TableState) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.render(ctx, Header("World Info Dashboard"))
		h.render(ctx, Tabs(active))
		if active == PageChart {
			h.render(ctx, ChartView())
			return
		}
		h.render(ctx, CountriesTable(state))
	})
}
