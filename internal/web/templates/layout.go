package templates

import (
	"context"

	"github.com/a-h/templ"
)

// Script bundles loaded by every page.
const (
	EChartsURL = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"
	HtmxURL    = "https://unpkg.com/htmx.org@1.9.12"
	AlpineURL  = "https://cdn.jsdelivr.net/npm/alpinejs@3.x.x/dist/cdn.min.js"
)

// Page identifies the active navigation entry.
type Page string

const (
	PageTable Page = "table"
	PageChart Page = "chart"
)

// Layout wraps body in the full HTML document with navigation and footer.
func Layout(title string, active Page, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(title)
		h.raw(`</title>`,
			`<link rel="stylesheet" href="/styles.css">`,
			`<script src="`, EChartsURL, `"></script>`,
			`<script src="`, HtmxURL, `"></script>`,
			`<script defer src="`, AlpineURL, `"></script>`,
			`</head>`,
			`<body x-data="{ light: localStorage.getItem('theme') === 'light' }" :class="light ? 'theme-light' : 'theme-dark'">`)
		h.render(ctx, Navbar(active))
		h.raw(`<main class="container">`)
		h.render(ctx, body)
		h.raw(`</main>`)
		h.render(ctx, Footer())
		h.raw(`</body></html>`)
	})
}

// Navbar links the table and chart pages and toggles the color theme.
func Navbar(active Page) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<nav class="navbar"><a class="brand" href="/">World Info</a><div class="nav-links">`)
		navLink(h, "/", "Table", active == PageTable)
		navLink(h, "/chart", "Chart", active == PageChart)
		h.raw(`<button type="button" class="theme-toggle" `,
			`@click="light = !light; localStorage.setItem('theme', light ? 'light' : 'dark')" `,
			`x-text="light ? 'Dark' : 'Light'">Theme</button>`,
			`</div></nav>`)
	})
}

func navLink(h *htmlWriter, href, label string, active bool) {
	h.raw(`<a href="`, href, `"`)
	if active {
		h.raw(` class="active" aria-current="page"`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</a>`)
}

// Header is the page heading.
func Header(title string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<header class="page-header"><h1>`)
		h.text(title)
		h.raw(`</h1></header>`)
	})
}

// dataSources are credited in the footer.
var dataSources = []struct{ name, url string }{
	{"Rest Countries", "https://restcountries.com"},
	{"World Bank", "https://data.worldbank.org"},
	{"Wikidata", "https://www.wikidata.org"},
	{"ExchangeRate-API", "https://www.exchangerate-api.com"},
}

// Footer credits the upstream data sources.
func Footer() templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<footer class="footer"><p>Data sources: `)
		for i, src := range dataSources {
			if i > 0 {
				h.raw(`, `)
			}
			h.raw(`<a href="`, src.url, `" target="_blank" rel="noopener">`)
			h.text(src.name)
			h.raw(`</a>`)
		}
		h.raw(`</p></footer>`)
	})
}

// Tabs switches the dashboard between the table and the GDP chart.
func Tabs(active Page) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="tabs" role="tablist">`)
		tab(h, "/?tab=table", "Data Table", active == PageTable)
		tab(h, "/?tab=chart", "GDP Chart", active == PageChart)
		h.raw(`</div>`)
	})
}

func tab(h *htmlWriter, href, label string, active bool) {
	h.raw(`<a role="tab" href="`, href, `" class="tab`)
	if active {
		h.raw(` active" aria-selected="true`)
	}
	h.raw(`">`)
	h.text(label)
	h.raw(`</a>`)
}

// ErrorAlert renders a user-facing error with its suggested action and code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<small class="error-code">`)
			h.text(code)
			h.raw(`</small>`)
		}
		h.raw(`</div>`)
	})
}
