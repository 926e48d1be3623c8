// Package templates holds the dashboard's HTML components.
//
// Components are templ.Component values, so handlers render them with
// Render(ctx, w) and compose them into the page layout.
package templates

import (
	"context"
	"io"
	"math"
	"strconv"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// htmlWriter accumulates the first write error so component bodies can be
// written without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s HTML-escaped. Safe in element bodies and quoted attributes.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// component adapts a body-writing function into a templ.Component.
func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

const missing = "n/a"

// numberFormat renders cell values with en-US digit grouping.
type numberFormat struct {
	p *message.Printer
}

func newNumberFormat() numberFormat {
	return numberFormat{p: message.NewPrinter(language.AmericanEnglish)}
}

func (f numberFormat) integer(v *int64) string {
	if v == nil {
		return missing
	}
	return f.p.Sprintf("%d", *v)
}

func (f numberFormat) number(v *float64) string {
	if v == nil {
		return missing
	}
	return f.p.Sprintf("%.0f", *v)
}

// currency is whole US dollars, e.g. "$65,000".
func (f numberFormat) currency(v *float64) string {
	if v == nil {
		return missing
	}
	return "$" + f.p.Sprintf("%.0f", *v)
}

// compactCurrency abbreviates large dollar amounts to one decimal,
// e.g. "$21.4T".
func (f numberFormat) compactCurrency(v *float64) string {
	if v == nil {
		return missing
	}
	val := *v
	for _, unit := range []struct {
		size   float64
		suffix string
	}{{1e12, "T"}, {1e9, "B"}, {1e6, "M"}, {1e3, "K"}} {
		if math.Abs(val) >= unit.size {
			return "$" + oneDecimal(val/unit.size) + unit.suffix
		}
	}
	return "$" + oneDecimal(val)
}

func (f numberFormat) percent(v *float64) string {
	if v == nil {
		return missing
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + "%"
}

func (f numberFormat) fixed(v *float64, digits int) string {
	if v == nil {
		return missing
	}
	return strconv.FormatFloat(*v, 'f', digits, 64)
}

// oneDecimal rounds to one decimal and drops a trailing ".0".
func oneDecimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
