package web

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/WorldInfo/internal/core"
	"github.com/JonMunkholm/WorldInfo/internal/logging"
)

// parseSort reads the sort and order query parameters. An empty key keeps
// the default row order; an unknown key falls back to core.DefaultSortKey
// so the table header marks the column actually used.
func parseSort(r *http.Request) (string, core.SortOrder) {
	q := r.URL.Query()
	key := strings.TrimSpace(q.Get("sort"))
	order := core.ParseSortOrder(q.Get("order"))

	switch {
	case key == "", key == core.SortNone:
		return "", order
	case !core.IsSortKey(key):
		return core.DefaultSortKey, order
	}
	return key, order
}

// parseSelected splits the comma-separated selected parameter into
// upper-cased country codes, dropping blanks.
func parseSelected(r *http.Request) []string {
	raw := r.URL.Query().Get("selected")
	if raw == "" {
		return nil
	}
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// render writes an HTML component. Render errors are logged since the
// status line may already be sent.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}
