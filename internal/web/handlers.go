package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/WorldInfo/internal/core"
	"github.com/JonMunkholm/WorldInfo/internal/logging"
	"github.com/JonMunkholm/WorldInfo/internal/web/templates"
)

// countriesDataCacheControl lets browsers and CDNs reuse the row list for
// an hour.
const countriesDataCacheControl = "public, max-age=3600"

// handleIndex renders the dashboard. ?tab=chart shows the chart, anything
// else the server-sorted table.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	active := templates.PageTable
	if r.URL.Query().Get("tab") == string(templates.PageChart) {
		active = templates.PageChart
	}

	var state templates.TableState
	if active == templates.PageTable {
		var err error
		if state, err = s.tableState(r); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	render(w, r, templates.Layout("World Info", active, templates.Dashboard(active, state)))
}

// handleCountriesTable renders the table fragment htmx swaps on re-sort.
func (s *Server) handleCountriesTable(w http.ResponseWriter, r *http.Request) {
	state, err := s.tableState(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render(w, r, templates.CountriesTable(state))
}

func (s *Server) tableState(r *http.Request) (templates.TableState, error) {
	key, order := parseSort(r)
	rows, err := s.service.SortedRows(r.Context(), key, order)
	if err != nil {
		return templates.TableState{}, err
	}
	return templates.TableState{Rows: rows, SortKey: key, Order: order}, nil
}

// handleCountriesData returns every row in default order.
func (s *Server) handleCountriesData(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.Rows(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", countriesDataCacheControl)
	if version := s.service.DatasetInfo().Version; version != "" {
		w.Header().Set("X-Dataset-Version", version)
	}
	writeJSON(w, rows)
}

// handleChartData returns the selected rows, or the top rows by GDP per
// capita when nothing is selected.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	selected := parseSelected(r)

	rows, err := s.service.ChartRows(r.Context(), selected)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("chart data", "selected", len(selected), "rows", len(rows))
	writeJSON(w, rows)
}

// handleExchangeRates maps each country code to its rate, or null.
func (s *Server) handleExchangeRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.service.CurrencyRates(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, rates)
}

// handleExportCSV downloads the table as CSV in the requested order.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	key, order := parseSort(r)
	rows, err := s.service.SortedRows(r.Context(), key, order)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("countries_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if _, err := io.WriteString(w, core.GenerateCSV(rows)); err != nil {
		logging.FromContext(r.Context()).Warn("csv export write failed", "error", err)
	}
}

// handleHealth reports the held dataset. It answers 503 until a dataset
// has loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := s.service.DatasetInfo()
	if !info.Loaded {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, info)
}
