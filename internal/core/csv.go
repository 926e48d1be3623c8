package core

// csv.go serializes country rows for download.
//
// Output format:
//   - Fixed 12-column header, always present
//   - One line per row, joined by "\n" with no trailing newline
//   - Missing values are empty fields
//   - Fields containing a comma, double quote or newline are quoted, with
//     embedded quotes doubled

import (
	"strconv"
	"strings"
)

// CSVHeader is the fixed export header.
var CSVHeader = []string{
	"Country",
	"Code",
	"Population",
	"Area (km²)",
	"Currency Rate (USD)",
	"Official Language",
	"GDP per Capita",
	"GDP Total",
	"Gini",
	"Internet Users %",
	"Urban Pop %",
	"Status",
}

// GenerateCSV renders rows as CSV text.
func GenerateCSV(rows []CountryRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))

	for i := range rows {
		row := &rows[i]
		fields := []string{
			escapeCSV(row.Name),
			escapeCSV(row.Code),
			escapeCSV(formatInt(row.Population)),
			escapeCSV(formatFloat(row.Area)),
			escapeCSV(formatFloat(row.CurrencyRate)),
			escapeCSV(exportLanguage(row)),
			escapeCSV(formatFloat(row.GdpPerCapita)),
			escapeCSV(formatFloat(row.GdpTotal)),
			escapeCSV(formatFloat(row.Gini)),
			escapeCSV(formatFloat(row.InternetUsers)),
			escapeCSV(formatFloat(row.UrbanPopulation)),
			escapeCSV(exportStatus(row)),
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	return strings.Join(lines, "\n")
}

// escapeCSV quotes a field if it contains a comma, quote or newline.
func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// formatFloat renders a number in shortest form ("500", "1.5"); nil is empty.
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// exportLanguage is the language column: the first two listed languages,
// else the official-language fallback.
func exportLanguage(r *CountryRow) string {
	if r.Languages.Len() > 0 {
		return firstLanguages(r.Languages)
	}
	return r.OfficialLanguage
}

// exportStatus is the status column: the parent state for territories,
// otherwise Independent or Dependent. A missing flag counts as Dependent.
func exportStatus(r *CountryRow) string {
	if r.ParentCountry != "" {
		return r.ParentCountry
	}
	if r.Independent != nil && *r.Independent {
		return "Independent"
	}
	return "Dependent"
}

// DisplayLanguage is the language text shown for a row in the table and export.
func (r *CountryRow) DisplayLanguage() string {
	return exportLanguage(r)
}

// DisplayStatus is the status text shown for a row in the table and export.
func (r *CountryRow) DisplayStatus() string {
	return exportStatus(r)
}
