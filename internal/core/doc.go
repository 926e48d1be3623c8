// Package core provides the country data pipeline behind the dashboard.
//
// This package contains all domain logic independent of any transport layer.
// It can be used by web handlers, the offline fetch command, or tests without
// modification.
//
// # Architecture
//
// Data flows through four stages:
//
//   - Normalizers: [ParseCountries], [ParseGdpData], [ParseIndicators] and the
//     static lookup parsers turn loosely typed upstream JSON into code-keyed
//     records. They never fail; malformed entries are skipped.
//   - Row building: [RowBuilder.BuildRows] joins the normalized sources, the
//     territory and official-language tables and live exchange rates into one
//     [CountryRow] per country, in default order (GDP per capita descending,
//     missing GDP last, ties by name).
//   - Sorting: [SortRows] dispatches through a comparator registry keyed by
//     field name. Unknown keys fall back to the gdpPerCapita comparator.
//   - Export: [GenerateCSV] serializes rows into a fixed 12-column CSV.
//
// [Service] wires the stages together. It reads the five static documents
// concurrently, holds the parsed [Dataset], and combines it with exchange
// rates from a [RateSource] on every request.
//
// # Country Codes
//
// Every source is joined on the ISO 3166-1 alpha-3 code. Codes must match
// ^[A-Z]{3}$; anything else is dropped by the normalizers.
//
// # Null Handling
//
// Sorting intentionally treats numeric fields differently:
//
//   - population, area: missing values count as 0
//   - currencyRate: 0 or missing always sorts last, in either direction
//   - gdpPerCapita, gdpTotal, gini, internetUsers, urbanPopulation: missing
//     values always sort last, in either direction
//
// # Error Handling
//
// Only document reads can fail a request. Those errors are mapped to
// user-facing messages with [MapError]; see error_messages.go for codes.
package core
