package core

import (
	"cmp"
	"slices"
	"strconv"

	"golang.org/x/text/collate"
)

// RowBuilder joins normalized sources into country rows.
//
// The lookup tables are read-only once built, so a single RowBuilder can
// serve any number of concurrent requests.
type RowBuilder struct {
	// Indicators holds the merged auxiliary series keyed by code.
	Indicators map[string]IndicatorEntry

	// Territories maps a non-independent territory to its parent state.
	Territories map[string]string

	// OfficialLanguages maps a code to a display language name.
	OfficialLanguages map[string]string
}

// BuildRows produces exactly one row per country, in default order.
//
// rawMetadata is the countries-metadata document; when nil or unparsable,
// metadata-derived fields stay unset. rates maps currency code to units per
// USD; when nil, currencyRate stays unset.
func (b RowBuilder) BuildRows(countries []CountryEntry, gdp map[string]GdpEntry, rawMetadata []byte, rates map[string]float64) []CountryRow {
	return b.buildRows(countries, gdp, indexMetadata(rawMetadata), rates)
}

// buildRows is BuildRows over an already indexed metadata document. The
// index is only read, so a Dataset can share one across requests.
func (b RowBuilder) buildRows(countries []CountryEntry, gdp map[string]GdpEntry, details metadataIndex, rates map[string]float64) []CountryRow {
	rows := make([]CountryRow, 0, len(countries))
	for _, country := range countries {
		row := CountryRow{
			Code: country.Code,
			Name: country.Name,
		}

		if entry, ok := gdp[country.Code]; ok {
			value, year := entry.Value, entry.Year
			row.GdpPerCapita = &value
			row.Year = &year
		}

		var historyGini *float64
		if d, ok := details[country.Code]; ok {
			row.Languages = d.Languages
			row.Currencies = d.Currencies
			row.Area = d.Area
			if d.Population != nil {
				p := int64(*d.Population)
				row.Population = &p
			}
			if d.Flags != nil && d.Flags.Svg != nil {
				row.FlagSvg = *d.Flags.Svg
			}
			row.Independent = d.Independent
			row.UnMember = d.UnMember

			historyGini = latestGini(d.Gini)
			row.CurrencyRate = firstCurrencyRate(d.Currencies, rates)

			if d.Independent != nil && !*d.Independent {
				row.ParentCountry = b.Territories[country.Code]
			}
		}

		if ind, ok := b.Indicators[country.Code]; ok {
			row.GdpTotal = ind.GdpTotal
			row.Gini = ind.Gini
			row.InternetUsers = ind.InternetUsers
			row.UrbanPopulation = ind.UrbanPopulation
		}
		if row.Gini == nil {
			row.Gini = historyGini
		}

		row.OfficialLanguage = b.OfficialLanguages[country.Code]

		rows = append(rows, row)
	}

	sortDefault(rows, newCollator())
	return rows
}

// metadataIndex is the countries-metadata document keyed by code.
type metadataIndex map[string]rawCountry

// indexMetadata keys metadata entries by code.
// Entries without a code are ignored; a later duplicate replaces an earlier one.
func indexMetadata(raw []byte) metadataIndex {
	if len(raw) == 0 {
		return nil
	}
	out := make(metadataIndex)
	for _, c := range decodeCountries(raw) {
		if c.Cca3 == nil || *c.Cca3 == "" {
			continue
		}
		out[*c.Cca3] = c
	}
	return out
}

// latestGini returns the value of the numerically largest year key.
// Keys that are not integers are ignored.
func latestGini(history map[string]float64) *float64 {
	bestYear := 0
	var best *float64
	for yearKey, value := range history {
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			continue
		}
		if best == nil || year > bestYear {
			v := value
			bestYear, best = year, &v
		}
	}
	return best
}

// firstCurrencyRate prices the first listed currency.
// A zero rate counts as missing.
func firstCurrencyRate(currencies *OrderedMap[Currency], rates map[string]float64) *float64 {
	if rates == nil || currencies.Len() == 0 {
		return nil
	}
	rate, ok := rates[currencies.Keys()[0]]
	if !ok || rate == 0 {
		return nil
	}
	return &rate
}

// sortDefault orders rows by GDP per capita descending, missing GDP last,
// ties by ascending name.
func sortDefault(rows []CountryRow, coll *collate.Collator) {
	slices.SortStableFunc(rows, func(a, b CountryRow) int {
		switch {
		case a.GdpPerCapita == nil && b.GdpPerCapita == nil:
			return coll.CompareString(a.Name, b.Name)
		case a.GdpPerCapita == nil:
			return 1
		case b.GdpPerCapita == nil:
			return -1
		}
		if c := cmp.Compare(*b.GdpPerCapita, *a.GdpPerCapita); c != 0 {
			return c
		}
		return coll.CompareString(a.Name, b.Name)
	})
}
