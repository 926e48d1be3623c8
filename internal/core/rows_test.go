package core

import (
	"testing"
)

const rowsMetadata = `[
	{
		"cca3": "CAN",
		"name": {"common": "Canada"},
		"languages": {"eng": "English", "fra": "French"},
		"currencies": {"CAD": {"name": "Canadian dollar", "symbol": "$"}},
		"area": 9984670,
		"population": 38005238,
		"gini": {"2013": 33.3, "2017": 33.8, "latest": 99},
		"flags": {"svg": "https://flagcdn.com/ca.svg"},
		"independent": true,
		"unMember": true
	},
	{
		"cca3": "GRL",
		"name": {"common": "Greenland"},
		"currencies": {"DKK": {"name": "krone", "symbol": "kr."}, "EUR": {"name": "Euro", "symbol": "€"}},
		"independent": false,
		"unMember": false
	},
	{
		"cca3": "ABW",
		"name": {"common": "Aruba"},
		"currencies": {"AWG": {"name": "Aruban florin", "symbol": "ƒ"}},
		"independent": false
	},
	{
		"cca3": "CHE",
		"name": {"common": "Switzerland"},
		"gini": {"2018": 33.1},
		"independent": true
	}
]`

func rowsByCode(rows []CountryRow) map[string]CountryRow {
	out := make(map[string]CountryRow, len(rows))
	for _, r := range rows {
		out[r.Code] = r
	}
	return out
}

func TestBuildRows_EndToEnd(t *testing.T) {
	countries := []CountryEntry{
		{Code: "CA", Name: "Canada"},
		{Code: "FR", Name: "France"},
	}
	gdp := map[string]GdpEntry{"CA": {Value: 50000, Year: "2023"}}

	rows := RowBuilder{}.BuildRows(countries, gdp, nil, nil)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Code != "CA" || rows[1].Code != "FR" {
		t.Errorf("order = %s, %s; want CA, FR", rows[0].Code, rows[1].Code)
	}
	if rows[1].GdpPerCapita != nil || rows[1].Year != nil {
		t.Error("France should have null GDP and year")
	}
	if *rows[0].GdpPerCapita != 50000 || *rows[0].Year != "2023" {
		t.Errorf("Canada GDP = %v/%v", *rows[0].GdpPerCapita, *rows[0].Year)
	}
}

func TestBuildRows_Metadata(t *testing.T) {
	countries := ParseCountries([]byte(rowsMetadata))
	b := RowBuilder{
		Territories:       map[string]string{"GRL": "Denmark", "CAN": "Nowhere"},
		OfficialLanguages: map[string]string{"CHE": "German"},
	}
	rates := map[string]float64{"CAD": 1.35, "DKK": 0, "EUR": 0.92}

	rows := rowsByCode(b.BuildRows(countries, nil, []byte(rowsMetadata), rates))

	can := rows["CAN"]
	if can.Languages.Len() != 2 || can.Languages.Keys()[0] != "eng" {
		t.Errorf("CAN languages = %v", can.Languages.Keys())
	}
	if can.Area == nil || *can.Area != 9984670 {
		t.Errorf("CAN area = %v", can.Area)
	}
	if can.Population == nil || *can.Population != 38005238 {
		t.Errorf("CAN population = %v", can.Population)
	}
	if can.FlagSvg != "https://flagcdn.com/ca.svg" {
		t.Errorf("CAN flag = %q", can.FlagSvg)
	}
	if can.CurrencyRate == nil || *can.CurrencyRate != 1.35 {
		t.Errorf("CAN currency rate = %v", can.CurrencyRate)
	}
	if can.Gini == nil || *can.Gini != 33.8 {
		t.Errorf("CAN gini = %v, want latest year 33.8", can.Gini)
	}

	t.Run("independent never gets a parent", func(t *testing.T) {
		if can.ParentCountry != "" {
			t.Errorf("CAN parent = %q", can.ParentCountry)
		}
	})

	t.Run("dependent territory gets mapped parent", func(t *testing.T) {
		if rows["GRL"].ParentCountry != "Denmark" {
			t.Errorf("GRL parent = %q", rows["GRL"].ParentCountry)
		}
		if rows["ABW"].ParentCountry != "" {
			t.Errorf("ABW parent = %q, want empty for unmapped territory", rows["ABW"].ParentCountry)
		}
	})

	t.Run("first currency is priced and zero counts as missing", func(t *testing.T) {
		if rows["GRL"].CurrencyRate != nil {
			t.Errorf("GRL rate = %v, want nil for zero DKK rate", *rows["GRL"].CurrencyRate)
		}
		if rows["ABW"].CurrencyRate != nil {
			t.Error("ABW rate should be nil when AWG is not quoted")
		}
	})

	t.Run("official language lookup", func(t *testing.T) {
		if rows["CHE"].OfficialLanguage != "German" {
			t.Errorf("CHE official language = %q", rows["CHE"].OfficialLanguage)
		}
	})
}

func TestBuildRows_GiniPrecedence(t *testing.T) {
	countries := ParseCountries([]byte(rowsMetadata))
	b := RowBuilder{
		Indicators: map[string]IndicatorEntry{
			"CAN": {Gini: ptr(31.7), GdpTotal: ptr(2.1e12)},
			"CHE": {InternetUsers: ptr(96.0)},
		},
	}

	rows := rowsByCode(b.BuildRows(countries, nil, []byte(rowsMetadata), nil))

	if *rows["CAN"].Gini != 31.7 {
		t.Errorf("CAN gini = %v, want indicator value", *rows["CAN"].Gini)
	}
	if *rows["CAN"].GdpTotal != 2.1e12 {
		t.Errorf("CAN gdpTotal = %v", *rows["CAN"].GdpTotal)
	}
	if *rows["CHE"].Gini != 33.1 {
		t.Errorf("CHE gini = %v, want history fallback", *rows["CHE"].Gini)
	}
	if *rows["CHE"].InternetUsers != 96 {
		t.Errorf("CHE internet users = %v", *rows["CHE"].InternetUsers)
	}
}

func TestBuildRows_NilRatesLeaveRateUnset(t *testing.T) {
	countries := ParseCountries([]byte(rowsMetadata))

	for _, row := range (RowBuilder{}).BuildRows(countries, nil, []byte(rowsMetadata), nil) {
		if row.CurrencyRate != nil {
			t.Errorf("%s currency rate = %v, want nil", row.Code, *row.CurrencyRate)
		}
	}
}

func TestBuildRows_UnparsableMetadata(t *testing.T) {
	countries := []CountryEntry{{Code: "CAN", Name: "Canada"}}
	gdp := map[string]GdpEntry{"CAN": {Value: 50000, Year: "2023"}}

	for _, raw := range []string{"not json", `{"cca3": "CAN"}`, ""} {
		rows := RowBuilder{}.BuildRows(countries, gdp, []byte(raw), map[string]float64{"CAD": 1.35})
		if len(rows) != 1 {
			t.Fatalf("metadata %q: expected 1 row, got %d", raw, len(rows))
		}
		row := rows[0]
		if row.Languages != nil || row.CurrencyRate != nil || row.Area != nil || row.Independent != nil {
			t.Errorf("metadata %q: metadata fields should be unset: %+v", raw, row)
		}
		if row.GdpPerCapita == nil {
			t.Errorf("metadata %q: GDP should still be joined", raw)
		}
	}
}

func TestBuildRows_DefaultOrderTiesByName(t *testing.T) {
	countries := []CountryEntry{
		{Code: "ZZZ", Name: "Zed"},
		{Code: "BBB", Name: "Bee"},
		{Code: "NNN", Name: "Nil"},
		{Code: "AAA", Name: "Ay"},
		{Code: "MMM", Name: "Em"},
	}
	gdp := map[string]GdpEntry{
		"ZZZ": {Value: 100},
		"BBB": {Value: 100},
		"MMM": {Value: 500},
	}

	rows := RowBuilder{}.BuildRows(countries, gdp, nil, nil)

	want := []string{"MMM", "BBB", "ZZZ", "AAA", "NNN"}
	for i, code := range want {
		if rows[i].Code != code {
			t.Errorf("rows[%d] = %s, want %s", i, rows[i].Code, code)
		}
	}
}

func TestLatestGini(t *testing.T) {
	if latestGini(nil) != nil {
		t.Error("nil history should give nil")
	}
	if latestGini(map[string]float64{"x": 1}) != nil {
		t.Error("non-integer keys should be ignored")
	}
	got := latestGini(map[string]float64{"2009": 1, "2019": 3, "2014": 2})
	if got == nil || *got != 3 {
		t.Errorf("latestGini = %v, want 3", got)
	}
}
