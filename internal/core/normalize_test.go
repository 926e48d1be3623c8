package core

import (
	"testing"
)

func TestParseCountries(t *testing.T) {
	raw := []byte(`[
		{"cca3": "FRA", "name": {"common": "France"}},
		{"cca3": "ATA", "name": {"common": "Antarctica"}},
		{"cca3": "IOT", "name": {"common": "British Indian Ocean Territory"}},
		{"cca3": "can", "name": {"common": "lowercase"}},
		{"cca3": "XX", "name": {"common": "Too short"}},
		{"cca3": "NON", "name": {"common": "   "}},
		{"cca3": "NUL"},
		{"cca3": 42, "name": {"common": "Wrong type"}},
		"not an object",
		{"cca3": "CAN", "name": {"common": "Canada"}},
		{"cca3": "ALA", "name": {"common": "Åland Islands"}}
	]`)

	got := ParseCountries(raw)

	want := []CountryEntry{
		{Code: "ALA", Name: "Åland Islands"},
		{Code: "CAN", Name: "Canada"},
		{Code: "FRA", Name: "France"},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseCountries returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseCountries_NotAnArray(t *testing.T) {
	for _, raw := range []string{`{}`, `null`, `garbage`, ``} {
		if got := ParseCountries([]byte(raw)); len(got) != 0 {
			t.Errorf("ParseCountries(%q) = %v, want empty", raw, got)
		}
	}
}

func TestParseGdpData(t *testing.T) {
	raw := []byte(`[
		{"page": 1},
		[
			{"countryiso3code": "can", "value": 50000, "date": "2023"},
			{"countryiso3code": "CAN", "value": 48000, "date": "2022"},
			{"countryiso3code": "FRA", "value": null, "date": "2023"},
			{"countryiso3code": "FRA", "value": 42000, "date": "2022"},
			{"countryiso3code": "", "value": 1, "date": "2023"},
			{"countryiso3code": "EUU", "value": 39000, "date": "2023"},
			{"value": 7, "date": "2023"},
			{"countryiso3code": "DEU", "value": "bad", "date": "2023"}
		]
	]`)

	t.Run("first non-null observation wins", func(t *testing.T) {
		got := ParseGdpData(raw, nil)

		if got["CAN"] != (GdpEntry{Value: 50000, Year: "2023"}) {
			t.Errorf("CAN = %+v, want first observation", got["CAN"])
		}
		if got["FRA"] != (GdpEntry{Value: 42000, Year: "2022"}) {
			t.Errorf("FRA = %+v, want first non-null observation", got["FRA"])
		}
		if _, ok := got["EUU"]; !ok {
			t.Error("aggregate code should be kept without an allow list")
		}
		if len(got) != 3 {
			t.Errorf("expected 3 entries, got %d: %v", len(got), got)
		}
	})

	t.Run("allow list filters codes", func(t *testing.T) {
		allowed := NewCodeSet([]CountryEntry{{Code: "CAN"}, {Code: "FRA"}})
		got := ParseGdpData(raw, allowed)

		if _, ok := got["EUU"]; ok {
			t.Error("EUU should be filtered out")
		}
		if len(got) != 2 {
			t.Errorf("expected 2 entries, got %d", len(got))
		}
	})
}

func TestParseGdpData_MalformedDocument(t *testing.T) {
	tests := []string{
		``,
		`null`,
		`{}`,
		`[{"page": 1}]`,
		`[{"page": 1}, null]`,
		`[{"page": 1}, {"not": "array"}]`,
	}
	for _, raw := range tests {
		got := ParseGdpData([]byte(raw), nil)
		if got == nil || len(got) != 0 {
			t.Errorf("ParseGdpData(%q) = %v, want empty map", raw, got)
		}
	}
}

func TestMergeIndicators(t *testing.T) {
	series := map[IndicatorKind]map[string]GdpEntry{
		IndicatorGdpTotal:        {"CAN": {Value: 2.1e12, Year: "2023"}},
		IndicatorGini:            {"CAN": {Value: 31.7, Year: "2019"}, "FRA": {Value: 31.5, Year: "2020"}},
		IndicatorInternetUsers:   {"FRA": {Value: 85, Year: "2022"}},
		IndicatorUrbanPopulation: {},
		IndicatorKind("unknown"): {"DEU": {Value: 1}},
	}

	got := MergeIndicators(series)

	can := got["CAN"]
	if can.GdpTotal == nil || *can.GdpTotal != 2.1e12 || can.Gini == nil || *can.Gini != 31.7 {
		t.Errorf("CAN = %+v", can)
	}
	if can.InternetUsers != nil || can.UrbanPopulation != nil {
		t.Errorf("CAN should only have gdpTotal and gini, got %+v", can)
	}

	fra := got["FRA"]
	if fra.Gini == nil || *fra.Gini != 31.5 || fra.InternetUsers == nil || *fra.InternetUsers != 85 {
		t.Errorf("FRA = %+v", fra)
	}

	if _, ok := got["DEU"]; ok {
		t.Error("unknown indicator kind should be ignored")
	}
}

func TestParseIndicators(t *testing.T) {
	raw := []byte(`{
		"CAN": {"gdpTotal": 2100000000000, "gini": 31.7},
		"FRA": {"internetUsers": 85, "urbanPopulation": 81.2},
		"BAD": "nope"
	}`)

	got := ParseIndicators(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got["FRA"].UrbanPopulation == nil || *got["FRA"].UrbanPopulation != 81.2 {
		t.Errorf("FRA = %+v", got["FRA"])
	}
}

func TestParseTerritories(t *testing.T) {
	raw := []byte(`{"GUM": "United States", "GRL": "Denmark", "BAD": 5, "EMP": ""}`)

	got := ParseTerritories(raw)
	if len(got) != 2 || got["GUM"] != "United States" || got["GRL"] != "Denmark" {
		t.Errorf("ParseTerritories = %v", got)
	}
}

func TestParseOfficialLanguages(t *testing.T) {
	raw := []byte(`{
		"CHE": {"officialLanguage": "German"},
		"NOL": {"officialLanguage": ""},
		"BAD": {"officialLanguage": 3},
		"MIS": {}
	}`)

	got := ParseOfficialLanguages(raw)
	if len(got) != 1 || got["CHE"] != "German" {
		t.Errorf("ParseOfficialLanguages = %v", got)
	}
}
