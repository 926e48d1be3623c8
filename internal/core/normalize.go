package core

// normalize.go turns raw upstream documents into code-keyed records.
//
// Every function here is total: a document that cannot be decoded yields an
// empty result, and a single malformed entry is skipped without affecting
// its neighbours. Entries are decoded one at a time from json.RawMessage so a
// wrong type in one record cannot reject the whole array.
//
// Input schemas use pointer fields throughout; presence is checked explicitly
// before anything crosses into the strict record types.

import (
	"encoding/json"
	"slices"
	"strings"
)

// excludedCodes are non-sovereign codes dropped from the country list.
var excludedCodes = map[string]bool{
	"ATA": true, // Antarctica
	"IOT": true, // British Indian Ocean Territory
}

// CodeSet is a set of country codes. A nil set means "no restriction".
type CodeSet map[string]struct{}

// NewCodeSet builds a set from the codes of the given entries.
func NewCodeSet(countries []CountryEntry) CodeSet {
	set := make(CodeSet, len(countries))
	for _, c := range countries {
		set[c.Code] = struct{}{}
	}
	return set
}

// Has reports whether code is in the set.
func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// rawCountryName is the name block of a countries-metadata entry.
type rawCountryName struct {
	Common *string `json:"common"`
}

// rawFlags is the flag block of a countries-metadata entry.
type rawFlags struct {
	Svg *string `json:"svg"`
}

// rawCountry is the permissive schema of one countries-metadata entry.
type rawCountry struct {
	Cca3        *string               `json:"cca3"`
	Name        *rawCountryName       `json:"name"`
	Languages   *OrderedMap[string]   `json:"languages"`
	Currencies  *OrderedMap[Currency] `json:"currencies"`
	Area        *float64              `json:"area"`
	Population  *float64              `json:"population"`
	Gini        map[string]float64    `json:"gini"`
	Flags       *rawFlags             `json:"flags"`
	Independent *bool                 `json:"independent"`
	UnMember    *bool                 `json:"unMember"`
}

// rawObservation is the permissive schema of one World Bank observation.
type rawObservation struct {
	CountryISO3 *string  `json:"countryiso3code"`
	Value       *float64 `json:"value"`
	Date        *string  `json:"date"`
}

// decodeArray splits a JSON array into raw elements.
// Returns nil if raw is not an array.
func decodeArray(raw []byte) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// decodeObject splits a JSON object into raw members.
// Returns nil if raw is not an object.
func decodeObject(raw []byte) map[string]json.RawMessage {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil
	}
	return members
}

// decodeCountries decodes the countries-metadata document entry by entry.
func decodeCountries(raw []byte) []rawCountry {
	items := decodeArray(raw)
	out := make([]rawCountry, 0, len(items))
	for _, item := range items {
		var c rawCountry
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ParseCountries extracts the country list from the countries-metadata document.
//
// An entry is kept only when it has a valid alpha-3 code and a non-empty
// common name, and its code is not excluded. The result is sorted by name
// in locale order.
func ParseCountries(raw []byte) []CountryEntry {
	var entries []CountryEntry

	for _, c := range decodeCountries(raw) {
		if c.Cca3 == nil || !IsCountryCode(*c.Cca3) {
			continue
		}
		if c.Name == nil || c.Name.Common == nil || strings.TrimSpace(*c.Name.Common) == "" {
			continue
		}
		if excludedCodes[*c.Cca3] {
			continue
		}
		entries = append(entries, CountryEntry{Code: *c.Cca3, Name: *c.Name.Common})
	}

	coll := newCollator()
	slices.SortStableFunc(entries, func(a, b CountryEntry) int {
		return coll.CompareString(a.Name, b.Name)
	})
	return entries
}

// ParseGdpData extracts the most recent value per code from a World Bank
// series document shaped as [metadata, observations].
//
// Observations are assumed most-recent-first, so the first non-null value
// seen for a code wins. If allowed is non-nil, codes outside it are dropped.
func ParseGdpData(raw []byte, allowed CodeSet) map[string]GdpEntry {
	out := make(map[string]GdpEntry)

	doc := decodeArray(raw)
	if len(doc) < 2 {
		return out
	}

	for _, item := range decodeArray(doc[1]) {
		var obs rawObservation
		if err := json.Unmarshal(item, &obs); err != nil {
			continue
		}
		if obs.CountryISO3 == nil {
			continue
		}

		code := strings.ToUpper(*obs.CountryISO3)
		if !IsCountryCode(code) {
			continue
		}
		if obs.Value == nil {
			continue
		}
		if allowed != nil && !allowed.Has(code) {
			continue
		}
		if _, seen := out[code]; seen {
			continue
		}

		year := ""
		if obs.Date != nil {
			year = *obs.Date
		}
		out[code] = GdpEntry{Value: *obs.Value, Year: year}
	}

	return out
}

// IndicatorKind names one auxiliary World Bank series.
type IndicatorKind string

const (
	IndicatorGdpTotal        IndicatorKind = "gdpTotal"
	IndicatorGini            IndicatorKind = "gini"
	IndicatorInternetUsers   IndicatorKind = "internetUsers"
	IndicatorUrbanPopulation IndicatorKind = "urbanPopulation"
)

// IndicatorKinds lists every auxiliary series in a fixed order.
var IndicatorKinds = []IndicatorKind{
	IndicatorGdpTotal,
	IndicatorGini,
	IndicatorInternetUsers,
	IndicatorUrbanPopulation,
}

// ParseIndicatorSeries extracts one auxiliary series. It shares the GDP
// parser, so the same first-non-null-wins rule applies per code.
func ParseIndicatorSeries(raw []byte) map[string]GdpEntry {
	return ParseGdpData(raw, nil)
}

// MergeIndicators folds independently parsed series into one entry per code.
// Unknown kinds are ignored.
func MergeIndicators(series map[IndicatorKind]map[string]GdpEntry) map[string]IndicatorEntry {
	out := make(map[string]IndicatorEntry)

	for kind, values := range series {
		for code, entry := range values {
			ind := out[code]
			v := entry.Value
			switch kind {
			case IndicatorGdpTotal:
				ind.GdpTotal = &v
			case IndicatorGini:
				ind.Gini = &v
			case IndicatorInternetUsers:
				ind.InternetUsers = &v
			case IndicatorUrbanPopulation:
				ind.UrbanPopulation = &v
			default:
				continue
			}
			out[code] = ind
		}
	}

	return out
}

// ParseIndicators reads the merged indicators document keyed by country code.
func ParseIndicators(raw []byte) map[string]IndicatorEntry {
	out := make(map[string]IndicatorEntry)
	for code, member := range decodeObject(raw) {
		var entry IndicatorEntry
		if err := json.Unmarshal(member, &entry); err != nil {
			continue
		}
		out[code] = entry
	}
	return out
}

// ParseTerritories reads the territory mapping document (code -> parent name).
func ParseTerritories(raw []byte) map[string]string {
	out := make(map[string]string)
	for code, member := range decodeObject(raw) {
		var parent string
		if err := json.Unmarshal(member, &parent); err != nil || parent == "" {
			continue
		}
		out[code] = parent
	}
	return out
}

// officialLanguageEntry is one member of the official-language document.
type officialLanguageEntry struct {
	OfficialLanguage *string `json:"officialLanguage"`
}

// ParseOfficialLanguages reads the official-language document
// (code -> {"officialLanguage": name}).
func ParseOfficialLanguages(raw []byte) map[string]string {
	out := make(map[string]string)
	for code, member := range decodeObject(raw) {
		var entry officialLanguageEntry
		if err := json.Unmarshal(member, &entry); err != nil {
			continue
		}
		if entry.OfficialLanguage == nil || *entry.OfficialLanguage == "" {
			continue
		}
		out[code] = *entry.OfficialLanguage
	}
	return out
}
