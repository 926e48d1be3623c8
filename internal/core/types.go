// Package core provides the country data pipeline behind the dashboard.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// codePattern matches an ISO 3166-1 alpha-3 code.
var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// IsCountryCode reports whether s is a valid alpha-3 join key.
func IsCountryCode(s string) bool {
	return codePattern.MatchString(s)
}

// CountryEntry is the minimal identity record for a country.
type CountryEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// GdpEntry is the most recent non-null observation of a series for one code.
type GdpEntry struct {
	Value float64 `json:"value"`
	Year  string  `json:"year"`
}

// IndicatorEntry holds the optional auxiliary indicators for one code.
type IndicatorEntry struct {
	GdpTotal        *float64 `json:"gdpTotal,omitempty"`
	Gini            *float64 `json:"gini,omitempty"`
	InternetUsers   *float64 `json:"internetUsers,omitempty"`
	UrbanPopulation *float64 `json:"urbanPopulation,omitempty"`
}

// Currency is one entry of a country's currency map.
type Currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CountryRow is the joined, flat record served to the presentation layer.
//
// GdpPerCapita and Year are always serialized; null means the country has no
// GDP observation. All other optional fields are omitted when unset.
type CountryRow struct {
	Code             string                `json:"code"`
	Name             string                `json:"name"`
	GdpPerCapita     *float64              `json:"gdpPerCapita"`
	Year             *string               `json:"year"`
	Languages        *OrderedMap[string]   `json:"languages,omitempty"`
	Currencies       *OrderedMap[Currency] `json:"currencies,omitempty"`
	CurrencyRate     *float64              `json:"currencyRate,omitempty"`
	Area             *float64              `json:"area,omitempty"`
	Population       *int64                `json:"population,omitempty"`
	GdpTotal         *float64              `json:"gdpTotal,omitempty"`
	Gini             *float64              `json:"gini,omitempty"`
	InternetUsers    *float64              `json:"internetUsers,omitempty"`
	UrbanPopulation  *float64              `json:"urbanPopulation,omitempty"`
	FlagSvg          string                `json:"flagSvg,omitempty"`
	Independent      *bool                 `json:"independent,omitempty"`
	UnMember         *bool                 `json:"unMember,omitempty"`
	ParentCountry    string                `json:"parentCountry,omitempty"`
	OfficialLanguage string                `json:"officialLanguage,omitempty"`
}

// OrderedMap is a string-keyed JSON object that remembers key order.
//
// Upstream documents carry meaning in key order (the first listed currency
// is the one priced, the first two languages are displayed), which a Go map
// would lose. A repeated key keeps its first position and its last value.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty map.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set stores v under key, appending key if it is new.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys. A nil map has length 0.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns values in key order.
func (m *OrderedMap[V]) Values() []V {
	if m == nil {
		return nil
	}
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ordered map: expected object, got %v", tok)
	}

	m.keys = nil
	m.values = make(map[string]V)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered map: non-string key %v", keyTok)
		}

		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("ordered map: key %q: %w", key, err)
		}
		m.Set(key, v)
	}

	// Consume the closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the map as a JSON object in key order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
