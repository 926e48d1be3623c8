package core

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
)

// SortOrder is the direction requested by the caller.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortNone disables sorting; SortRows returns its input unchanged.
const SortNone = "none"

// DefaultSortKey is the comparator used for unknown keys.
const DefaultSortKey = "gdpPerCapita"

// ParseSortOrder maps a query value to a SortOrder. Anything other than
// "asc" is descending.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// compareFunc orders two rows in the given direction. str compares display
// strings in locale order.
type compareFunc func(a, b *CountryRow, order SortOrder, str func(x, y string) int) int

// comparators maps sort keys to their comparator. The entry under
// DefaultSortKey doubles as the fallback for unrecognized keys.
var comparators = map[string]compareFunc{
	"name": func(a, b *CountryRow, order SortOrder, str func(x, y string) int) int {
		return directed(str(a.Name, b.Name), order)
	},
	"code": func(a, b *CountryRow, order SortOrder, str func(x, y string) int) int {
		return directed(str(a.Code, b.Code), order)
	},
	"population": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareZeroFallback(intOrZero(a.Population), intOrZero(b.Population), order)
	},
	"area": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareZeroFallback(floatOrZero(a.Area), floatOrZero(b.Area), order)
	},
	"currencyRate": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareZeroLast(floatOrZero(a.CurrencyRate), floatOrZero(b.CurrencyRate), order)
	},
	"officialLanguage": func(a, b *CountryRow, order SortOrder, str func(x, y string) int) int {
		return directed(str(languageSortLabel(a), languageSortLabel(b)), order)
	},
	"status": func(a, b *CountryRow, order SortOrder, str func(x, y string) int) int {
		return directed(str(statusSortLabel(a), statusSortLabel(b)), order)
	},
	"gdpPerCapita": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareNullLast(a.GdpPerCapita, b.GdpPerCapita, order)
	},
	"gdpTotal": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareNullLast(a.GdpTotal, b.GdpTotal, order)
	},
	"gini": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareNullLast(a.Gini, b.Gini, order)
	},
	"internetUsers": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareNullLast(a.InternetUsers, b.InternetUsers, order)
	},
	"urbanPopulation": func(a, b *CountryRow, order SortOrder, _ func(x, y string) int) int {
		return compareNullLast(a.UrbanPopulation, b.UrbanPopulation, order)
	},
}

// comparatorFor returns the comparator registered under key, or the
// default comparator if key is unknown.
func comparatorFor(key string) compareFunc {
	if fn, ok := comparators[key]; ok {
		return fn
	}
	return comparators[DefaultSortKey]
}

// SortKeys returns every registered sort key.
// Sorted alphabetically for consistent ordering.
func SortKeys() []string {
	keys := make([]string, 0, len(comparators))
	for k := range comparators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSortKey reports whether key has its own comparator.
func IsSortKey(key string) bool {
	_, ok := comparators[key]
	return ok
}

// SortRows returns rows ordered by key in the given direction.
//
// The input is never mutated. When key is empty or SortNone, rows itself is
// returned without copying. Equal rows keep their relative order.
func SortRows(rows []CountryRow, key string, order SortOrder) []CountryRow {
	if key == "" || key == SortNone {
		return rows
	}

	sorted := slices.Clone(rows)
	sortInPlace(sorted, comparatorFor(key), order, newCollator())
	return sorted
}

// sortInPlace stable-sorts rows with fn.
func sortInPlace(rows []CountryRow, fn compareFunc, order SortOrder, coll *collate.Collator) {
	str := func(x, y string) int { return coll.CompareString(x, y) }
	slices.SortStableFunc(rows, func(a, b CountryRow) int {
		return fn(&a, &b, order, str)
	})
}

// directed applies order to an ascending comparison result.
func directed(c int, order SortOrder) int {
	if order == SortAsc {
		return c
	}
	return -c
}

// compareZeroFallback compares numbers where missing already became 0.
func compareZeroFallback(a, b float64, order SortOrder) int {
	return directed(cmp.Compare(a, b), order)
}

// compareZeroLast compares numbers where 0 always sorts last in either
// direction, and two zeros are equal.
func compareZeroLast(a, b float64, order SortOrder) int {
	switch {
	case a == 0 && b == 0:
		return 0
	case a == 0:
		return 1
	case b == 0:
		return -1
	}
	return directed(cmp.Compare(a, b), order)
}

// compareNullLast compares optional numbers where nil always sorts last in
// either direction, and two nils are equal.
func compareNullLast(a, b *float64, order SortOrder) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return directed(cmp.Compare(*a, *b), order)
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int64) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

// firstLanguages joins up to the first two language names.
func firstLanguages(langs *OrderedMap[string]) string {
	values := langs.Values()
	if len(values) > 2 {
		values = values[:2]
	}
	return strings.Join(values, ", ")
}

// languageSortLabel is the language string the table sorts on. A present
// (even empty) languages map wins over the official-language fallback.
func languageSortLabel(r *CountryRow) string {
	if r.Languages != nil {
		return firstLanguages(r.Languages)
	}
	return r.OfficialLanguage
}

// statusSortLabel is the status string the table sorts on.
func statusSortLabel(r *CountryRow) string {
	if r.ParentCountry != "" {
		return r.ParentCountry
	}
	if r.Independent != nil && *r.Independent {
		return "Independent"
	}
	return ""
}
