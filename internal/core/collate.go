package core

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// displayLocale is the locale used for every name and label comparison.
var displayLocale = language.English

// newCollator returns a collator for locale-aware string ordering.
// Collators keep internal buffers and must not be shared across goroutines,
// so callers create one per sort.
func newCollator() *collate.Collator {
	return collate.New(displayLocale)
}
