package ledgerdb

import (
	"fmt"
	"strings"
)

// DefaultTextSearchLanguage is used when TextSearchOptions.Language is empty.
const DefaultTextSearchLanguage = "english"

// TextSearchOptions tune a TextSearch call.
type TextSearchOptions struct {
	// Language selects the stemming rules. "none" disables stemming.
	Language           string
	CaseSensitive      bool
	DiacriticSensitive bool
	// TextScore attaches the relevance score to every row.
	TextScore bool
	// Limit caps the number of rows, 0 means unlimited.
	Limit uint64
	// Collection defaults to assets.
	Collection Collection
}

// textSearchConfigs maps the accepted languages to the PostgreSQL text
// search configuration of the same stemmer.
var textSearchConfigs = map[string]string{
	"none":       "simple",
	"danish":     "danish",
	"dutch":      "dutch",
	"english":    "english",
	"finnish":    "finnish",
	"french":     "french",
	"german":     "german",
	"hungarian":  "hungarian",
	"italian":    "italian",
	"norwegian":  "norwegian",
	"portuguese": "portuguese",
	"romanian":   "romanian",
	"russian":    "russian",
	"spanish":    "spanish",
	"swedish":    "swedish",
	"turkish":    "turkish",
}

// TextSearchConfig returns the stemmer configuration for a language.
func TextSearchConfig(language string) (string, bool) {
	cfg, ok := textSearchConfigs[strings.ToLower(language)]
	return cfg, ok
}

// Normalize fills in defaults and validates the options.
func (o TextSearchOptions) Normalize() (TextSearchOptions, error) {
	if o.Language == "" {
		o.Language = DefaultTextSearchLanguage
	}
	o.Language = strings.ToLower(o.Language)
	if _, ok := textSearchConfigs[o.Language]; !ok {
		return o, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, o.Language)
	}
	if o.Collection == "" {
		o.Collection = CollectionAssets
	}
	if !o.Collection.Searchable() {
		return o, fmt.Errorf("%w: %s", ErrNotSearchable, o.Collection)
	}
	return o, nil
}
