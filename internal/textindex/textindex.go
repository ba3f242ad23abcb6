// Package textindex extracts searchable text from documents and matches
// free-text queries against it. Both storage backends share it so that the
// embedded store ranks and filters the same way the SQL store does.
package textindex

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Variant selects which representation of the text a sensitive match runs
// against.
type Variant int

const (
	// VariantNone means no sensitive filter, only the folded match applies.
	VariantNone Variant = iota
	// VariantRaw matches the original text, case and diacritics kept.
	VariantRaw
	// VariantCased matches text with diacritics removed and case kept.
	VariantCased
	// VariantLower matches text case-insensitively with diacritics kept.
	VariantLower
)

// FoldDiacritics removes combining marks, e.g. "café" becomes "cafe".
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases and removes diacritics.
func Fold(s string) string {
	return strings.ToLower(FoldDiacritics(s))
}

// Tokenize splits text into words made of letters and digits.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
}

// ExtractText concatenates every string value of a document, walking maps
// in key order so the result is stable.
func ExtractText(doc interface{}) string {
	var parts []string
	collect(doc, &parts)
	return strings.Join(parts, " ")
}

func collect(v interface{}, parts *[]string) {
	switch val := v.(type) {
	case string:
		*parts = append(*parts, val)
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collect(val[k], parts)
		}
	case []interface{}:
		for _, e := range val {
			collect(e, parts)
		}
	case []string:
		*parts = append(*parts, val...)
	}
}

// Document is the indexed form of a document's text.
type Document struct {
	// Raw is the extracted text as stored.
	Raw string
	// Cased has diacritics removed but keeps case.
	Cased string
	// Folded is lower-cased with diacritics removed.
	Folded string
}

// Index builds the searchable representations of a document.
func Index(doc interface{}) Document {
	raw := ExtractText(doc)
	cased := FoldDiacritics(raw)
	return Document{
		Raw:    raw,
		Cased:  cased,
		Folded: strings.ToLower(cased),
	}
}

// Query is a parsed search string. Terms are OR-ed.
type Query struct {
	// Terms are the words as typed.
	Terms []string
	// Folded are the words lower-cased with diacritics removed.
	Folded []string

	variant Variant
}

// ParseQuery tokenizes the search string.
func ParseQuery(search string, caseSensitive, diacriticSensitive bool) Query {
	q := Query{Terms: Tokenize(search)}
	for _, t := range q.Terms {
		q.Folded = append(q.Folded, Fold(t))
	}
	switch {
	case caseSensitive && diacriticSensitive:
		q.variant = VariantRaw
	case caseSensitive:
		q.variant = VariantCased
	case diacriticSensitive:
		q.variant = VariantLower
	}
	return q
}

// Empty reports whether the query has no searchable words.
func (q Query) Empty() bool {
	return len(q.Terms) == 0
}

// Variant returns the representation sensitive matches run against.
func (q Query) Variant() Variant {
	return q.variant
}

// SensitiveTerms returns the words to look for in the Variant's
// representation of a document.
func (q Query) SensitiveTerms() []string {
	terms := make([]string, 0, len(q.Terms))
	for _, t := range q.Terms {
		switch q.variant {
		case VariantCased:
			terms = append(terms, FoldDiacritics(t))
		case VariantLower:
			terms = append(terms, strings.ToLower(t))
		default:
			terms = append(terms, t)
		}
	}
	return terms
}

// Match scores the document against the query. The score is the share of
// the document's words that match a query word; ok is false when nothing
// matches.
func (q Query) Match(doc Document) (score float64, ok bool) {
	if q.Empty() {
		return 0, false
	}
	words := Tokenize(doc.Folded)
	if len(words) == 0 {
		return 0, false
	}
	want := make(map[string]bool, len(q.Folded))
	for _, t := range q.Folded {
		want[t] = true
	}
	hits := 0
	for _, w := range words {
		if want[w] {
			hits++
		}
	}
	if hits == 0 {
		return 0, false
	}
	if q.variant != VariantNone && !q.sensitiveMatch(doc) {
		return 0, false
	}
	return float64(hits) / float64(len(words)), true
}

func (q Query) sensitiveMatch(doc Document) bool {
	words := make(map[string]bool)
	for _, w := range doc.Tokens(q.variant) {
		words[w] = true
	}
	for _, t := range q.SensitiveTerms() {
		if words[t] {
			return true
		}
	}
	return false
}

// Tokens returns the distinct words of the representation a Variant
// matches against, in order of first appearance.
func (d Document) Tokens(v Variant) []string {
	var text string
	switch v {
	case VariantRaw:
		text = d.Raw
	case VariantCased:
		text = d.Cased
	case VariantLower:
		text = strings.ToLower(d.Raw)
	default:
		text = d.Folded
	}
	seen := make(map[string]bool)
	var out []string
	for _, w := range Tokenize(text) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
