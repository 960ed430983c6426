// Package extract pulls named fields out of HTML markup using CSS selectors.
// A field that matches nothing yields NotFound rather than an empty default,
// so callers decide per field whether a miss is fatal.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrParse is returned when the markup is blank or cannot be parsed.
var ErrParse = errors.New("extract: unparseable markup")

// Field names one value to pull from a document.
type Field struct {
	Name     string
	Selector string
	// Attr reads an attribute of the first match instead of its text.
	Attr string
}

// Schema is an ordered set of fields.
type Schema []Field

// Value is the outcome of one field lookup.
type Value struct {
	text  string
	found bool
}

// NotFound is the value of a field whose selector matched nothing.
var NotFound = Value{}

// Found builds a present value.
func Found(text string) Value { return Value{text: text, found: true} }

// Ok reports whether the field was present. A present field may be empty.
func (v Value) Ok() bool { return v.found }

// String returns the extracted text, or "" for NotFound.
func (v Value) String() string { return v.text }

// Or returns the text when present and fallback otherwise.
func (v Value) Or(fallback string) string {
	if !v.found {
		return fallback
	}
	return v.text
}

// Result maps field names to values.
type Result map[string]Value

// Get returns the value for name; unknown names are NotFound.
func (r Result) Get(name string) Value { return r[name] }

// Has reports whether every named field was found with non-blank text.
func (r Result) Has(names ...string) bool {
	for _, n := range names {
		v := r[n]
		if !v.Ok() || v.String() == "" {
			return false
		}
	}
	return true
}

// Parse turns markup into a document.
func Parse(markup string) (*goquery.Document, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrParse
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// Fields applies schema to the whole document.
func Fields(markup string, schema Schema) (Result, error) {
	doc, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return Apply(doc.Selection, schema), nil
}

// Rows applies schema to every element matching rowSelector, in document order.
func Rows(markup, rowSelector string, schema Schema) ([]Result, error) {
	doc, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return ApplyRows(doc.Selection, rowSelector, schema), nil
}

// ApplyRows is Rows on an already parsed selection.
func ApplyRows(sel *goquery.Selection, rowSelector string, schema Schema) []Result {
	rows := sel.Find(rowSelector)
	out := make([]Result, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		out = append(out, Apply(row, schema))
	})
	return out
}

// Apply evaluates schema relative to sel.
func Apply(sel *goquery.Selection, schema Schema) Result {
	res := make(Result, len(schema))
	for _, f := range schema {
		res[f.Name] = lookup(sel, f)
	}
	return res
}

func lookup(sel *goquery.Selection, f Field) Value {
	match := sel.Find(f.Selector).First()
	if match.Length() == 0 {
		return NotFound
	}
	if f.Attr != "" {
		v, ok := match.Attr(f.Attr)
		if !ok {
			return NotFound
		}
		return Found(strings.TrimSpace(v))
	}
	return Found(strings.TrimSpace(match.Text()))
}
