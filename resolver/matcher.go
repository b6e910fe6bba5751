package resolver

import (
	"path"
	"strings"

	"github.com/c360studio/styleforge/document"
)

// Matcher matches a declared reference path against candidate documents.
// Matchers are tried in registration order; the first hit wins.
type Matcher interface {
	// Name identifies the strategy for diagnostics.
	Name() string

	// Match returns the matching document, or nil.
	Match(ref string, pool []*document.Document) *document.Document
}

// DefaultMatchers returns the standard strategy chain:
// exact reference, base filename, then style-family normalization.
func DefaultMatchers() []Matcher {
	return []Matcher{
		ExactMatcher{},
		BasenameMatcher{},
		StyleFamilyMatcher{},
	}
}

// ExactMatcher matches the reference string literally against document names.
type ExactMatcher struct{}

// Name identifies the strategy.
func (ExactMatcher) Name() string { return "exact" }

// Match compares the declared reference against document names verbatim.
func (ExactMatcher) Match(ref string, pool []*document.Document) *document.Document {
	for _, doc := range pool {
		if doc.Name == ref {
			return doc
		}
	}
	return nil
}

// BasenameMatcher matches by base filename, ignoring directory components
// in the declared reference.
type BasenameMatcher struct{}

// Name identifies the strategy.
func (BasenameMatcher) Name() string { return "basename" }

// Match compares base filenames case-insensitively.
func (BasenameMatcher) Match(ref string, pool []*document.Document) *document.Document {
	base := strings.ToLower(path.Base(strings.ReplaceAll(ref, "\\", "/")))
	for _, doc := range pool {
		if strings.ToLower(doc.Name) == base {
			return doc
		}
	}
	return nil
}

// StyleFamilyMatcher is a best-effort heuristic tuned for families of
// near-identical "...Style" stylesheet filenames that differ only by an
// infix token between a shared prefix and the Style suffix
// (e.g. "Invoice_2024Style.xsl" vs "InvoiceStyle.xsl"). It must never be
// treated as authoritative.
type StyleFamilyMatcher struct{}

// Name identifies the strategy.
func (StyleFamilyMatcher) Name() string { return "style-family" }

// Match compares family keys of the reference and each candidate.
func (StyleFamilyMatcher) Match(ref string, pool []*document.Document) *document.Document {
	key := familyKey(ref)
	if key == "" {
		return nil
	}
	for _, doc := range pool {
		if k := familyKey(doc.Name); k != "" && k == key {
			return doc
		}
	}
	return nil
}

// familyKey normalizes a "...Style" filename down to its family: the leading
// token before any separator, plus the "style" suffix. Names outside the
// family convention produce no key.
func familyKey(name string) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if !strings.HasSuffix(base, "style") {
		return ""
	}
	stem := strings.TrimSuffix(base, "style")
	// Strip the infix token: everything from the first separator onward.
	for _, sep := range []string{"_", "-", "."} {
		if i := strings.Index(stem, sep); i >= 0 {
			stem = stem[:i]
		}
	}
	if stem == "" {
		return ""
	}
	return stem + "style"
}
