// Package normalizer rewrites stylesheet text so the reduced-capability
// fallback engine can execute it. The rewrites are textual pattern
// substitutions, not a full parse, and trade selection precision for
// executability: this is a best-effort compatibility shim, applied only on
// the fallback path, never to input destined for the full-capability engine.
//
// Normalize is pure and idempotent.
package normalizer

import (
	"fmt"
	"regexp"
)

// unsupportedDeclarations lists top-level declarations the fallback engine
// cannot interpret. Each is removed and replaced with an inert marker comment
// retaining the element name for diagnostics.
var unsupportedDeclarations = []string{
	"strip-space",
	"preserve-space",
	"decimal-format",
	"key",
	"namespace-alias",
}

var (
	declarationPatterns = buildDeclarationPatterns()

	// Output method html is rewritten to xml: the fallback engine only
	// emits well-formed XML-shaped output.
	htmlOutputPattern = regexp.MustCompile(`(<xsl:output\b[^>]*?method\s*=\s*")html(")`)

	// disable-output-escaping has no safe equivalent and is stripped.
	escapingAttrPattern = regexp.MustCompile(`\s+disable-output-escaping\s*=\s*"[^"]*"`)

	// Predicates referencing keyed lookups or node-identity generation are
	// simplified to a position predicate. This runs before the bare call
	// rewrites below so the predicate pattern still sees the calls.
	keyedPredicatePattern = regexp.MustCompile(`\[[^\[\]]*(?:key\s*\(|generate-id\s*\()[^\[\]]*\]`)

	// Keyed lookups are unsupported once the key declarations are removed.
	keyCallPattern = regexp.MustCompile(`key\s*\([^)]*\)`)

	// Multi-branch alternation in selection expressions collapses to a
	// wildcard (or true() for test attributes).
	unionTestPattern   = regexp.MustCompile(`test\s*=\s*"[^"]*\|[^"]*"`)
	unionSelectPattern = regexp.MustCompile(`(select|match)\s*=\s*"[^"]*\|[^"]*"`)

	generateIDPattern = regexp.MustCompile(`generate-id\s*\([^)]*\)`)
	currentPattern    = regexp.MustCompile(`current\s*\(\s*\)`)
	documentPattern   = regexp.MustCompile(`document\s*\([^)]*\)`)
)

func buildDeclarationPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(unsupportedDeclarations))
	for _, name := range unsupportedDeclarations {
		patterns[name] = regexp.MustCompile(
			`(?s)<xsl:` + name + `\b[^>]*?/>|<xsl:` + name + `\b[^>]*?>.*?</xsl:` + name + `>`)
	}
	return patterns
}

// Normalize rewrites stylesheet text for fallback execution. Each rewrite is
// independent and applied in a fixed order.
func Normalize(text string) string {
	for _, name := range unsupportedDeclarations {
		marker := fmt.Sprintf("<!-- removed xsl:%s -->", name)
		text = declarationPatterns[name].ReplaceAllString(text, marker)
	}

	text = htmlOutputPattern.ReplaceAllString(text, "${1}xml${2}")
	text = escapingAttrPattern.ReplaceAllString(text, "")

	text = keyedPredicatePattern.ReplaceAllString(text, "[position()=1]")
	text = keyCallPattern.ReplaceAllString(text, "''")

	text = unionTestPattern.ReplaceAllString(text, `test="true()"`)
	text = unionSelectPattern.ReplaceAllString(text, `${1}="*"`)

	text = generateIDPattern.ReplaceAllString(text, "position()")
	text = currentPattern.ReplaceAllString(text, ".")
	text = documentPattern.ReplaceAllString(text, ".")

	return text
}
