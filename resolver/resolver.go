package resolver

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/c360studio/styleforge/document"
)

// directivePattern matches xsl:include and xsl:import directives and captures
// the operation kind and the href value. Directives are processed in
// declaration order.
var directivePattern = regexp.MustCompile(`<xsl:(include|import)\b[^>]*?href\s*=\s*"([^"]*)"[^>]*?/?>`)

// Resolver resolves stylesheet dependencies against a candidate pool using
// an ordered list of matcher strategies.
type Resolver struct {
	matchers []Matcher
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMatchers replaces the default matcher chain.
func WithMatchers(matchers ...Matcher) Option {
	return func(r *Resolver) {
		r.matchers = matchers
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver with the default matcher chain.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		matchers: DefaultMatchers(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve scans the stylesheet for include/import directives and matches each
// against the pool. Every directive produces exactly one Dependency record,
// resolved or not; a fresh record set is created on every pass. Each
// directive is replaced in the returned text by a marker comment; resolved
// dependencies are expected to be supplied to the engine as pre-merged
// resources, not textually inlined.
func (r *Resolver) Resolve(stylesheet *document.Document, pool []*document.Document) (string, []Dependency) {
	deps := make([]Dependency, 0, 4)

	resolved := directivePattern.ReplaceAllStringFunc(string(stylesheet.Content), func(directive string) string {
		groups := directivePattern.FindStringSubmatch(directive)
		kind := DirectiveKind(groups[1])
		ref := groups[2]

		dep := Dependency{
			StylesheetID: stylesheet.ID,
			Kind:         kind,
			DeclaredPath: ref,
			Status:       StatusPending,
		}

		match, matchedBy := r.match(ref, pool)
		if match != nil {
			dep.Status = StatusResolved
			dep.ResolvedDocID = match.ID
			dep.MatchedBy = matchedBy
			deps = append(deps, dep)
			r.logger.Debug("Dependency resolved",
				"stylesheet", stylesheet.Name,
				"ref", ref,
				"matched", match.Name,
				"strategy", matchedBy)
			return fmt.Sprintf("<!-- %s %q resolved to %s -->", kind, ref, match.Name)
		}

		dep.Status = StatusMissing
		deps = append(deps, dep)
		r.logger.Warn("Dependency missing",
			"stylesheet", stylesheet.Name,
			"ref", ref)
		return fmt.Sprintf("<!-- %s %q could not be resolved -->", kind, ref)
	})

	return resolved, deps
}

// match runs the matcher chain in order and returns the first hit.
func (r *Resolver) match(ref string, pool []*document.Document) (*document.Document, string) {
	for _, m := range r.matchers {
		if doc := m.Match(ref, pool); doc != nil {
			return doc, m.Name()
		}
	}
	return nil, ""
}
