// Package resolver scans stylesheets for include/import directives and
// matches each referenced path against a pool of candidate documents.
// Resolution is best-effort: missing references are recorded, never thrown,
// and the caller decides whether they fail the overall job.
package resolver

import "strings"

// DirectiveKind identifies the kind of cross-stylesheet reference.
type DirectiveKind string

const (
	// DirectiveInclude is an xsl:include reference.
	DirectiveInclude DirectiveKind = "include"
	// DirectiveImport is an xsl:import reference.
	DirectiveImport DirectiveKind = "import"
)

// Status is the resolution state of a dependency.
type Status string

const (
	// StatusPending indicates resolution has not completed.
	StatusPending Status = "pending"
	// StatusResolved indicates the reference matched a pool document.
	StatusResolved Status = "resolved"
	// StatusMissing indicates no pool document matched the reference.
	StatusMissing Status = "missing"
)

// Dependency records the resolution outcome for one directive. One record is
// created per directive in declaration order; duplicate directives for the
// same path produce duplicate records.
type Dependency struct {
	// StylesheetID is the document that declared the directive.
	StylesheetID string `json:"stylesheet_id"`

	// Kind is the directive kind.
	Kind DirectiveKind `json:"kind"`

	// DeclaredPath is the reference path as written in the stylesheet.
	DeclaredPath string `json:"declared_path"`

	// Status is the resolution outcome.
	Status Status `json:"status"`

	// ResolvedDocID is the matched document handle, empty when missing.
	ResolvedDocID string `json:"resolved_doc_id,omitempty"`

	// MatchedBy names the matcher strategy that resolved the reference.
	MatchedBy string `json:"matched_by,omitempty"`
}

// MissingPaths returns the declared paths of all missing dependencies,
// in declaration order.
func MissingPaths(deps []Dependency) []string {
	var missing []string
	for _, d := range deps {
		if d.Status == StatusMissing {
			missing = append(missing, d.DeclaredPath)
		}
	}
	return missing
}

// MissingError builds the consolidated failure message for missing
// dependencies, or "" if none are missing.
func MissingError(deps []Dependency) string {
	missing := MissingPaths(deps)
	if len(missing) == 0 {
		return ""
	}
	return "unresolved stylesheet dependencies: " + strings.Join(missing, ", ")
}
