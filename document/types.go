// Package document provides the document model and in-memory store for the
// transformation pipeline. Documents are ingested as raw bytes and classified
// by kind (source, stylesheet, schema); validation status is tracked per
// document and mutated exactly once per completed check.
package document

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind classifies a document's role in the pipeline.
type Kind string

const (
	// KindSource is an input XML document to be transformed.
	KindSource Kind = "source"
	// KindStylesheet is an XSLT stylesheet.
	KindStylesheet Kind = "stylesheet"
	// KindSchema is an XSD schema used for compliance checking.
	KindSchema Kind = "schema"
	// KindOutput is a rendered transformation result.
	KindOutput Kind = "output"
)

// ValidationStatus tracks the outcome of a document's well-formedness check.
type ValidationStatus string

const (
	// ValidationPending indicates no check has completed yet.
	ValidationPending ValidationStatus = "pending"
	// ValidationValid indicates the document passed its check.
	ValidationValid ValidationStatus = "valid"
	// ValidationInvalid indicates the document failed its check.
	ValidationInvalid ValidationStatus = "invalid"
)

// Document is a stored document with its content and validation state.
type Document struct {
	// ID is the opaque handle used throughout the pipeline.
	ID string `json:"id"`

	// Name is the display name, usually the original filename.
	Name string `json:"name"`

	// Kind classifies the document's role.
	Kind Kind `json:"kind"`

	// Content is the raw document bytes.
	Content []byte `json:"-"`

	// ValidationStatus is the outcome of the background check.
	ValidationStatus ValidationStatus `json:"validation_status"`

	// ValidationError holds the check failure message, if any.
	ValidationError string `json:"validation_error,omitempty"`

	// AddedAt is when the document was ingested.
	AddedAt time.Time `json:"added_at"`
}

// KindForName infers the document kind from a filename extension.
func KindForName(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xsl", ".xslt":
		return KindStylesheet
	case ".xsd":
		return KindSchema
	default:
		return KindSource
	}
}
