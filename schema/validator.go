// Package schema provides the schema compliance collaborator.
package schema

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
)

// Result is the outcome of a compliance check.
type Result struct {
	// Valid reports whether the document satisfied the schema.
	Valid bool

	// Errors lists the individual compliance violations.
	Errors []string
}

// Validator checks a document against a schema. Implementations must be safe
// for concurrent use.
type Validator interface {
	// Check validates doc against schema. A non-nil error means the check
	// itself could not run (e.g. the schema does not compile); compliance
	// violations are reported through the Result.
	Check(ctx context.Context, doc, schema []byte) (*Result, error)
}

// XSDValidator validates documents against XSD 1.0 schemas.
type XSDValidator struct{}

// NewXSDValidator creates an XSD-backed validator.
func NewXSDValidator() *XSDValidator {
	return &XSDValidator{}
}

// Check compiles the schema and validates the document against it.
func (v *XSDValidator) Check(ctx context.Context, doc, schema []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eng, err := xsd.CompileSchema(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	if err := eng.Validate(bytes.NewReader(doc)); err != nil {
		if violations, ok := xsderrors.AsValidations(err); ok {
			msgs := make([]string, 0, len(violations))
			for i := range violations {
				msgs = append(msgs, violations[i].Error())
			}
			return &Result{Valid: false, Errors: msgs}, nil
		}
		return &Result{Valid: false, Errors: []string{err.Error()}}, nil
	}

	return &Result{Valid: true}, nil
}
