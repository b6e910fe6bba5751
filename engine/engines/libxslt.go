// Package engines implements transformation engine adapters.
package engines

import (
	"fmt"

	"github.com/jbowtie/gokogiri/xml"
	xslt "github.com/wamuir/go-xslt"

	"github.com/c360studio/styleforge/engine"
)

// LibxsltEngine is the full-capability primary engine, backed by libxslt.
type LibxsltEngine struct{}

func init() {
	engine.Register(&LibxsltEngine{})
}

// Name returns the engine identifier.
func (e *LibxsltEngine) Name() string {
	return "libxslt"
}

// Fidelity reports full capability.
func (e *LibxsltEngine) Fidelity() engine.Fidelity {
	return engine.FidelityFull
}

// LoadDocument parses content with libxml2's strict document loader.
func (e *LibxsltEngine) LoadDocument(content []byte) error {
	doc, err := xml.Parse(content, xml.DefaultEncodingBytes, nil, xml.StrictParseOption, xml.DefaultEncodingBytes)
	if err != nil {
		return engine.NewValidationError(fmt.Errorf("libxslt: parse document: %w", err))
	}
	doc.Free()
	return nil
}

// Compile compiles the stylesheet with libxslt.
func (e *LibxsltEngine) Compile(stylesheet []byte) (engine.Program, error) {
	xs, err := xslt.NewStylesheet(stylesheet)
	if err != nil {
		return nil, engine.NewCompilationError(fmt.Errorf("libxslt: compile stylesheet: %w", err))
	}
	return &libxsltProgram{xs: xs}, nil
}

type libxsltProgram struct {
	xs *xslt.Stylesheet
}

// Run applies the compiled stylesheet to the source document.
func (p *libxsltProgram) Run(source []byte) ([]byte, error) {
	out, err := p.xs.Transform(source)
	if err != nil {
		return nil, engine.NewExecutionError(fmt.Errorf("libxslt: transform: %w", err))
	}
	return out, nil
}

// Close releases the compiled stylesheet.
func (p *libxsltProgram) Close() error {
	p.xs.Close()
	return nil
}
