package engines

import (
	"fmt"

	"github.com/jbowtie/gokogiri/xml"
	rxslt "github.com/jbowtie/ratago/xslt"

	"github.com/c360studio/styleforge/engine"
)

// RatagoEngine is the reduced-capability fallback engine. Ratago implements
// a subset of XSLT 1.0; stylesheets destined for it are expected to have
// been normalized first.
type RatagoEngine struct{}

func init() {
	engine.Register(&RatagoEngine{})
}

// Name returns the engine identifier.
func (e *RatagoEngine) Name() string {
	return "ratago"
}

// Fidelity reports reduced capability.
func (e *RatagoEngine) Fidelity() engine.Fidelity {
	return engine.FidelityReduced
}

// LoadDocument parses content with ratago's document model.
func (e *RatagoEngine) LoadDocument(content []byte) error {
	doc, err := parseDoc(content)
	if err != nil {
		return engine.NewValidationError(fmt.Errorf("ratago: parse document: %w", err))
	}
	doc.Free()
	return nil
}

// Compile parses and compiles the stylesheet with ratago.
func (e *RatagoEngine) Compile(stylesheet []byte) (engine.Program, error) {
	doc, err := parseDoc(stylesheet)
	if err != nil {
		return nil, engine.NewCompilationError(fmt.Errorf("ratago: parse stylesheet: %w", err))
	}
	style, err := rxslt.ParseStylesheet(doc, "stylesheet.xsl")
	if err != nil {
		doc.Free()
		return nil, engine.NewCompilationError(fmt.Errorf("ratago: compile stylesheet: %w", err))
	}
	return &ratagoProgram{doc: doc, style: style}, nil
}

type ratagoProgram struct {
	doc   *xml.XmlDocument
	style *rxslt.Stylesheet
}

// Run applies the compiled stylesheet to the source document.
func (p *ratagoProgram) Run(source []byte) ([]byte, error) {
	doc, err := parseDoc(source)
	if err != nil {
		return nil, engine.NewValidationError(fmt.Errorf("ratago: parse source: %w", err))
	}
	defer doc.Free()

	out, err := p.style.Process(doc, rxslt.StylesheetOptions{IndentOutput: false})
	if err != nil {
		return nil, engine.NewExecutionError(fmt.Errorf("ratago: process: %w", err))
	}
	return []byte(out), nil
}

// Close releases the parsed stylesheet document.
func (p *ratagoProgram) Close() error {
	p.doc.Free()
	return nil
}

func parseDoc(content []byte) (*xml.XmlDocument, error) {
	return xml.Parse(content, xml.DefaultEncodingBytes, nil, xml.StrictParseOption, xml.DefaultEncodingBytes)
}
