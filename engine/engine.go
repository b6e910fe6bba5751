// Package engine defines the transformation engine capability boundary.
// Engines are injected collaborators: the pipeline depends only on the
// Engine and Program interfaces, never on a concrete implementation, so the
// executor stays testable with fake engines.
package engine

import "sync"

// Fidelity indicates how faithfully an engine executes a stylesheet.
type Fidelity string

const (
	// FidelityFull is a standards-capable engine.
	FidelityFull Fidelity = "full"
	// FidelityReduced is a best-effort engine with a restricted feature set.
	FidelityReduced Fidelity = "reduced"
)

// Engine compiles stylesheets and loads documents using its own document
// model. Implementations must be safe for concurrent use.
type Engine interface {
	// Name returns the engine identifier (e.g., "libxslt", "ratago").
	Name() string

	// Fidelity reports whether this engine is full- or reduced-capability.
	Fidelity() Fidelity

	// LoadDocument parses content with the engine's own document loader,
	// returning an error if the document is not well-formed.
	LoadDocument(content []byte) error

	// Compile compiles a stylesheet into a runnable program.
	Compile(stylesheet []byte) (Program, error)
}

// Program is a compiled stylesheet ready to run against source documents.
type Program interface {
	// Run applies the program to a source document and returns the output.
	Run(source []byte) ([]byte, error)

	// Close releases any resources held by the compiled program.
	Close() error
}

// engineRegistry holds registered engines.
var (
	engineRegistry = make(map[string]Engine)
	engineMu       sync.RWMutex
)

// Register adds an engine to the registry.
func Register(e Engine) {
	engineMu.Lock()
	defer engineMu.Unlock()
	engineRegistry[e.Name()] = e
}

// Get retrieves an engine by name, or nil if not registered.
func Get(name string) Engine {
	engineMu.RLock()
	defer engineMu.RUnlock()
	return engineRegistry[name]
}

// List returns all registered engine names.
func List() []string {
	engineMu.RLock()
	defer engineMu.RUnlock()

	names := make([]string, 0, len(engineRegistry))
	for name := range engineRegistry {
		names = append(names, name)
	}
	return names
}
