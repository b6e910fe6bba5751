// Package enginetest provides fake engines for pipeline tests.
package enginetest

import (
	"sync"
	"sync/atomic"

	"github.com/c360studio/styleforge/engine"
)

// Fake is a configurable in-memory engine for tests.
type Fake struct {
	// EngineName is returned by Name. Defaults to "fake".
	EngineName string

	// EngineFidelity is returned by Fidelity. Defaults to FidelityFull.
	EngineFidelity engine.Fidelity

	// LoadErr, if set, is returned by LoadDocument.
	LoadErr error

	// CompileErr, if set, is returned by Compile.
	CompileErr error

	// RunErr, if set, is returned by Program.Run.
	RunErr error

	// Output is returned by Program.Run on success.
	// Defaults to the source bytes when nil.
	Output []byte

	// Transform, if set, overrides Output for Program.Run.
	Transform func(source []byte) ([]byte, error)

	// Call counters, safe for concurrent use.
	LoadCalls    atomic.Int64
	CompileCalls atomic.Int64
	RunCalls     atomic.Int64
	CloseCalls   atomic.Int64

	mu             sync.Mutex
	compiledInputs [][]byte
}

// CompiledInputs returns the stylesheet bytes passed to Compile, in order.
func (f *Fake) CompiledInputs() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.compiledInputs...)
}

// Name returns the configured engine name.
func (f *Fake) Name() string {
	if f.EngineName == "" {
		return "fake"
	}
	return f.EngineName
}

// Fidelity returns the configured fidelity.
func (f *Fake) Fidelity() engine.Fidelity {
	if f.EngineFidelity == "" {
		return engine.FidelityFull
	}
	return f.EngineFidelity
}

// LoadDocument returns LoadErr.
func (f *Fake) LoadDocument(content []byte) error {
	f.LoadCalls.Add(1)
	return f.LoadErr
}

// Compile returns a fake program or CompileErr.
func (f *Fake) Compile(stylesheet []byte) (engine.Program, error) {
	f.CompileCalls.Add(1)
	f.mu.Lock()
	f.compiledInputs = append(f.compiledInputs, append([]byte(nil), stylesheet...))
	f.mu.Unlock()
	if f.CompileErr != nil {
		return nil, f.CompileErr
	}
	return &fakeProgram{fake: f}, nil
}

type fakeProgram struct {
	fake *Fake
}

func (p *fakeProgram) Run(source []byte) ([]byte, error) {
	p.fake.RunCalls.Add(1)
	if p.fake.RunErr != nil {
		return nil, p.fake.RunErr
	}
	if p.fake.Transform != nil {
		return p.fake.Transform(source)
	}
	if p.fake.Output != nil {
		return p.fake.Output, nil
	}
	return source, nil
}

func (p *fakeProgram) Close() error {
	p.fake.CloseCalls.Add(1)
	return nil
}
