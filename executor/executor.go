// Package executor runs the two-stage transformation strategy: the
// full-capability primary engine first, then the reduced-capability fallback
// after lossy normalization. Results carry a degraded-fidelity flag so
// fallback successes stay distinguishable from primary successes.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/c360studio/styleforge/document"
	"github.com/c360studio/styleforge/engine"
	"github.com/c360studio/styleforge/normalizer"
)

// Input carries one transformation request.
type Input struct {
	// Source is the document to transform.
	Source *document.Document

	// Stylesheet is the transformation stylesheet.
	Stylesheet *document.Document

	// ResolvedText is the stylesheet text after dependency substitution.
	// Empty means no resolution pass ran; the fallback path then normalizes
	// the raw stylesheet text instead.
	ResolvedText string
}

// Result is the uniform execution envelope.
type Result struct {
	// Success reports whether any engine produced output.
	Success bool

	// Degraded is set when the output came from the fallback path.
	Degraded bool

	// Engine names the engine that produced the output.
	Engine string

	// OutputSize is the number of bytes written to the sink.
	OutputSize int

	// ProcessingTime is wall-clock time from the start of the primary
	// attempt to the terminal state, fallback included.
	ProcessingTime time.Duration

	// Errors holds the authoritative failure messages, primary first.
	Errors []string

	// Warnings holds non-fatal diagnostics (e.g. the primary failure that
	// triggered a fallback).
	Warnings []string
}

// Executor coordinates the primary and fallback engines.
type Executor struct {
	primary  engine.Engine
	fallback engine.Engine
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates an executor over the given engines. The fallback engine may be
// nil, in which case a primary failure is immediately fatal.
func New(primary, fallback engine.Engine, opts ...Option) *Executor {
	e := &Executor{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the transformation and writes the output to sink.
// The fallback engine is never invoked when the primary succeeds. When both
// engines fail, the primary engine's error is reported as the authoritative
// failure reason; the fallback error is kept as supplementary diagnostics.
func (e *Executor) Execute(ctx context.Context, in Input, sink io.Writer) *Result {
	start := time.Now()
	result := &Result{}

	out, primaryErr := e.attempt(ctx, e.primary, in.Stylesheet.Content, in.Source.Content)
	if primaryErr == nil {
		e.finish(result, out, sink, e.primary.Name(), start)
		return result
	}

	e.logger.Warn("Primary engine failed, attempting fallback",
		"engine", e.primary.Name(),
		"stylesheet", in.Stylesheet.Name,
		"error", primaryErr)

	if e.fallback == nil {
		result.Errors = append(result.Errors, primaryErr.Error())
		result.ProcessingTime = time.Since(start)
		return result
	}

	text := in.ResolvedText
	if text == "" {
		text = string(in.Stylesheet.Content)
	}
	text = normalizer.Normalize(text)

	out, fallbackErr := e.attempt(ctx, e.fallback, []byte(text), in.Source.Content)
	if fallbackErr == nil {
		e.finish(result, out, sink, e.fallback.Name(), start)
		result.Degraded = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("degraded-fidelity result: primary engine %s failed (%s), output produced by %s after normalization",
				e.primary.Name(), primaryErr, e.fallback.Name()))
		return result
	}

	// The primary engine's diagnostics are assumed higher-fidelity; the
	// fallback error is supplementary context only.
	e.logger.Error("Fallback engine failed",
		"engine", e.fallback.Name(),
		"stylesheet", in.Stylesheet.Name,
		"error", fallbackErr)
	result.Errors = append(result.Errors, primaryErr.Error())
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("fallback engine %s also failed: %s", e.fallback.Name(), fallbackErr))
	result.ProcessingTime = time.Since(start)
	return result
}

// attempt validates the source with the engine's own document loader,
// compiles the stylesheet, and runs it. The work runs on its own goroutine
// so a context deadline can bound engine execution.
func (e *Executor) attempt(ctx context.Context, eng engine.Engine, stylesheet, source []byte) ([]byte, error) {
	type outcome struct {
		out []byte
		err error
	}
	ch := make(chan outcome, 1)

	go func() {
		if err := eng.LoadDocument(source); err != nil {
			ch <- outcome{nil, err}
			return
		}
		prog, err := eng.Compile(stylesheet)
		if err != nil {
			ch <- outcome{nil, err}
			return
		}
		defer prog.Close()

		out, err := prog.Run(source)
		ch <- outcome{out, err}
	}()

	select {
	case o := <-ch:
		return o.out, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("transformation aborted: %w", ctx.Err())
	}
}

func (e *Executor) finish(result *Result, out []byte, sink io.Writer, engineName string, start time.Time) {
	n, err := sink.Write(out)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("write output: %s", err))
		result.ProcessingTime = time.Since(start)
		return
	}
	result.Success = true
	result.Engine = engineName
	result.OutputSize = n
	result.ProcessingTime = time.Since(start)

	e.logger.Debug("Transformation succeeded",
		"engine", engineName,
		"output_bytes", n,
		"duration", result.ProcessingTime)
}
