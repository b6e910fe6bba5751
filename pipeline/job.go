// Package pipeline owns the transformation job lifecycle: submission, the
// queued/processing/terminal state machine, progress reporting, and the
// in-memory job registry.
package pipeline

import (
	"time"

	"github.com/c360studio/styleforge/resolver"
)

// Status represents the lifecycle state of a job.
type Status string

const (
	// StatusQueued indicates the job is accepted but not yet running.
	StatusQueued Status = "queued"
	// StatusProcessing indicates a worker is running the pipeline.
	StatusProcessing Status = "processing"
	// StatusCompleted indicates the job produced a result. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the job ended with an error. Terminal.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress checkpoints along the happy path. Values are advisory but must be
// strictly increasing; a job's recorded progress never decreases.
const (
	progressQueued     = 0
	progressStarted    = 10
	progressValidating = 25
	progressResolving  = 45
	progressExecuting  = 60
	progressFinalizing = 90
	progressDone       = 100
)

// Request is a job submission.
type Request struct {
	// SourceDocID is the handle of the document to transform.
	SourceDocID string `json:"source_doc_id"`

	// StylesheetDocID is the handle of the stylesheet.
	StylesheetDocID string `json:"stylesheet_doc_id"`

	// SchemaDocID is the optional schema handle.
	SchemaDocID string `json:"schema_doc_id,omitempty"`

	// ValidateSchema requests a compliance check before execution.
	ValidateSchema bool `json:"validate_schema"`

	// ResolveDependencies requests include/import resolution before
	// execution. Any missing dependency then fails the job.
	ResolveDependencies bool `json:"resolve_dependencies"`
}

// Job tracks one transformation request through its lifecycle.
type Job struct {
	// ID is the job handle returned by Submit.
	ID string `json:"id"`

	// Request echoes the submission.
	Request Request `json:"request"`

	// Status is the lifecycle state.
	Status Status `json:"status"`

	// Progress is 0-100, non-decreasing while non-terminal, and 100 exactly
	// when the job completed.
	Progress int `json:"progress"`

	// StatusMessage is the human-readable stage description.
	StatusMessage string `json:"status_message"`

	// ErrorMessage is set exactly when the job failed.
	ErrorMessage string `json:"error_message,omitempty"`

	// ResultDocID is the handle of the rendered output document.
	ResultDocID string `json:"result_doc_id,omitempty"`

	// Degraded marks a success produced via the fallback path.
	Degraded bool `json:"degraded,omitempty"`

	// Warnings carries non-fatal diagnostics from the pipeline.
	Warnings []string `json:"warnings,omitempty"`

	// Dependencies is the resolution report from the last resolution pass.
	Dependencies []resolver.Dependency `json:"dependencies,omitempty"`

	// ProcessingTimeMs is the execution wall-clock time in milliseconds.
	ProcessingTimeMs int64 `json:"processing_time_ms,omitempty"`

	// OutputSizeBytes is the rendered output size.
	OutputSizeBytes int `json:"output_size_bytes,omitempty"`

	// CreatedAt is the submission time.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is set exactly once, on the first transition into a
	// terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
