package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/styleforge/resolver"
)

// ErrJobNotFound is returned when a job ID does not exist.
var ErrJobNotFound = errors.New("job not found")

// Registry is the in-memory job registry. All lifecycle transitions go
// through it so the state-machine invariants hold under concurrent access:
// progress never decreases, terminal states admit no transitions, and
// CompletedAt is set exactly once.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
	}
}

// Create registers a new queued job for the request.
func (r *Registry) Create(req Request) *Job {
	job := &Job{
		ID:            uuid.New().String(),
		Request:       req,
		Status:        StatusQueued,
		Progress:      progressQueued,
		StatusMessage: "queued",
		CreatedAt:     time.Now(),
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	return job
}

// Get returns a snapshot of the job.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("get job %s: %w", id, ErrJobNotFound)
	}
	return snapshot(job), nil
}

// List returns snapshots of all jobs ordered by creation time.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, snapshot(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// SetProcessing moves a queued job into the processing state.
func (r *Registry) SetProcessing(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = StatusProcessing
}

// SetProgress advances a job's progress checkpoint. Decreases and updates to
// terminal jobs are ignored; 100 is reserved for Complete.
func (r *Registry) SetProgress(id string, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	if progress >= progressDone {
		progress = progressDone - 1
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	if message != "" {
		job.StatusMessage = message
	}
}

// SetDependencies records the resolution report for a job.
func (r *Registry) SetDependencies(id string, deps []resolver.Dependency) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Dependencies = deps
}

// Complete moves a job into the completed terminal state.
func (r *Registry) Complete(id, resultDocID string, outputSize int, processingTime time.Duration, degraded bool, warnings []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}

	now := time.Now()
	job.Status = StatusCompleted
	job.Progress = progressDone
	job.StatusMessage = "transformation complete"
	if degraded {
		job.StatusMessage = "transformation complete (degraded fidelity)"
	}
	job.ResultDocID = resultDocID
	job.OutputSizeBytes = outputSize
	job.ProcessingTimeMs = processingTime.Milliseconds()
	job.Degraded = degraded
	job.Warnings = warnings
	job.CompletedAt = &now
}

// Fail moves a job into the failed terminal state. Progress is left at the
// last reached checkpoint.
func (r *Registry) Fail(id, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}

	now := time.Now()
	job.Status = StatusFailed
	job.StatusMessage = "failed"
	job.ErrorMessage = errMsg
	job.CompletedAt = &now
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// snapshot copies a job, including slice fields, so callers never observe
// concurrent mutation.
func snapshot(job *Job) Job {
	out := *job
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		out.CompletedAt = &t
	}
	if len(job.Warnings) > 0 {
		out.Warnings = append([]string(nil), job.Warnings...)
	}
	if len(job.Dependencies) > 0 {
		out.Dependencies = append([]resolver.Dependency(nil), job.Dependencies...)
	}
	return out
}
