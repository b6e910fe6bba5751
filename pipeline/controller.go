package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/styleforge/document"
	"github.com/c360studio/styleforge/executor"
	"github.com/c360studio/styleforge/resolver"
	"github.com/c360studio/styleforge/schema"
)

// DefaultValidationTimeout bounds the schema compliance check per job.
const DefaultValidationTimeout = 10 * time.Second

// Controller owns the job lifecycle. It exclusively performs state
// transitions through the registry; every job runs as an independent
// goroutine and Submit returns before the pipeline completes.
type Controller struct {
	store    *document.Store
	registry *Registry
	executor *executor.Executor

	validator schema.Validator
	resolver  *resolver.Resolver
	logger    *slog.Logger
	metrics   *Metrics
	events    *Publisher

	validationTimeout time.Duration
	executionTimeout  time.Duration
	sem               chan struct{}
	wg                sync.WaitGroup
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithValidator sets the schema validator collaborator.
func WithValidator(v schema.Validator) ControllerOption {
	return func(c *Controller) {
		c.validator = v
	}
}

// WithResolver sets the dependency resolver.
func WithResolver(r *resolver.Resolver) ControllerOption {
	return func(c *Controller) {
		c.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithEvents sets the job event publisher.
func WithEvents(p *Publisher) ControllerOption {
	return func(c *Controller) {
		c.events = p
	}
}

// WithValidationTimeout overrides the schema check timeout.
func WithValidationTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.validationTimeout = d
		}
	}
}

// WithExecutionTimeout bounds the transformation execution per job.
// Zero leaves execution unbounded.
func WithExecutionTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.executionTimeout = d
	}
}

// WithMaxConcurrent caps the number of jobs running at once. Zero leaves
// admission unbounded; queued jobs above the cap wait for a slot.
func WithMaxConcurrent(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

// NewController creates a job controller over the given collaborators.
func NewController(store *document.Store, registry *Registry, exec *executor.Executor, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:             store,
		registry:          registry,
		executor:          exec,
		resolver:          resolver.New(),
		logger:            slog.Default(),
		validationTimeout: DefaultValidationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit accepts a transformation request and returns the job ID
// immediately; the pipeline runs asynchronously.
func (c *Controller) Submit(ctx context.Context, req Request) (string, error) {
	if _, err := c.store.Get(req.SourceDocID); err != nil {
		return "", fmt.Errorf("source document: %w", err)
	}
	if _, err := c.store.Get(req.StylesheetDocID); err != nil {
		return "", fmt.Errorf("stylesheet document: %w", err)
	}
	if req.ValidateSchema {
		if req.SchemaDocID == "" {
			return "", fmt.Errorf("schema validation requested without a schema document")
		}
		if _, err := c.store.Get(req.SchemaDocID); err != nil {
			return "", fmt.Errorf("schema document: %w", err)
		}
	}

	job := c.registry.Create(req)
	if c.metrics != nil {
		c.metrics.JobsSubmitted.Inc()
	}
	c.publish(job.ID)
	c.logger.Info("Job submitted",
		"job_id", job.ID,
		"source", req.SourceDocID,
		"stylesheet", req.StylesheetDocID,
		"validate_schema", req.ValidateSchema,
		"resolve_dependencies", req.ResolveDependencies)

	c.wg.Add(1)
	go c.run(context.WithoutCancel(ctx), job.ID)

	return job.ID, nil
}

// Get returns a snapshot of the job.
func (c *Controller) Get(id string) (Job, error) {
	return c.registry.Get(id)
}

// List returns snapshots of all jobs.
func (c *Controller) List() []Job {
	return c.registry.List()
}

// Wait blocks until all in-flight jobs reach a terminal state.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// run drives one job through the pipeline stages sequentially:
// schema validation, dependency resolution, execution, finalization.
func (c *Controller) run(ctx context.Context, jobID string) {
	defer c.wg.Done()

	if c.sem != nil {
		c.sem <- struct{}{}
		defer func() { <-c.sem }()
	}

	logger := c.logger.With("job_id", jobID)

	job, err := c.registry.Get(jobID)
	if err != nil {
		logger.Error("Job vanished before processing", "error", err)
		return
	}
	req := job.Request

	source, err := c.store.Get(req.SourceDocID)
	if err != nil {
		c.fail(jobID, logger, fmt.Sprintf("source document: %s", err))
		return
	}
	stylesheet, err := c.store.Get(req.StylesheetDocID)
	if err != nil {
		c.fail(jobID, logger, fmt.Sprintf("stylesheet document: %s", err))
		return
	}

	c.registry.SetProcessing(jobID)
	c.registry.SetProgress(jobID, progressStarted, "starting transformation pipeline")
	c.publish(jobID)

	if req.ValidateSchema {
		if ok := c.validateSchema(ctx, jobID, logger, source, req.SchemaDocID); !ok {
			return
		}
	}

	resolvedText := ""
	if req.ResolveDependencies {
		text, ok := c.resolveDependencies(jobID, logger, stylesheet)
		if !ok {
			return
		}
		resolvedText = text
	}

	c.registry.SetProgress(jobID, progressExecuting, "executing transformation")
	c.publish(jobID)

	execCtx := ctx
	if c.executionTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, c.executionTimeout)
		defer cancel()
	}

	var buf bytes.Buffer
	result := c.executor.Execute(execCtx, executor.Input{
		Source:       source,
		Stylesheet:   stylesheet,
		ResolvedText: resolvedText,
	}, &buf)

	if !result.Success {
		c.fail(jobID, logger, strings.Join(result.Errors, "; "))
		return
	}

	c.registry.SetProgress(jobID, progressFinalizing, "storing result")

	resultDoc := c.store.Put(outputName(source.Name), document.KindOutput, buf.Bytes())
	c.registry.Complete(jobID, resultDoc.ID, result.OutputSize, result.ProcessingTime, result.Degraded, result.Warnings)

	if c.metrics != nil {
		c.metrics.JobsCompleted.Inc()
		c.metrics.JobDuration.Observe(result.ProcessingTime.Seconds())
		if result.Degraded {
			c.metrics.FallbackSuccesses.Inc()
		}
	}
	c.publish(jobID)
	logger.Info("Job completed",
		"engine", result.Engine,
		"degraded", result.Degraded,
		"output_bytes", result.OutputSize,
		"duration", result.ProcessingTime)
}

// validateSchema runs the compliance check wrapped in the validation
// timeout. Returns false when the job has been failed.
func (c *Controller) validateSchema(ctx context.Context, jobID string, logger *slog.Logger, source *document.Document, schemaDocID string) bool {
	c.registry.SetProgress(jobID, progressValidating, "validating source against schema")
	c.publish(jobID)

	if c.validator == nil {
		c.fail(jobID, logger, "schema validation requested but no validator is configured")
		return false
	}

	schemaDoc, err := c.store.Get(schemaDocID)
	if err != nil {
		c.fail(jobID, logger, fmt.Sprintf("schema document: %s", err))
		return false
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.validationTimeout)
	defer cancel()

	type outcome struct {
		result *schema.Result
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := c.validator.Check(checkCtx, source.Content, schemaDoc.Content)
		ch <- outcome{result, err}
	}()

	var o outcome
	select {
	case o = <-ch:
	case <-checkCtx.Done():
		msg := fmt.Sprintf("schema validation timed out after %s", c.validationTimeout)
		_ = c.store.SetValidation(source.ID, document.ValidationInvalid, msg)
		c.fail(jobID, logger, msg)
		return false
	}

	if o.err != nil {
		c.fail(jobID, logger, fmt.Sprintf("schema validation failed: %s", o.err))
		return false
	}
	if !o.result.Valid {
		msg := "schema compliance failure: " + strings.Join(o.result.Errors, "; ")
		_ = c.store.SetValidation(source.ID, document.ValidationInvalid, msg)
		c.fail(jobID, logger, msg)
		return false
	}

	_ = c.store.SetValidation(source.ID, document.ValidationValid, "")
	return true
}

// resolveDependencies runs the resolution pass. Returns false when the job
// has been failed by missing dependencies.
func (c *Controller) resolveDependencies(jobID string, logger *slog.Logger, stylesheet *document.Document) (string, bool) {
	c.registry.SetProgress(jobID, progressResolving, "resolving stylesheet dependencies")
	c.publish(jobID)

	pool := make([]*document.Document, 0, 4)
	for _, doc := range c.store.ListByKind(document.KindStylesheet) {
		if doc.ID != stylesheet.ID {
			pool = append(pool, doc)
		}
	}

	text, deps := c.resolver.Resolve(stylesheet, pool)
	c.registry.SetDependencies(jobID, deps)

	if msg := resolver.MissingError(deps); msg != "" {
		c.fail(jobID, logger, msg)
		return "", false
	}
	return text, true
}

func (c *Controller) fail(jobID string, logger *slog.Logger, msg string) {
	c.registry.Fail(jobID, msg)
	if c.metrics != nil {
		c.metrics.JobsFailed.Inc()
	}
	c.publish(jobID)
	logger.Warn("Job failed", "error", msg)
}

func (c *Controller) publish(jobID string) {
	if c.events == nil {
		return
	}
	if job, err := c.registry.Get(jobID); err == nil {
		c.events.PublishJob(job)
	}
}

// outputName derives the result document name from the source name.
func outputName(sourceName string) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	if base == "" {
		base = "output"
	}
	return base + ".out.xml"
}
