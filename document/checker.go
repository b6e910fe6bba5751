package document

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a single validation check.
const DefaultCheckTimeout = 10 * time.Second

// CheckFunc validates a document's content. A nil return marks the document
// valid; an error marks it invalid with the error text.
type CheckFunc func(ctx context.Context, doc *Document) error

// Checker runs document validation checks on a bounded worker pool, decoupled
// from the caller that ingested the document. Each check is wrapped with a
// fixed timeout; a timed-out check marks the document invalid rather than
// hanging the pipeline.
type Checker struct {
	store   *Store
	check   CheckFunc
	timeout time.Duration
	logger  *slog.Logger

	queue chan string
	wg    sync.WaitGroup
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithCheckTimeout overrides the per-check timeout.
func WithCheckTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCheckerLogger sets the logger.
func WithCheckerLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a checker backed by the given store and check function.
func NewChecker(store *Store, check CheckFunc, opts ...CheckerOption) *Checker {
	c := &Checker{
		store:   store,
		check:   check,
		timeout: DefaultCheckTimeout,
		logger:  slog.Default(),
		queue:   make(chan string, 128),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the worker pool. Workers exit when ctx is cancelled.
func (c *Checker) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx)
	}
}

// Wait blocks until all workers have exited.
func (c *Checker) Wait() {
	c.wg.Wait()
}

// Schedule queues a document for validation. Non-blocking; if the queue is
// full the check runs inline on the caller's goroutine.
func (c *Checker) Schedule(ctx context.Context, id string) {
	select {
	case c.queue <- id:
	default:
		c.run(ctx, id)
	}
}

func (c *Checker) worker(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-c.queue:
			c.run(ctx, id)
		}
	}
}

func (c *Checker) run(ctx context.Context, id string) {
	doc, err := c.store.Get(id)
	if err != nil {
		c.logger.Warn("Validation skipped, document missing", "document_id", id)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.check(checkCtx, doc)
	}()

	select {
	case err = <-done:
	case <-checkCtx.Done():
		err = fmt.Errorf("validation timed out after %s", c.timeout)
	}

	if err != nil {
		_ = c.store.SetValidation(id, ValidationInvalid, err.Error())
		c.logger.Warn("Document validation failed",
			"document_id", id,
			"name", doc.Name,
			"error", err)
		return
	}

	_ = c.store.SetValidation(id, ValidationValid, "")
	c.logger.Debug("Document validated", "document_id", id, "name", doc.Name)
}
