package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// jobEventSubject is the subject pattern for job lifecycle events.
const jobEventSubject = "styleforge.jobs.%s.status"

// JobEvent is the wire format for job lifecycle notifications.
type JobEvent struct {
	JobID     string    `json:"job_id"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	Degraded  bool      `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits job lifecycle events over NATS. A nil connection degrades
// gracefully: publishing becomes a no-op.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher creates a job event publisher. nc may be nil.
func NewPublisher(nc *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{nc: nc, logger: logger}
}

// PublishJob emits a lifecycle event for the current job state.
// Publish failures are logged and swallowed.
func (p *Publisher) PublishJob(job Job) {
	if p == nil || p.nc == nil {
		return
	}

	event := JobEvent{
		JobID:     job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		Message:   job.StatusMessage,
		Error:     job.ErrorMessage,
		Degraded:  job.Degraded,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("Failed to marshal job event", "job_id", job.ID, "error", err)
		return
	}

	subject := fmt.Sprintf(jobEventSubject, job.ID)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn("Failed to publish job event",
			"job_id", job.ID,
			"subject", subject,
			"error", err)
	}
}
