package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATS subjects for the job API.
const (
	// SubmitSubject accepts job submission requests (request/reply).
	SubmitSubject = "styleforge.jobs.submit"
	// GetSubject answers job view lookups (request/reply).
	GetSubject = "styleforge.jobs.get"
)

// SubmitReply is the response to a submission request.
type SubmitReply struct {
	JobID string `json:"job_id,omitempty"`
	Error string `json:"error,omitempty"`
}

// GetRequest is a job view lookup.
type GetRequest struct {
	JobID string `json:"job_id"`
}

// GetReply is the response to a job view lookup.
type GetReply struct {
	Job   *Job   `json:"job,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server exposes the controller over NATS request/reply. It is the service's
// message-bus ingress; HTTP presentation stays out of this repository.
type Server struct {
	controller *Controller
	nc         *nats.Conn
	logger     *slog.Logger

	subs []*nats.Subscription
}

// NewServer creates a NATS job API server.
func NewServer(controller *Controller, nc *nats.Conn, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{controller: controller, nc: nc, logger: logger}
}

// Start subscribes to the job API subjects.
func (s *Server) Start(ctx context.Context) error {
	submitSub, err := s.nc.Subscribe(SubmitSubject, func(msg *nats.Msg) {
		s.handleSubmit(ctx, msg)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, submitSub)

	getSub, err := s.nc.Subscribe(GetSubject, func(msg *nats.Msg) {
		s.handleGet(msg)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, getSub)

	s.logger.Info("Job API listening",
		"submit_subject", SubmitSubject,
		"get_subject", GetSubject)
	return nil
}

// Stop drains the API subscriptions.
func (s *Server) Stop() {
	for _, sub := range s.subs {
		_ = sub.Drain()
	}
	s.subs = nil
}

func (s *Server) handleSubmit(ctx context.Context, msg *nats.Msg) {
	var req Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.reply(msg, SubmitReply{Error: "malformed request: " + err.Error()})
		return
	}

	jobID, err := s.controller.Submit(ctx, req)
	if err != nil {
		s.reply(msg, SubmitReply{Error: err.Error()})
		return
	}
	s.reply(msg, SubmitReply{JobID: jobID})
}

func (s *Server) handleGet(msg *nats.Msg) {
	var req GetRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.reply(msg, GetReply{Error: "malformed request: " + err.Error()})
		return
	}

	job, err := s.controller.Get(req.JobID)
	if err != nil {
		s.reply(msg, GetReply{Error: err.Error()})
		return
	}
	s.reply(msg, GetReply{Job: &job})
}

func (s *Server) reply(msg *nats.Msg, payload any) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal API reply", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("Failed to respond on job API", "error", err)
	}
}
