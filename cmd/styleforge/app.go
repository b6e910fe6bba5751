package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360studio/styleforge/config"
	"github.com/c360studio/styleforge/document"
	"github.com/c360studio/styleforge/engine"
	"github.com/c360studio/styleforge/executor"
	"github.com/c360studio/styleforge/pipeline"
	"github.com/c360studio/styleforge/resolver"
	"github.com/c360studio/styleforge/schema"
)

// App wires the document store, engines, and job controller from config.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *document.Store
	Checker    *document.Checker
	Controller *pipeline.Controller
	Jobs       *pipeline.Registry
	Prometheus *prometheus.Registry

	nc *nats.Conn
}

// NewApp builds the application from configuration.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	primary := engine.Get(cfg.Engine.Primary)
	if primary == nil {
		return nil, fmt.Errorf("unknown primary engine %q (registered: %s)",
			cfg.Engine.Primary, strings.Join(engine.List(), ", "))
	}
	var fallback engine.Engine
	if cfg.Engine.Fallback != "" {
		fallback = engine.Get(cfg.Engine.Fallback)
		if fallback == nil {
			return nil, fmt.Errorf("unknown fallback engine %q (registered: %s)",
				cfg.Engine.Fallback, strings.Join(engine.List(), ", "))
		}
	}

	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name("styleforge"))
		if err != nil {
			// Event publishing is optional observability; run without it.
			logger.Warn("NATS unavailable, job events disabled", "url", cfg.NATS.URL, "error", err)
			nc = nil
		}
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	metrics := pipeline.NewMetrics(promReg)

	store := document.NewStore()
	jobs := pipeline.NewRegistry()
	exec := executor.New(primary, fallback, executor.WithLogger(logger))

	controller := pipeline.NewController(store, jobs, exec,
		pipeline.WithValidator(schema.NewXSDValidator()),
		pipeline.WithResolver(resolver.New(resolver.WithLogger(logger))),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithEvents(pipeline.NewPublisher(nc, logger)),
		pipeline.WithValidationTimeout(cfg.Pipeline.ValidationTimeout),
		pipeline.WithExecutionTimeout(cfg.Pipeline.ExecutionTimeout),
		pipeline.WithMaxConcurrent(cfg.Pipeline.MaxConcurrent),
	)

	checker := document.NewChecker(store,
		func(ctx context.Context, doc *document.Document) error {
			return primary.LoadDocument(doc.Content)
		},
		document.WithCheckTimeout(cfg.Documents.CheckTimeout),
		document.WithCheckerLogger(logger),
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Checker:    checker,
		Controller: controller,
		Jobs:       jobs,
		Prometheus: promReg,
		nc:         nc,
	}, nil
}

// NATS returns the NATS connection, or nil when events are disabled.
func (a *App) NATS() *nats.Conn {
	return a.nc
}

// Close releases the application's connections.
func (a *App) Close() {
	if a.nc != nil {
		a.nc.Close()
	}
}
