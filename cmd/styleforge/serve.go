package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/styleforge/document"
	"github.com/c360studio/styleforge/pipeline"
)

func serveCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transformation service",
		Long: `Serve loads the spool directory into the document store, watches it
for new documents, and accepts transformation jobs over the NATS job API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath, *logLevel)
		},
	}
}

func runServe(configPath, logLevel string) error {
	logger := setupLogging(logLevel)

	cfg, err := loadConfig(configPath, logger)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs, err := document.LoadDir(app.Store, cfg.Documents.Dir, cfg.Documents.Patterns, logger)
	if err != nil {
		return err
	}

	app.Checker.Start(ctx, cfg.Documents.CheckWorkers)
	for _, doc := range docs {
		app.Checker.Schedule(ctx, doc.ID)
	}

	if cfg.Documents.Watch.Enabled {
		watcher, err := document.NewWatcher(cfg.Documents.Watch, cfg.Documents.Dir, logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
		go ingestWatchEvents(ctx, app, watcher)
	}

	var api *pipeline.Server
	if nc := app.NATS(); nc != nil {
		api = pipeline.NewServer(app.Controller, nc, logger)
		if err := api.Start(ctx); err != nil {
			return err
		}
		defer api.Stop()
	} else {
		logger.Warn("No NATS connection, job API disabled")
	}

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Prometheus, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer server.Close()
		logger.Info("Metrics listening", "addr", cfg.Metrics.Addr)
	}

	logger.Info("Styleforge ready",
		"version", Version,
		"documents", app.Store.Len(),
		"primary_engine", cfg.Engine.Primary,
		"fallback_engine", cfg.Engine.Fallback)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())

	cancel()
	app.Controller.Wait()
	return nil
}

// ingestWatchEvents stores spool changes and schedules validation checks.
func ingestWatchEvents(ctx context.Context, app *App, watcher *document.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events():
			if !ok {
				return
			}
			content, err := os.ReadFile(event.AbsPath)
			if err != nil {
				app.Logger.Warn("Failed to read spool file", "path", event.Path, "error", err)
				continue
			}
			doc := app.Store.Put(event.Path, document.KindForName(event.Path), content)
			app.Checker.Schedule(ctx, doc.ID)
			app.Logger.Info("Spool document ingested",
				"name", doc.Name,
				"kind", doc.Kind,
				"bytes", len(content))
		}
	}
}
