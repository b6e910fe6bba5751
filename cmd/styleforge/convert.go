package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/styleforge/document"
	"github.com/c360studio/styleforge/pipeline"
)

// pollInterval is how often convert checks for job completion.
const pollInterval = 50 * time.Millisecond

func convertCmd(configPath, logLevel *string) *cobra.Command {
	var (
		sourcePath     string
		stylesheetPath string
		schemaPath     string
		outPath        string
		resolveDeps    bool
		showJob        bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Run one transformation and wait for the result",
		Long: `Convert submits a single job against the configured spool directory and
blocks until it reaches a terminal state. Stylesheets in the spool directory
form the candidate pool for dependency resolution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(convertOpts{
				configPath:     *configPath,
				logLevel:       *logLevel,
				sourcePath:     sourcePath,
				stylesheetPath: stylesheetPath,
				schemaPath:     schemaPath,
				outPath:        outPath,
				resolveDeps:    resolveDeps,
				showJob:        showJob,
			})
		},
	}

	cmd.Flags().StringVarP(&sourcePath, "source", "s", "", "Source XML file (required)")
	cmd.Flags().StringVarP(&stylesheetPath, "stylesheet", "x", "", "XSLT stylesheet file (required)")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "XSD schema file (enables schema validation)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&resolveDeps, "resolve-deps", true, "Resolve stylesheet include/import dependencies")
	cmd.Flags().BoolVar(&showJob, "show-job", false, "Print the final job view as JSON on stderr")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("stylesheet")

	return cmd
}

type convertOpts struct {
	configPath     string
	logLevel       string
	sourcePath     string
	stylesheetPath string
	schemaPath     string
	outPath        string
	resolveDeps    bool
	showJob        bool
}

func runConvert(opts convertOpts) error {
	logger := setupLogging(opts.logLevel)

	cfg, err := loadConfig(opts.configPath, logger)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	// Spool stylesheets form the dependency candidate pool.
	if _, err := os.Stat(cfg.Documents.Dir); err == nil {
		if _, err := document.LoadDir(app.Store, cfg.Documents.Dir, cfg.Documents.Patterns, logger); err != nil {
			return err
		}
	}

	source, err := ingestFile(app.Store, opts.sourcePath)
	if err != nil {
		return err
	}
	stylesheet, err := ingestFile(app.Store, opts.stylesheetPath)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		SourceDocID:         source.ID,
		StylesheetDocID:     stylesheet.ID,
		ResolveDependencies: opts.resolveDeps,
	}
	if opts.schemaPath != "" {
		schemaDoc, err := ingestFile(app.Store, opts.schemaPath)
		if err != nil {
			return err
		}
		req.SchemaDocID = schemaDoc.ID
		req.ValidateSchema = true
	}

	jobID, err := app.Controller.Submit(ctx, req)
	if err != nil {
		return err
	}

	job, err := waitForJob(app.Controller, jobID)
	if err != nil {
		return err
	}

	if opts.showJob {
		view, _ := json.MarshalIndent(job, "", "  ")
		fmt.Fprintln(os.Stderr, string(view))
	}

	if job.Status == pipeline.StatusFailed {
		return fmt.Errorf("job failed: %s", job.ErrorMessage)
	}

	result, err := app.Store.Get(job.ResultDocID)
	if err != nil {
		return fmt.Errorf("result document: %w", err)
	}

	if job.Degraded {
		logger.Warn("Result produced via fallback path, fidelity is degraded")
	}

	if opts.outPath == "" {
		_, err = os.Stdout.Write(result.Content)
		return err
	}
	return os.WriteFile(opts.outPath, result.Content, 0644)
}

func ingestFile(store *document.Store, path string) (*document.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return store.Put(name, document.KindForName(name), content), nil
}

func waitForJob(controller *pipeline.Controller, jobID string) (pipeline.Job, error) {
	for {
		job, err := controller.Get(jobID)
		if err != nil {
			return pipeline.Job{}, err
		}
		if job.Status.Terminal() {
			return job, nil
		}
		time.Sleep(pollInterval)
	}
}
