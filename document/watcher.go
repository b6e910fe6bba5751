package document

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 256
)

// WatchConfig configures spool directory watching.
type WatchConfig struct {
	// Enabled controls whether file watching is active.
	Enabled bool `yaml:"enabled"`

	// DebounceDelay is how long to wait for more changes before processing.
	DebounceDelay string `yaml:"debounce_delay"`

	// FileExtensions lists file extensions to ingest.
	FileExtensions []string `yaml:"file_extensions"`
}

// DefaultWatchConfig returns default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Enabled:        false,
		DebounceDelay:  "500ms",
		FileExtensions: []string{".xml", ".xsl", ".xslt", ".xsd"},
	}
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *WatchConfig) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// WatchEvent represents a spool file change.
type WatchEvent struct {
	// Path is the file path relative to the spool directory.
	Path string

	// AbsPath is the absolute file path.
	AbsPath string
}

// Watcher watches a spool directory and emits ingestion events for new or
// modified documents. Deletions are ignored; the store keeps the last
// ingested copy.
type Watcher struct {
	config   WatchConfig
	spoolDir string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	extensions map[string]bool

	// Debouncing: collect changes before processing.
	pendingMu sync.Mutex
	pending   map[string]struct{}

	events chan WatchEvent
}

// NewWatcher creates a spool directory watcher.
func NewWatcher(config WatchConfig, spoolDir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	extensions := make(map[string]bool)
	for _, ext := range config.FileExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}

	return &Watcher{
		config:     config,
		spoolDir:   spoolDir,
		watcher:    fsw,
		logger:     logger,
		extensions: extensions,
		pending:    make(map[string]struct{}),
		events:     make(chan WatchEvent, eventChannelBuffer),
	}, nil
}

// Events returns the channel of watch events.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start begins watching the spool directory.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.spoolDir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.spoolDir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Spool watcher started",
		"spool_dir", w.spoolDir,
		"debounce", w.config.GetDebounceDelay(),
		"extensions", w.config.FileExtensions)
	return nil
}

// Stop stops the watcher.
// The events channel is closed by processEvents when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.config.GetDebounceDelay())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = struct{}{}
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	for abs := range batch {
		rel, err := filepath.Rel(w.spoolDir, abs)
		if err != nil {
			rel = filepath.Base(abs)
		}
		select {
		case w.events <- WatchEvent{Path: rel, AbsPath: abs}:
		case <-ctx.Done():
			return
		default:
			w.logger.Warn("Watch event dropped, channel full", "path", rel)
		}
	}
}
