package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultWatchConfig(t *testing.T) {
	config := DefaultWatchConfig()

	if config.Enabled {
		t.Error("default config should have watching disabled")
	}
	if config.DebounceDelay != "500ms" {
		t.Errorf("unexpected default debounce delay: %s", config.DebounceDelay)
	}
	if len(config.FileExtensions) != 4 {
		t.Errorf("expected 4 default extensions, got %d", len(config.FileExtensions))
	}
}

func TestWatchConfig_GetDebounceDelay(t *testing.T) {
	tests := []struct {
		name   string
		delay  string
		expect time.Duration
	}{
		{
			name:   "valid duration",
			delay:  "100ms",
			expect: 100 * time.Millisecond,
		},
		{
			name:   "empty string uses default",
			delay:  "",
			expect: 500 * time.Millisecond,
		},
		{
			name:   "invalid duration uses default",
			delay:  "invalid",
			expect: 500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := WatchConfig{DebounceDelay: tt.delay}
			got := config.GetDebounceDelay()
			if got != tt.expect {
				t.Errorf("GetDebounceDelay() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestNewWatcher_ExtensionNormalization(t *testing.T) {
	config := WatchConfig{
		Enabled:        true,
		FileExtensions: []string{".xsl", "xml"},
	}

	watcher, err := NewWatcher(config, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if !watcher.extensions[".xsl"] {
		t.Error("expected .xsl extension to be watched")
	}
	if !watcher.extensions[".xml"] {
		t.Error("expected bare xml extension to be normalized and watched")
	}
}

func TestWatcher_FileCreation(t *testing.T) {
	tmpDir := t.TempDir()

	config := WatchConfig{
		Enabled:        true,
		DebounceDelay:  "50ms",
		FileExtensions: []string{".xsl"},
	}

	watcher, err := NewWatcher(config, tmpDir, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	// Give watcher time to set up
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tmpDir, "report.xsl")
	if err := os.WriteFile(testFile, []byte("<xsl:stylesheet/>"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	select {
	case event := <-watcher.Events():
		if event.Path != "report.xsl" {
			t.Errorf("expected path report.xsl, got %s", event.Path)
		}
		if event.AbsPath != testFile {
			t.Errorf("expected abs path %s, got %s", testFile, event.AbsPath)
		}
	case <-time.After(1 * time.Second):
		t.Error("timeout waiting for create event")
	}
}

func TestWatcher_IgnoresNonWatchedExtensions(t *testing.T) {
	tmpDir := t.TempDir()

	config := WatchConfig{
		Enabled:        true,
		DebounceDelay:  "50ms",
		FileExtensions: []string{".xsl"},
	}

	watcher, err := NewWatcher(config, tmpDir, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	// Give watcher time to set up
	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(testFile, []byte("not a stylesheet"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	select {
	case event := <-watcher.Events():
		t.Errorf("unexpected event for non-watched extension: %+v", event)
	case <-time.After(300 * time.Millisecond):
		// Expected - no event for non-watched extension
	}
}

func TestWatcher_DebouncesRepeatedWrites(t *testing.T) {
	tmpDir := t.TempDir()

	config := WatchConfig{
		Enabled:        true,
		DebounceDelay:  "100ms",
		FileExtensions: []string{".xml"},
	}

	watcher, err := NewWatcher(config, tmpDir, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	// Give watcher time to set up
	time.Sleep(100 * time.Millisecond)

	// Several writes within one debounce window collapse into one event.
	testFile := filepath.Join(tmpDir, "data.xml")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(testFile, []byte("<data/>"), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
	}

	select {
	case event := <-watcher.Events():
		if event.Path != "data.xml" {
			t.Errorf("expected path data.xml, got %s", event.Path)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case event := <-watcher.Events():
		t.Errorf("expected writes to be debounced, got second event: %+v", event)
	case <-time.After(300 * time.Millisecond):
		// Expected - batched into a single event
	}
}
