package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sofmeright/waxlint/src/config"
	"github.com/sofmeright/waxlint/src/lint"
	"github.com/sofmeright/waxlint/src/session"
)

func newTestWatcher(t *testing.T) (*watcher, *lint.Engine) {
	t.Helper()
	root := t.TempDir()
	engine, err := lint.NewEngine(config.DefaultLintConfig(), root, &lint.Pipeline{}, false)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	w := &watcher{
		root:    root,
		pending: make(map[string]session.Trigger),
		timers:  make(map[string]*time.Timer),
	}
	return w, engine
}

func TestWatcher_Wants(t *testing.T) {
	w, engine := newTestWatcher(t)

	tests := []struct {
		name string
		want bool
	}{
		{"src/App.jsx", true},
		{"index.html", true},
		{"notes.txt", false},
		{"node_modules/pkg/Button.jsx", false},
		{"dist/index.html", false},
	}
	for _, tt := range tests {
		if got := w.wants(engine, tt.name); got != tt.want {
			t.Errorf("wants(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWatcher_HandleSkipsExcludedFiles(t *testing.T) {
	w, engine := newTestWatcher(t)
	ctx := context.Background()

	w.handle(ctx, nil, engine, fsnotify.Event{
		Name: filepath.Join(w.root, "node_modules", "pkg", "Button.jsx"),
		Op:   fsnotify.Write,
	})
	w.handle(ctx, nil, engine, fsnotify.Event{
		Name: filepath.Join(w.root, "src", "App.jsx"),
		Op:   fsnotify.Write,
	})

	w.mu.Lock()
	pending := make(map[string]session.Trigger, len(w.pending))
	for k, v := range w.pending {
		pending[k] = v
	}
	w.mu.Unlock()
	w.cancel("src/App.jsx")

	if _, ok := pending["node_modules/pkg/Button.jsx"]; ok {
		t.Error("excluded file was scheduled")
	}
	if tr, ok := pending["src/App.jsx"]; !ok || tr != session.TriggerSave {
		t.Errorf("pending = %v, want src/App.jsx scheduled as save", pending)
	}
}
