package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sofmeright/waxlint/src/lint"
	"github.com/sofmeright/waxlint/src/markup"
	"github.com/sofmeright/waxlint/src/output"
	"github.com/sofmeright/waxlint/src/session"
)

const watchDebounce = 300 * time.Millisecond

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-lint files as they are created and saved",
	Long: `Watch a directory and lint markup files whenever they change, printing
the message shown for each line the way an editor would.

New files are linted as opened, writes as saved. Removed files are
dropped. Events for the same file within a short window are coalesced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "lint every file once before watching")

	rootCmd.AddCommand(watchCmd)
}

// watcher feeds filesystem events to a session controller.
type watcher struct {
	root  string
	ctl   *session.Controller
	exts  []string
	color bool

	mu      sync.Mutex
	pending map[string]session.Trigger
	timers  map[string]*time.Timer
	out     sync.Mutex
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	pipeline, err := newPipeline(root, false)
	if err != nil {
		return err
	}
	engine, err := lint.NewEngine(cfg.Lint, root, pipeline, verbose)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := addDirs(fw, root, engine); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := &watcher{
		root:    root,
		ctl:     session.NewController(pipeline),
		exts:    pipeline.Extensions,
		color:   output.UseColor(),
		pending: make(map[string]session.Trigger),
		timers:  make(map[string]*time.Timer),
	}

	if watchInitial {
		files, err := engine.CollectFiles()
		if err != nil {
			return fmt.Errorf("collecting files: %w", err)
		}
		spin := output.NewSpinner(fmt.Sprintf("linting %d files", len(files)))
		spin.Start()
		for _, f := range files {
			if ctx.Err() != nil {
				break
			}
			spin.Update("linting " + f.Path)
			w.run(ctx, f.Path, session.TriggerOpen)
		}
		spin.Stop()
	}

	fmt.Fprintf(os.Stderr, "Watching for file changes in %s...\n", root)

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			w.handle(ctx, fw, engine, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			}

		case <-ctx.Done():
			w.mu.Lock()
			for _, t := range w.timers {
				t.Stop()
			}
			w.mu.Unlock()
			return nil
		}
	}
}

func (w *watcher) handle(ctx context.Context, fw *fsnotify.Watcher, engine *lint.Engine, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addDirs(fw, event.Name, engine); err != nil && verbose {
				fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			}
			return
		}
	}

	name := w.relative(event.Name)
	if !w.wants(engine, name) {
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "watch: %s (%s)\n", name, event.Op)
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if _, err := os.Stat(event.Name); err != nil {
			w.cancel(name)
			w.ctl.Forget(name)
			return
		}
		w.schedule(ctx, name, session.TriggerSave)
	case event.Has(fsnotify.Create):
		w.schedule(ctx, name, session.TriggerOpen)
	case event.Has(fsnotify.Write):
		w.schedule(ctx, name, session.TriggerSave)
	}
}

// wants reports whether a file event should reach the controller: the file
// has a supported extension and is not excluded by the lint config.
func (w *watcher) wants(engine *lint.Engine, name string) bool {
	exts := w.exts
	if exts == nil {
		exts = markup.DefaultExtensions
	}
	return markup.SupportedBy(name, exts) && !engine.Excluded(name)
}

// schedule runs the trigger once no further events arrive for the file
// within watchDebounce. An open trigger is kept over later saves.
func (w *watcher) schedule(ctx context.Context, name string, trigger session.Trigger) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[name]; !ok || prev != session.TriggerOpen {
		w.pending[name] = trigger
	}
	if t, ok := w.timers[name]; ok {
		t.Stop()
	}
	w.timers[name] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		tr := w.pending[name]
		delete(w.pending, name)
		delete(w.timers, name)
		w.mu.Unlock()

		w.run(ctx, name, tr)
	})
}

func (w *watcher) cancel(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[name]; ok {
		t.Stop()
		delete(w.timers, name)
	}
	delete(w.pending, name)
}

func (w *watcher) run(ctx context.Context, name string, trigger session.Trigger) {
	data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(name)))
	if err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}
		return
	}

	res := w.ctl.Handle(ctx, trigger, lint.Document{Name: name, Text: string(data)})

	w.out.Lock()
	defer w.out.Unlock()

	sec := output.NewSection(os.Stdout, fmt.Sprintf("%s (%s)", name, trigger), 0, w.color)
	if res.Status != "" {
		output.RowStatus(sec, "status", res.Status, "failed", w.color)
	}
	if doc, ok := w.ctl.Document(name); ok && (res.OK() || len(res.Findings) > 0) {
		if len(doc.Entries()) == 0 && len(doc.Unanchored()) == 0 {
			output.RowStatus(sec, "no findings", "", "success", w.color)
		}
		output.SectionEntries(sec, doc, w.color)
	}
	sec.Close()
}

func (w *watcher) relative(path string) string {
	if rel, err := filepath.Rel(w.root, path); err == nil {
		path = rel
	}
	return filepath.ToSlash(path)
}

// addDirs watches dir and every non-hidden, non-excluded directory below it.
func addDirs(fw *fsnotify.Watcher, dir string, engine *lint.Engine) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if rel, rerr := filepath.Rel(engine.RootDir, path); rerr == nil && rel != "." && engine.Excluded(filepath.ToSlash(rel)+"/") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		return nil
	})
}
