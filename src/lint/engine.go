package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sofmeright/waxlint/src/config"
	"github.com/sofmeright/waxlint/src/markup"
	"golang.org/x/sync/semaphore"
)

const defaultConcurrency = 4

// Engine runs the pipeline across files.
type Engine struct {
	Config   config.LintConfig
	RootDir  string
	Pipeline *Pipeline
	Verbose  bool
}

// NewEngine creates a lint engine for rootDir.
func NewEngine(cfg config.LintConfig, rootDir string, p *Pipeline, verbose bool) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("no pipeline configured")
	}
	if len(cfg.Extensions) > 0 && p.Extensions == nil {
		p.Extensions = cfg.Extensions
	}
	return &Engine{
		Config:   cfg,
		RootDir:  rootDir,
		Pipeline: p,
		Verbose:  verbose,
	}, nil
}

// Stats holds scan statistics.
type Stats struct {
	Files      int
	Cached     int
	Failed     int
	Blocked    int
	Findings   int
	Critical   int
	Warnings   int
	Unanchored int
}

// Add tallies one result.
func (s *Stats) Add(r Result) {
	if r.Skipped() {
		return
	}
	s.Files++
	if r.Cached {
		s.Cached++
	}
	var serr *SecretsError
	var rerr *RequestError
	switch {
	case r.Err == nil:
	case errors.As(r.Err, &serr):
		s.Blocked++
	case errors.As(r.Err, &rerr):
		s.Failed++
	}
	for _, f := range r.Findings {
		s.Findings++
		switch f.Level() {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warnings++
		}
		if !f.Anchored() {
			s.Unanchored++
		}
	}
}

// Run executes the pipeline for every file and returns one result per file,
// in input order. Unreadable files are reported as errors; per-file lint
// failures are carried in their Result.
func (e *Engine) Run(ctx context.Context, files []FileInfo) ([]Result, Stats, error) {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		errs  []error
		stats Stats
	)

	results := make([]Result, len(files))

	limit := e.Config.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	sem := semaphore.NewWeighted(int64(limit))

	for i, file := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(idx int, f FileInfo) {
			defer wg.Done()
			defer sem.Release(1)

			data, err := os.ReadFile(f.AbsPath)
			if err != nil {
				mu.Lock()
				results[idx] = Result{File: f.Path, Err: err, Status: err.Error()}
				errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
				mu.Unlock()
				return
			}

			res := e.Pipeline.Run(ctx, Document{Name: f.Path, Text: string(data)})
			if e.Verbose {
				for _, w := range res.Warnings {
					fmt.Fprintf(os.Stderr, "%s: %s\n", f.Path, w)
				}
			}

			mu.Lock()
			results[idx] = res
			stats.Add(res)
			mu.Unlock()
		}(i, file)
	}

	wg.Wait()

	// Drop slots never started after cancellation.
	done := results[:0]
	for _, r := range results {
		if r.File != "" {
			done = append(done, r)
		}
	}
	results = done

	if len(errs) > 0 {
		return results, stats, fmt.Errorf("%d file errors (first: %w)", len(errs), errs[0])
	}
	return results, stats, nil
}

// Findings flattens the findings of all results.
func Findings(results []Result) []Finding {
	var out []Finding
	for _, r := range results {
		out = append(out, r.Findings...)
	}
	return out
}

// CollectFiles walks the root directory and returns FileInfo for all regular
// files with a supported extension.
func (e *Engine) CollectFiles() ([]FileInfo, error) {
	var files []FileInfo

	exts := e.Pipeline.Extensions
	if exts == nil {
		exts = markup.DefaultExtensions
	}

	err := filepath.WalkDir(e.RootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(e.RootDir, path)
		if err != nil {
			return err
		}

		// Skip hidden directories and .git
		if d.IsDir() {
			base := filepath.Base(rel)
			if strings.HasPrefix(base, ".") && base != "." {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if e.isExcluded(rel) || !markup.SupportedBy(rel, exts) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:    filepath.ToSlash(rel),
			AbsPath: path,
			Size:    info.Size(),
		})
		return nil
	})

	return files, err
}

// normalizeSlashPath converts a path to forward slashes and strips leading "./".
func normalizeSlashPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return p
}

// matchExcludePattern matches a single exclude pattern against a normalized path.
// Patterns containing "/" or "**" match against the full path; others match base name only.
func matchExcludePattern(pattern, normPath, baseName string) bool {
	pattern = filepath.ToSlash(pattern)
	if strings.Contains(pattern, "/") || strings.Contains(pattern, "**") {
		return matchGlob(pattern, normPath)
	}
	return matchGlob(pattern, baseName)
}

// Excluded reports whether a path relative to the root matches lint.exclude.
func (e *Engine) Excluded(path string) bool {
	return e.isExcluded(path)
}

func (e *Engine) isExcluded(path string) bool {
	if len(e.Config.Exclude) == 0 {
		return false
	}
	normPath := normalizeSlashPath(path)
	baseName := filepath.Base(normPath)
	for _, pattern := range e.Config.Exclude {
		if matchExcludePattern(pattern, normPath, baseName) {
			return true
		}
	}
	return false
}
