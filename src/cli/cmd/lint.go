package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/waxlint/src/config"
	"github.com/sofmeright/waxlint/src/lint"
	"github.com/sofmeright/waxlint/src/output"
)

var (
	lintLevel   string
	lintNoCache bool
	lintAll     bool
	lintReports string
)

var lintCmd = &cobra.Command{
	Use:   "lint [dir | files...]",
	Short: "Lint the markup in source files",
	Long: `Lint the markup embedded in source files with the WAX lint service.

With no arguments, or a single directory, files are collected from that
directory. By default only files changed against the target branch are
linted (--level changed). Use --level full or --all to lint everything.
Files given explicitly are always linted.

Results are cached by a hash of the extracted markup.`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintLevel, "level", "", "scan level: changed or full (default: from config, then changed)")
	lintCmd.Flags().BoolVar(&lintNoCache, "no-cache", false, "disable cache (clear and rescan)")
	lintCmd.Flags().BoolVar(&lintAll, "all", false, "scan all files (shorthand for --level full)")
	lintCmd.Flags().StringVar(&lintReports, "reports", ".waxlint/reports", "directory for the JUnit report written in CI")

	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	if lintAll {
		lintLevel = string(config.LevelFull)
	}
	// CLI flag > config > default "changed"
	if lintLevel == "" && cfg.Lint.Level != "" {
		lintLevel = string(cfg.Lint.Level)
	}
	if lintLevel == "" {
		lintLevel = string(config.LevelChanged)
	}

	rootDir, explicit, err := lintTargets(args)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(rootDir, lintNoCache)
	if err != nil {
		return err
	}
	if lintNoCache {
		if err := pipeline.Cache.Clear(); err != nil && verbose {
			fmt.Fprintf(os.Stderr, "cache: clear failed: %v\n", err)
		}
	} else {
		lint.EnsureGitignore(rootDir)
	}

	engine, err := lint.NewEngine(cfg.Lint, rootDir, pipeline, verbose)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	files := explicit
	if files == nil {
		files, err = engine.CollectFiles()
		if err != nil {
			return fmt.Errorf("collecting files: %w", err)
		}

		// Delta filtering: only lint changed files unless --level full
		if lintLevel != string(config.LevelFull) {
			delta := &lint.Delta{RootDir: rootDir, TargetBranch: cfg.Lint.TargetBranch, Verbose: verbose}
			changed, derr := delta.ChangedFiles(ctx)
			if derr != nil && verbose {
				fmt.Fprintf(os.Stderr, "delta: %v, falling back to full scan\n", derr)
			}
			if changed != nil {
				all := len(files)
				files = lint.FilterByDelta(files, changed)
				if verbose {
					fmt.Fprintf(os.Stderr, "delta: %d/%d files changed\n", len(files), all)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "linting %d files against %s\n", len(files), cfg.API.Endpoint)
	}

	w := os.Stdout
	color := output.UseColor()

	spin := output.NewSpinner(fmt.Sprintf("linting %d files", len(files)))
	spin.Start()
	start := time.Now()
	results, stats, runErr := engine.Run(ctx, files)
	elapsed := time.Since(start)
	spin.Stop()

	if output.IsCI() {
		if jErr := output.WriteLintJUnit(lintReports, results, elapsed); jErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write junit report: %v\n", jErr)
		}
	}

	// ── Lint section ──
	output.SectionStart(w, "waxlint_lint", "Lint")
	sec := output.NewSection(w, "Lint", elapsed, color)
	output.LintTable(w, stats)
	if stats.Failed > 0 || stats.Blocked > 0 {
		sec.Separator()
		output.SectionStatuses(sec, results, color)
	}
	sec.Close()
	output.SectionEnd(w, "waxlint_lint")

	// ── Findings section (only when findings > 0) ──
	if findings := lint.Findings(results); len(findings) > 0 {
		output.SectionStart(w, "waxlint_findings", "Findings")
		fSec := output.NewSection(w, "Findings", 0, color)
		output.SectionFindings(fSec, findings, color)
		fSec.Separator()
		fSec.Row("%s", output.FindingsSummaryLine(stats, color))
		fSec.Close()
		output.SectionEnd(w, "waxlint_findings")
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", runErr)
	}

	if stats.Critical > 0 {
		return fmt.Errorf("lint failed: %d critical findings", stats.Critical)
	}
	return nil
}

// lintTargets resolves the lint root and, when files are named explicitly,
// the files to lint. explicit is nil when files should be collected.
func lintTargets(args []string) (rootDir string, explicit []lint.FileInfo, err error) {
	rootDir, err = os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) == 0 {
		return rootDir, nil, nil
	}
	if len(args) == 1 {
		if info, serr := os.Stat(args[0]); serr == nil && info.IsDir() {
			return args[0], nil, nil
		}
	}

	explicit = make([]lint.FileInfo, 0, len(args))
	for _, arg := range args {
		info, serr := os.Stat(arg)
		if serr != nil {
			return "", nil, serr
		}
		if info.IsDir() {
			return "", nil, fmt.Errorf("%s: pass a single directory or a list of files", arg)
		}
		abs, aerr := filepath.Abs(arg)
		if aerr != nil {
			return "", nil, aerr
		}
		explicit = append(explicit, lint.FileInfo{Path: filepath.ToSlash(arg), AbsPath: abs, Size: info.Size()})
	}
	return rootDir, explicit, nil
}
