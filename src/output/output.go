package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/sofmeright/waxlint/src/lint"
	"github.com/sofmeright/waxlint/src/session"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// FindingsSummaryLine returns a one-line findings summary, optionally colored.
func FindingsSummaryLine(stats lint.Stats, color bool) string {
	parts := []string{}
	if stats.Critical > 0 {
		s := fmt.Sprintf("%d critical", stats.Critical)
		if color {
			s = colorRed + s + colorReset
		}
		parts = append(parts, s)
	}
	if stats.Warnings > 0 {
		s := fmt.Sprintf("%d warning", stats.Warnings)
		if color {
			s = colorYellow + s + colorReset
		}
		parts = append(parts, s)
	}
	if info := stats.Findings - stats.Critical - stats.Warnings; info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", info))
	}

	summary := "no findings"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}

	total := fmt.Sprintf("%d", stats.Findings)
	if color {
		total = colorBold + total + colorReset
	}
	return fmt.Sprintf("%s findings in %d files: %s", total, stats.Files, summary)
}

// severityTag returns a short severity label, optionally colored.
func severityTag(s lint.Severity, color bool) string {
	switch s {
	case lint.SeverityCritical:
		if color {
			return colorRed + "CRIT" + colorReset
		}
		return "CRIT"
	case lint.SeverityWarning:
		if color {
			return colorYellow + "WARN" + colorReset
		}
		return "WARN"
	case lint.SeverityInfo:
		if color {
			return colorGray + "INFO" + colorReset
		}
		return "INFO"
	default:
		return s.String()
	}
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

// LintTable writes the run counters inside a section.
func LintTable(w io.Writer, stats lint.Stats) {
	fmt.Fprintf(w, "    │ %-12s%6s  %6s  %6s  %7s  %s\n", "files", "cached", "failed", "blocked", "unanch", "findings")
	fmt.Fprintf(w, "    │ %-12d%6d  %6d  %6d  %7d  %d\n",
		stats.Files, stats.Cached, stats.Failed, stats.Blocked, stats.Unanchored, stats.Findings)
}

// SectionFindings renders findings grouped by file inside a section.
// Files are sorted lexicographically; findings within each file by line,
// module and message, with unanchored findings last.
func SectionFindings(sec *Section, findings []lint.Finding, color bool) {
	if len(findings) == 0 {
		return
	}

	byFile := map[string][]lint.Finding{}
	for _, f := range findings {
		byFile[f.File] = append(byFile[f.File], f)
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	sec.Row("")

	for _, file := range files {
		ff := byFile[file]
		sort.SliceStable(ff, func(i, j int) bool {
			a, b := ff[i], ff[j]
			if la, lb := a.LineOr(1<<31-1), b.LineOr(1<<31-1); la != lb {
				return la < lb
			}
			if a.Module != b.Module {
				return a.Module < b.Module
			}
			return a.Message < b.Message
		})

		if color {
			sec.Row("%s", colorBold+file+colorReset)
		} else {
			sec.Row("%s", file)
		}

		for _, f := range ff {
			loc := "-"
			if f.Line != nil {
				loc = fmt.Sprintf("%d", *f.Line)
			}
			sec.Row("  %-6s %-4s  %-8s %s", loc, severityTag(f.Level(), color), f.Module, f.Message)
		}

		sec.Row("")
	}
}

// SectionStatuses lists the results that carry a status message.
func SectionStatuses(sec *Section, results []lint.Result, color bool) {
	for _, r := range results {
		if r.Status == "" || r.Skipped() {
			continue
		}
		RowStatus(sec, r.File, r.Status, "failed", color)
	}
}

// SectionEntries renders the per-line messages of a document the way an
// editor shows them in its status bar.
func SectionEntries(sec *Section, doc *session.Document, color bool) {
	for _, e := range doc.Entries() {
		lines := strings.Split(e.Status(), "\n")
		sec.Row("%s  %s", Dimmed(fmt.Sprintf("%4d", e.Region.Line), color), lines[0])
		for _, l := range lines[1:] {
			sec.Row("      %s", l)
		}
	}
	for _, f := range doc.Unanchored() {
		sec.Row("%s  WAX Linter(%s): %s", Dimmed("   -", color), f.Severity, f.Message)
	}
}

// RowStatus writes a row with label, detail, and a status icon.
func RowStatus(sec *Section, label, detail, status string, color bool) {
	icon := StatusIcon(status, color)
	if detail != "" {
		sec.Row("%s  %s %s", label, detail, icon)
	} else {
		sec.Row("%s %s", label, icon)
	}
}
