package output

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sofmeright/waxlint/src/lint"
)

// IsCI reports whether the process runs in a CI job.
func IsCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// GitLab collapsible section helpers.

func SectionStart(w io.Writer, id, name string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", time.Now().Unix(), id, name)
}

func SectionEnd(w io.Writer, id string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", time.Now().Unix(), id)
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitFailure `xml:"error,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// WriteLintJUnit writes dir/waxlint.xml with one test case per linted file.
// Files with critical findings fail; files whose request failed are errors.
func WriteLintJUnit(dir string, results []lint.Result, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	suite := JUnitTestSuite{
		Name: "waxlint",
		Time: fmt.Sprintf("%.3f", elapsed.Seconds()),
	}

	for _, r := range results {
		if r.Skipped() {
			continue
		}
		tc := JUnitTestCase{Name: r.File, Classname: "waxlint.accessibility", Time: "0.000"}

		var rerr *lint.RequestError
		switch {
		case errors.As(r.Err, &rerr):
			tc.Error = &JUnitFailure{Message: r.Status, Type: rerr.Kind.String()}
			suite.Errors++
		default:
			worst := lint.SeverityInfo
			var lines []string
			for _, f := range r.Findings {
				if lv := f.Level(); lv > worst {
					worst = lv
				}
				loc := "-"
				if f.Line != nil {
					loc = fmt.Sprintf("%d", *f.Line)
				}
				lines = append(lines, fmt.Sprintf("  %s [%s] %s", loc, f.Severity, f.Message))
			}
			if worst >= lint.SeverityCritical {
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%d finding(s) in %s", len(r.Findings), r.File),
					Type:    worst.String(),
					Body:    strings.Join(lines, "\n"),
				}
				suite.Failures++
			}
		}

		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}

	root := JUnitTestSuites{
		Name:     "waxlint",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Errors:   suite.Errors,
		Time:     suite.Time,
		Suites:   []JUnitTestSuite{suite},
	}

	path := filepath.Join(dir, "waxlint.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	f.WriteString(xml.Header)
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	f.WriteString("\n")
	return nil
}
