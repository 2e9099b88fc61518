package lint

import (
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// SecretsGuard scans normalized markup with the gitleaks default rules
// before it is uploaded.
type SecretsGuard struct {
	once     sync.Once
	mu       sync.Mutex
	detector *detect.Detector
	initErr  error
}

// NewSecretsGuard returns a guard whose detector is built on first use.
func NewSecretsGuard() *SecretsGuard {
	return &SecretsGuard{}
}

// Scan returns one critical finding per secret found in markup. A finding
// is anchored to the tag holding the secret, or to the innermost annotated
// tag before it when the secret is in text.
func (g *SecretsGuard) Scan(markup string) ([]Finding, error) {
	g.once.Do(func() {
		g.detector, g.initErr = detect.NewDetectorDefaultConfig()
	})
	if g.initErr != nil {
		return nil, g.initErr
	}

	g.mu.Lock()
	hits := g.detector.DetectBytes([]byte(markup))
	g.mu.Unlock()
	if len(hits) == 0 {
		return nil, nil
	}

	lines := strings.Split(markup, "\n")
	findings := make([]Finding, 0, len(hits))
	for _, h := range hits {
		f := Finding{
			Module:   "secrets",
			Severity: SeverityCritical.String(),
			Message:  "potential secret in markup: " + h.Description + " (" + h.RuleID + ")",
		}

		// Prefer the secret's own position; fall back to its markup line.
		if idx := strings.Index(markup, h.Secret); h.Secret != "" && idx >= 0 {
			if n, ok := lineAt(markup, idx); ok {
				f.Line = &n
			}
		} else if h.StartLine >= 0 && h.StartLine < len(lines) {
			if n, ok := LastLineNumber(strings.Join(lines[:h.StartLine+1], "\n")); ok {
				f.Line = &n
			}
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// lineAt returns the line of the tag enclosing offset idx, or of the
// innermost annotated tag before it when idx is in text.
func lineAt(markup string, idx int) (int, bool) {
	lt := strings.LastIndexByte(markup[:idx], '<')
	if lt >= 0 && !strings.Contains(markup[lt:idx], ">") {
		if gt := strings.IndexByte(markup[idx:], '>'); gt >= 0 {
			if n, ok := LineNumber(markup[lt : idx+gt+1]); ok {
				return n, true
			}
		}
	}
	return LastLineNumber(markup[:idx])
}
