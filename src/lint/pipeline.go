package lint

import (
	"context"
	"errors"
	"fmt"

	"github.com/sofmeright/waxlint/src/markup"
)

// Status messages shown to the user.
const (
	StatusUnsupported   = "Unsupported file type"
	statusRequestFailed = "We were not able to process your request: "
	statusUploadSkipped = "Upload skipped: "
)

// Linter sends normalized markup to a lint service and returns its raw
// findings. Implementations return *RequestError on failure.
type Linter interface {
	Lint(ctx context.Context, markup string) ([]Finding, error)
}

// Document is the text of one file as the host holds it.
type Document struct {
	Name string
	Text string
}

// Result is the outcome of one pipeline run.
type Result struct {
	File     string
	Markup   string
	Source   markup.Source
	Tokens   int
	Findings []Finding
	Cached   bool

	// Status is the message to show the user; empty on success.
	Status string
	// Err is ErrUnsupportedFileType, *RequestError, *SecretsError or nil.
	Err error
	// Warnings are non-fatal problems such as cache write failures.
	Warnings []string
}

// OK reports whether the run produced a complete set of findings.
func (r Result) OK() bool { return r.Err == nil }

// Skipped reports whether the file type was not eligible.
func (r Result) Skipped() bool { return errors.Is(r.Err, ErrUnsupportedFileType) }

// Pipeline turns a document into line-anchored findings: tokenize, inject
// line markers, extract markup, lint remotely, reconcile lines.
type Pipeline struct {
	Linter     Linter
	Tokenizer  markup.Tokenizer
	Extensions []string      // nil means markup.DefaultExtensions
	Guard      *SecretsGuard // nil disables the secrets scan
	Cache      *Cache        // nil disables caching
	CacheScope string        // endpoint and rules; part of the cache key
}

// Run executes the pipeline once. It never returns a fatal error: every
// failure is reported through Result.Err and Result.Status with zero
// remote findings.
func (p *Pipeline) Run(ctx context.Context, doc Document) Result {
	res := Result{File: doc.Name}

	exts := p.Extensions
	if exts == nil {
		exts = markup.DefaultExtensions
	}
	if !markup.SupportedBy(doc.Name, exts) {
		res.Err = ErrUnsupportedFileType
		res.Status = StatusUnsupported
		return res
	}

	annotated, tokens := markup.Annotated(p.Tokenizer, doc.Text)
	ex := markup.Extract(annotated)
	res.Markup, res.Source, res.Tokens = ex.Markup, ex.Source, len(tokens)

	if p.Guard != nil {
		hits, err := p.Guard.Scan(ex.Markup)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("secrets scan unavailable: %v", err))
		} else if len(hits) > 0 {
			serr := &SecretsError{Count: len(hits)}
			res.Findings = withFile(hits, doc.Name)
			res.Err = serr
			res.Status = statusUploadSkipped + serr.Error()
			return res
		}
	}

	var key string
	if p.Cache != nil && p.Cache.Enabled {
		key = p.Cache.Key(ex.Markup, p.CacheScope)
		if cached, ok := p.Cache.Get(key, p.Cache.MaxAge); ok {
			res.Findings = withFile(cached, doc.Name)
			res.Cached = true
			return res
		}
	}

	raw, err := p.lint(ctx, ex.Markup)
	if err != nil {
		res.Err = err
		res.Status = statusRequestFailed + err.Error()
		return res
	}
	res.Findings = withFile(Reconcile(raw), doc.Name)

	if key != "" {
		if err := p.Cache.Put(key, res.Findings); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("cache: write failed: %v", err))
		}
	}
	return res
}

// lint calls the Linter, converting panics and untyped errors into
// transport failures.
func (p *Pipeline) lint(ctx context.Context, markup string) (findings []Finding, err error) {
	if p.Linter == nil {
		return nil, &RequestError{Kind: KindTransport, Err: errors.New("no lint service configured")}
	}
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = &RequestError{Kind: KindTransport, Err: fmt.Errorf("lint service client panicked: %v", r)}
		}
	}()

	findings, err = p.Linter.Lint(ctx, markup)
	if err != nil {
		var rerr *RequestError
		if !errors.As(err, &rerr) {
			err = &RequestError{Kind: KindTransport, Err: err}
		}
		return nil, err
	}
	for i := range findings {
		if findings[i].Module == "" {
			findings[i].Module = "wax"
		}
	}
	return findings, nil
}

func withFile(findings []Finding, file string) []Finding {
	for i := range findings {
		findings[i].File = file
	}
	return findings
}
