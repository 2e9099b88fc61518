package session

import (
	"context"
	"errors"
	"testing"

	"github.com/sofmeright/waxlint/src/lint"
)

func at(n int) *int { return &n }

const page = "return (\n  <div>\n    <span>Hi</span>\n  </div>\n);"

func TestRender_NumbersSameLineMessages(t *testing.T) {
	d := NewDocument("App.jsx")
	d.Render(page, lint.Result{Findings: []lint.Finding{
		{Line: at(3), Message: "span needs a role", Severity: "error"},
		{Line: at(2), Message: "div is empty", Severity: "info"},
		{Line: at(3), Message: "low contrast", Severity: "warning"},
	}})

	e, ok := d.AtLine(3)
	if !ok {
		t.Fatal("no entry on line 3")
	}
	if want := "1. span needs a role\n2. low contrast"; e.Message != want {
		t.Errorf("message = %q, want %q", e.Message, want)
	}
	if e.Severity != "error" || e.Count != 2 {
		t.Errorf("severity/count = %s/%d", e.Severity, e.Count)
	}

	entries := d.Entries()
	if len(entries) != 2 || entries[0].Region.Line != 3 || entries[1].Region.Line != 2 {
		t.Errorf("entries = %+v", entries)
	}
	if entries[1].Message != "1. div is empty" {
		t.Errorf("single message = %q", entries[1].Message)
	}
}

func TestRender_ReplacesPreviousState(t *testing.T) {
	d := NewDocument("App.jsx")
	d.Render(page, lint.Result{Findings: []lint.Finding{
		{Line: at(3), Message: "old", Severity: "error"},
		{Message: "unanchored", Severity: "info"},
	}})
	d.Render(page, lint.Result{Findings: []lint.Finding{
		{Line: at(2), Message: "new", Severity: "warning"},
	}})

	if _, ok := d.AtLine(3); ok {
		t.Error("line 3 survived a re-render")
	}
	if e, ok := d.AtLine(2); !ok || e.Message != "1. new" {
		t.Errorf("line 2 = %+v, %v", e, ok)
	}
	if len(d.Unanchored()) != 0 {
		t.Errorf("unanchored = %v", d.Unanchored())
	}
}

func TestRender_RegionsAndLookup(t *testing.T) {
	d := NewDocument("App.jsx")
	d.Render(page, lint.Result{Findings: []lint.Finding{
		{Line: at(2), Message: "m", Severity: "error"},
		{Message: "no marker", Severity: "info"},
	}})

	regions := d.Regions()
	if len(regions) != 1 {
		t.Fatalf("regions = %+v", regions)
	}
	// "return (\n" is 9 characters, line 2 is "  <div>".
	if want := (Region{Line: 2, Begin: 9, End: 16}); regions[0] != want {
		t.Errorf("region = %+v, want %+v", regions[0], want)
	}

	for _, p := range []int{9, 12, 16} {
		if _, ok := d.At(p); !ok {
			t.Errorf("At(%d) missed", p)
		}
	}
	for _, p := range []int{8, 17} {
		if _, ok := d.At(p); ok {
			t.Errorf("At(%d) hit", p)
		}
	}

	if u := d.Unanchored(); len(u) != 1 || u[0].Message != "no marker" {
		t.Errorf("unanchored = %+v", u)
	}
}

func TestRender_ClampsOutOfRangeLines(t *testing.T) {
	d := NewDocument("App.jsx")
	d.Render(page, lint.Result{Findings: []lint.Finding{
		{Line: at(40), Message: "a", Severity: "error"},
		{Line: at(99), Message: "b", Severity: "error"},
		{Line: at(0), Message: "c", Severity: "info"},
	}})

	e, ok := d.AtLine(5)
	if !ok || e.Message != "1. a\n2. b" {
		t.Errorf("last line = %+v, %v", e, ok)
	}
	if e, ok := d.AtLine(1); !ok || e.Message != "1. c" {
		t.Errorf("first line = %+v, %v", e, ok)
	}
}

func TestEntry_Text(t *testing.T) {
	e := Entry{Message: "1. missing alt", Severity: "error"}
	if got := e.Status(); got != "WAX Linter(error): 1. missing alt" {
		t.Errorf("Status = %q", got)
	}
	if got := e.Tooltip(); got != "<strong>WAX Linter(error)</strong>: 1. missing alt" {
		t.Errorf("Tooltip = %q", got)
	}
}

type stubLinter struct {
	findings []lint.Finding
	err      error
}

func (s *stubLinter) Lint(ctx context.Context, m string) ([]lint.Finding, error) {
	return s.findings, s.err
}

func TestController_Handle(t *testing.T) {
	stub := &stubLinter{findings: []lint.Finding{{Element: `<span wax-ln="3">`, Message: "m", Severity: "error"}}}
	c := NewController(&lint.Pipeline{Linter: stub})
	doc := lint.Document{Name: "App.jsx", Text: page}

	res := c.Handle(context.Background(), TriggerOpen, doc)
	if !res.OK() || c.Status() != "" {
		t.Fatalf("open: %+v, status %q", res, c.Status())
	}
	d, ok := c.Document("App.jsx")
	if !ok {
		t.Fatal("no document after open")
	}
	if e, ok := d.AtLine(3); !ok || e.Message != "1. m" {
		t.Errorf("line 3 = %+v, %v", e, ok)
	}

	// A failed request keeps the last rendering and reports a status.
	stub.err = &lint.RequestError{Kind: lint.KindTransport, Err: errors.New("timeout")}
	c.Handle(context.Background(), TriggerSave, doc)
	if c.Status() != "We were not able to process your request: timeout" {
		t.Errorf("status = %q", c.Status())
	}
	if _, ok := d.AtLine(3); !ok {
		t.Error("failed run cleared the rendering")
	}

	c.Handle(context.Background(), TriggerClose, doc)
	if _, ok := c.Document("App.jsx"); ok {
		t.Error("document kept after close")
	}
}

func TestController_UnsupportedFile(t *testing.T) {
	c := NewController(&lint.Pipeline{Linter: &stubLinter{}})
	c.Handle(context.Background(), TriggerCommand, lint.Document{Name: "notes.txt", Text: "<p>x</p>"})

	if c.Status() != lint.StatusUnsupported {
		t.Errorf("status = %q", c.Status())
	}
	if _, ok := c.Document("notes.txt"); ok {
		t.Error("unsupported file was rendered")
	}
}

// gateLinter hands every call's reply channel to the test, which decides
// when and with what each call returns.
type gateLinter struct {
	calls chan chan []lint.Finding
}

func (g *gateLinter) Lint(ctx context.Context, m string) ([]lint.Finding, error) {
	reply := make(chan []lint.Finding)
	g.calls <- reply
	return <-reply, nil
}

func TestController_ForgetKeepsRunOrder(t *testing.T) {
	g := &gateLinter{calls: make(chan chan []lint.Finding)}
	c := NewController(&lint.Pipeline{Linter: g})
	doc := lint.Document{Name: "App.jsx", Text: page}
	ctx := context.Background()

	staleDone := make(chan struct{})
	go func() {
		c.Handle(ctx, TriggerOpen, doc)
		close(staleDone)
	}()
	stale := <-g.calls

	c.Forget("App.jsx")

	freshDone := make(chan struct{})
	go func() {
		c.Handle(ctx, TriggerSave, doc)
		close(freshDone)
	}()
	fresh := <-g.calls

	fresh <- []lint.Finding{{Element: `<div wax-ln="2">`, Message: "fresh", Severity: "warning"}}
	<-freshDone
	stale <- []lint.Finding{{Element: `<span wax-ln="3">`, Message: "stale", Severity: "error"}}
	<-staleDone

	d, ok := c.Document("App.jsx")
	if !ok {
		t.Fatal("no document after the latest run")
	}
	if e, ok := d.AtLine(2); !ok || e.Message != "1. fresh" {
		t.Errorf("line 2 = %+v, %v", e, ok)
	}
	if e, ok := d.AtLine(3); ok {
		t.Errorf("run started before Forget rendered: %+v", e)
	}
}
