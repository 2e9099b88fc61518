package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sofmeright/waxlint/src/lint"
)

// Trigger is the host event that started a run.
type Trigger int

const (
	TriggerOpen Trigger = iota
	TriggerSave
	TriggerClose
	TriggerCommand
)

func (t Trigger) String() string {
	switch t {
	case TriggerOpen:
		return "open"
	case TriggerSave:
		return "save"
	case TriggerClose:
		return "close"
	case TriggerCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Controller runs the pipeline for host triggers and owns the rendered
// state of every document it has seen. Each trigger is an independent run;
// when runs for the same file overlap, only the latest one started renders.
type Controller struct {
	Pipeline *lint.Pipeline

	mu     sync.Mutex
	docs   map[string]*Document
	seq    map[string]uint64
	status string
}

// NewController creates a controller around p.
func NewController(p *lint.Pipeline) *Controller {
	return &Controller{
		Pipeline: p,
		docs:     make(map[string]*Document),
		seq:      make(map[string]uint64),
	}
}

// Handle runs the pipeline for doc and renders the result. Successful runs
// and blocked uploads replace the document state; failed requests leave the
// previous state in place and only set the status. A close trigger drops
// the document state once the run finishes.
func (c *Controller) Handle(ctx context.Context, trigger Trigger, doc lint.Document) lint.Result {
	c.mu.Lock()
	c.seq[doc.Name]++
	run := c.seq[doc.Name]
	c.mu.Unlock()

	res := c.Pipeline.Run(ctx, doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = res.Status
	if trigger == TriggerClose {
		delete(c.docs, doc.Name)
		return res
	}
	if run != c.seq[doc.Name] || !renders(res) {
		return res
	}

	d, ok := c.docs[doc.Name]
	if !ok {
		d = NewDocument(doc.Name)
		c.docs[doc.Name] = d
	}
	d.Render(doc.Text, res)
	return res
}

func renders(res lint.Result) bool {
	var serr *lint.SecretsError
	return res.Err == nil || errors.As(res.Err, &serr)
}

// Document returns the rendered state of a file.
func (c *Controller) Document(name string) (*Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[name]
	return d, ok
}

// Status returns the status message of the most recent run; empty after a
// successful one.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Forget drops the state of a file without running the pipeline, for
// documents that no longer exist. The run counter is kept so a run still in
// flight cannot render over a later one.
func (c *Controller) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, name)
}
