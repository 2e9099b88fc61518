// Package session keeps the rendered lint state of open documents: which
// lines carry findings and the message shown for each.
package session

import (
	"fmt"
	"sync"

	"github.com/sofmeright/waxlint/src/lint"
	"github.com/sofmeright/waxlint/src/markup"
)

// Region is the character span of one document line. Begin and End are
// points as counted by markup.TextModel; End excludes the newline.
type Region struct {
	Line  int // 1-based
	Begin int
	End   int
}

// Contains reports whether point falls on the region, end included.
func (r Region) Contains(point int) bool {
	return point >= r.Begin && point <= r.End
}

// Entry is the message rendered on one region. Findings that land on the
// same line are numbered in arrival order; Severity is the first one's.
type Entry struct {
	Region   Region
	Message  string
	Severity string
	Count    int
}

// Status renders the entry for a status bar.
func (e Entry) Status() string {
	return fmt.Sprintf("WAX Linter(%s): %s", e.Severity, e.Message)
}

// Tooltip renders the entry as popup markup.
func (e Entry) Tooltip() string {
	return fmt.Sprintf("<strong>WAX Linter(%s)</strong>: %s", e.Severity, e.Message)
}

func (e *Entry) add(message string) {
	e.Count++
	if e.Count == 1 {
		e.Message = fmt.Sprintf("1. %s", message)
		return
	}
	e.Message += fmt.Sprintf("\n%d. %s", e.Count, message)
}

// Document is the last rendered state of one file. Readers may see a
// mapping that is stale relative to edits made since the last Render.
type Document struct {
	Name string

	mu         sync.RWMutex
	regions    []Region
	entries    map[int]*Entry
	unanchored []lint.Finding
}

// NewDocument returns an empty document state.
func NewDocument(name string) *Document {
	return &Document{Name: name, entries: map[int]*Entry{}}
}

// Render replaces the state with the findings of res, placed on the lines
// of text. Lines past the end of text land on the last line and lines
// before the first land on the first.
func (d *Document) Render(text string, res lint.Result) {
	model := markup.NewTextModel(text)

	var regions []Region
	entries := make(map[int]*Entry)
	var unanchored []lint.Finding

	for _, f := range res.Findings {
		if f.Line == nil {
			unanchored = append(unanchored, f)
			continue
		}
		row, _ := model.RowCol(model.TextPoint(*f.Line-1, 0))
		e, ok := entries[row]
		if !ok {
			begin, end := model.Line(row)
			r := Region{Line: row + 1, Begin: begin, End: end}
			regions = append(regions, r)
			e = &Entry{Region: r, Severity: f.Severity}
			entries[row] = e
		}
		e.add(f.Message)
	}

	d.mu.Lock()
	d.regions = regions
	d.entries = entries
	d.unanchored = unanchored
	d.mu.Unlock()
}

// Clear drops all rendered state.
func (d *Document) Clear() {
	d.mu.Lock()
	d.regions = nil
	d.entries = map[int]*Entry{}
	d.unanchored = nil
	d.mu.Unlock()
}

// Regions returns the highlighted regions in the order they were first hit.
func (d *Document) Regions() []Region {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Region(nil), d.regions...)
}

// Entries returns the rendered entries in region order.
func (d *Document) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Entry, 0, len(d.regions))
	for _, r := range d.regions {
		out = append(out, *d.entries[r.Line-1])
	}
	return out
}

// At returns the entry whose region contains point.
func (d *Document) At(point int) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.regions {
		if r.Contains(point) {
			return *d.entries[r.Line-1], true
		}
	}
	return Entry{}, false
}

// AtLine returns the entry rendered on a 1-based line.
func (d *Document) AtLine(line int) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[line-1]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Unanchored returns findings that carried no line marker.
func (d *Document) Unanchored() []lint.Finding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]lint.Finding(nil), d.unanchored...)
}
