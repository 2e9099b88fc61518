package output

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner shows progress on stderr while lint requests are in flight. It
// does nothing when stderr is not a terminal.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	_ = s.Color("cyan")
	return &Spinner{s: s}
}

func (s *Spinner) Start() {
	if s.s != nil {
		s.s.Start()
	}
}

func (s *Spinner) Stop() {
	if s.s != nil {
		s.s.Stop()
	}
}

// Update replaces the message. Safe while the spinner is drawing.
func (s *Spinner) Update(message string) {
	if s.s == nil {
		return
	}
	s.s.Lock()
	s.s.Suffix = " " + message
	s.s.Unlock()
}

// Enabled reports whether the spinner draws anything.
func (s *Spinner) Enabled() bool { return s.s != nil }
