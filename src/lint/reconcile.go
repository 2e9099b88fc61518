package lint

import (
	"regexp"
	"strconv"
)

var markerPattern = regexp.MustCompile(` wax-ln="(\d+)"`)

// LineNumber returns the line recorded by the first wax-ln marker in element.
// A marker whose value does not fit in an int reports false, leaving the
// finding unanchored.
func LineNumber(element string) (int, bool) {
	sm := markerPattern.FindStringSubmatch(element)
	if sm == nil {
		return 0, false
	}
	n, err := strconv.Atoi(sm[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// LastLineNumber returns the line recorded by the last marker in s, which
// is the innermost open tag preceding the end of s.
func LastLineNumber(s string) (int, bool) {
	all := markerPattern.FindAllStringSubmatch(s, -1)
	if len(all) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(all[len(all)-1][1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Reconcile sets Line on every finding from the marker in its Element.
// Findings without a marker get a nil Line. Order and other fields are kept.
func Reconcile(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	for i, f := range findings {
		f.Line = nil
		if n, ok := LineNumber(f.Element); ok {
			f.Line = &n
		}
		out[i] = f
	}
	return out
}
