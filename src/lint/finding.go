package lint

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity indicates how serious a finding is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity maps a severity label from the lint service onto Severity.
// Unknown labels are treated as info.
func ParseSeverity(label string) Severity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "critical", "serious", "error", "high", "fatal":
		return SeverityCritical
	case "warning", "warn", "moderate", "medium":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Finding represents a single lint result.
//
// Element, Message and Severity come from the lint service. Line is derived
// from the wax-ln marker in Element and is nil when none is present.
type Finding struct {
	File     string
	Module   string
	Element  string
	Message  string
	Severity string
	Line     *int

	// Extra holds response fields this package does not interpret.
	Extra map[string]json.RawMessage
}

// Level returns the parsed severity.
func (f Finding) Level() Severity { return ParseSeverity(f.Severity) }

// Anchored reports whether the finding has a source line.
func (f Finding) Anchored() bool { return f.Line != nil }

// LineOr returns the line number, or def for unanchored findings.
func (f Finding) LineOr(def int) int {
	if f.Line == nil {
		return def
	}
	return *f.Line
}

var knownFields = map[string]bool{
	"file": true, "module": true, "element": true, "message": true, "severity": true, "lineNumber": true,
}

// UnmarshalJSON decodes the lint service's finding objects, keeping unknown
// fields in Extra.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = Finding{}
	for key, val := range raw {
		var err error
		switch key {
		case "file":
			err = json.Unmarshal(val, &f.File)
		case "module":
			err = json.Unmarshal(val, &f.Module)
		case "element":
			err = decodeText(val, &f.Element)
		case "message":
			err = decodeText(val, &f.Message)
		case "severity":
			err = decodeText(val, &f.Severity)
		case "lineNumber":
			err = json.Unmarshal(val, &f.Line)
		}
		if err != nil {
			return fmt.Errorf("finding field %q: %w", key, err)
		}
		if !knownFields[key] {
			if f.Extra == nil {
				f.Extra = make(map[string]json.RawMessage)
			}
			f.Extra[key] = val
		}
	}
	return nil
}

// MarshalJSON encodes the finding with its extra fields.
func (f Finding) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Extra)+6)
	for k, v := range f.Extra {
		out[k] = v
	}
	if f.File != "" {
		out["file"] = f.File
	}
	if f.Module != "" {
		out["module"] = f.Module
	}
	out["element"] = f.Element
	out["message"] = f.Message
	out["severity"] = f.Severity
	out["lineNumber"] = f.Line
	return json.Marshal(out)
}

// decodeText accepts a JSON string, null, or any other scalar rendered as
// text. The service is not strict about field types.
func decodeText(val json.RawMessage, dst *string) error {
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		*dst = s
		return nil
	}
	var v any
	if err := json.Unmarshal(val, &v); err != nil {
		return err
	}
	if v == nil {
		*dst = ""
		return nil
	}
	*dst = fmt.Sprint(v)
	return nil
}

// FileInfo is a file queued for linting.
type FileInfo struct {
	Path    string // relative path from the scan root
	AbsPath string // absolute path on disk
	Size    int64
}
