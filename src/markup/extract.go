package markup

import (
	"regexp"
	"strings"
)

// Source tells which rule produced an Extraction.
type Source int

const (
	// SourceEmbedded: one or more parenthesized markup expressions.
	SourceEmbedded Source = iota
	// SourceTemplate: the inner content of a <template> block.
	SourceTemplate
	// SourcePassthrough: nothing matched; the input is returned as is.
	SourcePassthrough
)

func (s Source) String() string {
	switch s {
	case SourceEmbedded:
		return "embedded"
	case SourceTemplate:
		return "template"
	case SourcePassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Extraction is the normalized markup sent to the lint service.
type Extraction struct {
	Markup string
	Source Source
}

var (
	interpolationPattern = regexp.MustCompile(`\$\{[^\}]+\}`)
	templatePattern      = regexp.MustCompile(`<template[^>]*>\s*([\s\S]*?)\s*</template>`)
	tagNamePattern       = regexp.MustCompile(`^<([a-zA-Z]+)`)
	selfClosingPattern   = regexp.MustCompile(`^<[a-zA-Z]+\s+[^/>]+?/>`)
)

// Extract isolates the markup in annotated host-language source.
//
// Every `( <tag ...>...</tag> );` or `( <tag ... /> );` expression is kept,
// with template literal braces and ${...} interpolations removed, and wrapped
// as "<" + expr + ">" on its own line. Without such expressions the inner
// content of a <template> block is used, and failing that the input itself.
func Extract(annotated string) Extraction {
	var b strings.Builder
	for _, m := range findMarkupExpressions(annotated) {
		html := strings.ReplaceAll(m, "{`", "")
		html = strings.ReplaceAll(html, "`}", "")
		html = interpolationPattern.ReplaceAllString(html, "")
		b.WriteString("<" + strings.TrimSpace(html) + ">\n")
	}
	if out := strings.TrimSpace(b.String()); out != "" {
		return Extraction{Markup: out, Source: SourceEmbedded}
	}

	if sm := templatePattern.FindStringSubmatch(annotated); sm != nil {
		return Extraction{Markup: strings.TrimSpace(sm[1]), Source: SourceTemplate}
	}
	return Extraction{Markup: annotated, Source: SourcePassthrough}
}

// findMarkupExpressions returns the non-overlapping matches, left to right,
// of
//
//	\s*\(\s*(<([a-zA-Z]+)[^>]*>.*?</\2>|<([a-zA-Z]+)\s+[^/>]+?/>)\s*\);
//
// with dot matching newlines. RE2 has no back-references, so the open/close
// name pairing is checked here and the remaining pieces use regexps.
func findMarkupExpressions(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		open := strings.IndexByte(s[i:], '(')
		if open < 0 {
			break
		}
		start := i + open
		if end, ok := matchExpressionAt(s, start); ok {
			out = append(out, s[start:end])
			i = end
			continue
		}
		i = start + 1
	}
	return out
}

// matchExpressionAt tries the pattern with the '(' at s[start] and returns
// the end offset of the match.
func matchExpressionAt(s string, start int) (int, bool) {
	p := start + 1
	p += leadingSpace(s[p:])
	if p >= len(s) || s[p] != '<' {
		return 0, false
	}
	rest := s[p:]

	if end, ok := matchPairedTag(rest); ok {
		return p + end, true
	}
	if loc := selfClosingPattern.FindStringIndex(rest); loc != nil {
		if tail, ok := statementEnd(rest[loc[1]:]); ok {
			return p + loc[1] + tail, true
		}
	}
	return 0, false
}

// matchPairedTag matches `<name[^>]*>.*?</name>\s*\);` at the start of s.
// Shorter tag names are tried when the full name finds no closing tag, as a
// backtracking engine would.
func matchPairedTag(s string) (int, bool) {
	sm := tagNamePattern.FindStringSubmatch(s)
	if sm == nil {
		return 0, false
	}
	gt := strings.IndexByte(s, '>')
	if gt < 0 {
		return 0, false
	}
	body := s[gt+1:]

	letters := sm[1]
	for n := len(letters); n > 0; n-- {
		closing := "</" + letters[:n] + ">"
		for off := 0; ; {
			k := strings.Index(body[off:], closing)
			if k < 0 {
				break
			}
			end := off + k + len(closing)
			if tail, ok := statementEnd(body[end:]); ok {
				return gt + 1 + end + tail, true
			}
			off += k + 1
		}
	}
	return 0, false
}

// statementEnd matches `\s*\);` at the start of s.
func statementEnd(s string) (int, bool) {
	n := leadingSpace(s)
	if !strings.HasPrefix(s[n:], ");") {
		return 0, false
	}
	return n + 2, true
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t\n\r\f\v"))
}
