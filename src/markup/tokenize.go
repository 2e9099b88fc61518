// Package markup isolates templated markup embedded in source files and
// annotates every opening tag with the source line it came from.
//
// Matching is pattern based on purpose. Nested or malformed markup can be
// mis-tokenized; the set of inputs the patterns accept is the contract.
package markup

import (
	"regexp"
	"strings"
)

// tokenPattern matches either a complete tag or a run of non-tag text.
var tokenPattern = regexp.MustCompile(`<[^>]+>|[^<]+`)

// Token is one tag or text run, in document order.
type Token struct {
	Content string
	Line    int // 1-based
	Column  int // 0-based, in characters
	IsTag   bool
}

// IsOpeningTag reports whether the token is a tag that is not a closing tag.
func (t Token) IsOpeningTag() bool {
	return strings.HasPrefix(t.Content, "<") && !strings.HasPrefix(t.Content, "</")
}

// Locator computes the 1-based line and 0-based column of a match.
// index is the running match index and offset the match start as a point.
type Locator func(m *TextModel, index, offset int) (line, col int)

// OffsetLocator resolves TextPoint(0, offset). Since TextPoint does not clamp
// columns, this is the true position of offset.
func OffsetLocator(m *TextModel, _ int, offset int) (line, col int) {
	row, col := m.RowCol(m.TextPoint(0, offset))
	return row + 1, col
}

// IndexLocator resolves TextPoint(index, offset), treating the running match
// index as the row argument.
func IndexLocator(m *TextModel, index, offset int) (line, col int) {
	row, col := m.RowCol(m.TextPoint(index, offset))
	return row + 1, col
}

// Tokenizer splits text into tag and text tokens.
type Tokenizer struct {
	Locator Locator
}

// DefaultTokenizer positions tokens with OffsetLocator.
var DefaultTokenizer = Tokenizer{Locator: OffsetLocator}

// Tokenize splits text with DefaultTokenizer.
func Tokenize(text string) []Token {
	return DefaultTokenizer.Tokenize(text)
}

// Tokenize splits text into trimmed tokens. Text runs that trim to nothing
// are dropped.
func (tz Tokenizer) Tokenize(text string) []Token {
	locate := tz.Locator
	if locate == nil {
		locate = OffsetLocator
	}
	model := NewTextModel(text)

	var tokens []Token
	for i, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		content := normalizeSpace(text[loc[0]:loc[1]])
		if content == "" {
			continue
		}
		line, col := locate(model, i, model.PointOf(loc[0]))
		tokens = append(tokens, Token{
			Content: content,
			Line:    line,
			Column:  col,
			IsTag:   strings.HasPrefix(content, "<"),
		})
	}
	return tokens
}

// normalizeSpace trims the token. The collapse step replaces the literal
// three characters `\s+`, not whitespace runs, so internal whitespace
// survives unchanged.
func normalizeSpace(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), `\s+`, " ")
}
