package markup

import (
	"fmt"
	"strings"
)

// MarkerAttr is the synthetic attribute carrying a tag's source line.
const MarkerAttr = "wax-ln"

// Inject adds the line marker as the last attribute of an opening tag.
// Closing tags and text are returned unchanged. Already annotated tags are
// not recognised and would receive a second marker.
func Inject(content string, line int) string {
	if !strings.HasPrefix(content, "<") || strings.HasPrefix(content, "</") {
		return content
	}
	if strings.HasSuffix(content, "/>") {
		return strings.TrimSuffix(content, "/>") + fmt.Sprintf(` %s="%d" />`, MarkerAttr, line)
	}
	return strings.Replace(content, ">", fmt.Sprintf(` %s="%d">`, MarkerAttr, line), 1)
}

// Annotate returns a copy of tokens with every opening tag injected.
func Annotate(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		if t.IsOpeningTag() {
			t.Content = Inject(t.Content, t.Line)
		}
		out[i] = t
	}
	return out
}

// Join concatenates token contents in order, without separators.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Content)
	}
	return b.String()
}
