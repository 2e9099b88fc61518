package markup

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file types that can carry lintable markup.
var DefaultExtensions = []string{".html", ".js", ".jsx", ".ts", ".tsx", ".php", ".vue", ".astro", ".svelte"}

// Supported reports whether name ends with one of DefaultExtensions.
func Supported(name string) bool {
	return SupportedBy(name, DefaultExtensions)
}

// SupportedBy reports whether name ends with one of exts. Matching is on the
// name suffix, so ".html" also accepts "page.tpl.html".
func SupportedBy(name string, exts []string) bool {
	base := filepath.Base(name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// Annotated tokenizes text, injects line markers and returns the joined
// annotated source.
func Annotated(tz Tokenizer, text string) (string, []Token) {
	tokens := Annotate(tz.Tokenize(text))
	return Join(tokens), tokens
}
