// Package render provides output renderers for pkgcmp's visualization
// patterns: styled terminal text, terse plain text for tools and LLMs, and
// JSON.
package render

import "github.com/dkoosis/pkgcmp/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// Output formats accepted by New.
const (
	FormatTerminal = "terminal"
	FormatLLM      = "llm"
	FormatJSON     = "json"
)

// New returns the renderer for format. Unknown formats fall back to the
// llm renderer, which is safe for any output.
func New(format string, theme Theme, width int) Renderer {
	switch format {
	case FormatTerminal:
		return NewTerminal(theme, width)
	case FormatJSON:
		return NewJSON()
	default:
		return NewLLM()
	}
}
