package render

import (
	"fmt"
	"strings"

	"github.com/dkoosis/pkgcmp/pkg/pattern"
)

const maxDetailLines = 3

// LLM renders patterns as terse plain text for tools and LLMs: no ANSI
// codes, one SCOPE line per summary, details truncated.
type LLM struct{}

// NewLLM creates an LLM renderer.
func NewLLM() *LLM {
	return &LLM{}
}

// Render formats all patterns in order.
func (l *LLM) Render(patterns []pattern.Pattern) string {
	var sb strings.Builder
	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			l.renderSummary(&sb, v)
		case *pattern.TestTable:
			l.renderTestTable(&sb, v)
		case *pattern.Diff:
			l.renderDiff(&sb, v)
		}
	}
	return sb.String()
}

func (l *LLM) renderSummary(sb *strings.Builder, s *pattern.Summary) {
	sb.WriteString("SCOPE: " + s.Label + "\n")
	for _, m := range s.Metrics {
		sb.WriteString("  " + m.Label + ": " + m.Value + "\n")
	}
}

func (l *LLM) renderTestTable(sb *strings.Builder, t *pattern.TestTable) {
	if len(t.Results) == 0 {
		return
	}
	sb.WriteString("\n" + t.Label + "\n")
	for _, item := range t.Results {
		prefix := "  PASS"
		switch item.Status {
		case pattern.StatusFail:
			prefix = "  FAIL"
		case pattern.StatusSkip:
			prefix = "  SKIP"
		}
		sb.WriteString(prefix + " " + item.Name)
		if item.Count > 0 {
			fmt.Fprintf(sb, " [%d tests]", item.Count)
		}
		if item.Duration != "" {
			sb.WriteString(" (" + item.Duration + ")")
		}
		sb.WriteString("\n")
		if item.Details != "" && item.Status != pattern.StatusPass {
			writeDetails(sb, item.Details)
		}
	}
}

func (l *LLM) renderDiff(sb *strings.Builder, d *pattern.Diff) {
	if len(d.Items) == 0 {
		return
	}
	sb.WriteString("\n" + d.Label + "\n")
	for _, item := range d.Items {
		sb.WriteString("  " + item.Location + "\n")
		sb.WriteString("    - " + item.Reference + "\n")
		sb.WriteString("    + " + item.Candidate + "\n")
	}
}

func writeDetails(sb *strings.Builder, details string) {
	lines := strings.Split(details, "\n")
	n := min(len(lines), maxDetailLines)
	for _, line := range lines[:n] {
		sb.WriteString("    " + line + "\n")
	}
	if len(lines) > maxDetailLines {
		fmt.Fprintf(sb, "    ... (%d more lines)\n", len(lines)-maxDetailLines)
	}
}
