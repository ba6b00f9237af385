package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/pkgcmp/pkg/pattern"
)

const (
	defaultWidth = 80
	minNameWidth = 20
	// reserved for icon, count and duration columns
	tableChrome = 30
)

// Terminal renders patterns as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme. Widths
// below one fall back to 80 columns.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = defaultWidth
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats all patterns for terminal display.
func (t *Terminal) Render(patterns []pattern.Pattern) string {
	var sections []string
	for _, p := range patterns {
		if s := t.renderOne(p); s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderOne(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return t.renderSummary(v)
	case *pattern.TestTable:
		return t.renderTestTable(v)
	case *pattern.Diff:
		return t.renderDiff(v)
	default:
		return ""
	}
}

func (t *Terminal) renderSummary(s *pattern.Summary) string {
	var sb strings.Builder
	if s.Label != "" {
		sb.WriteString(t.theme.Bold.Render(s.Label))
		sb.WriteString("\n")
	}
	for _, m := range s.Metrics {
		icon, style := t.iconStyle(m.Kind)
		sb.WriteString("  ")
		sb.WriteString(style.Render(icon + " " + m.Label + ": " + m.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderTestTable(tt *pattern.TestTable) string {
	if len(tt.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	if tt.Label != "" {
		sb.WriteString(t.theme.Bold.Render(tt.Label))
		sb.WriteString("\n")
	}

	maxName, maxDur := 0, 0
	for _, r := range tt.Results {
		maxName = max(maxName, runewidth.StringWidth(r.Name))
		maxDur = max(maxDur, runewidth.StringWidth(r.Duration))
	}
	maxName = min(maxName, max(t.width-tableChrome, minNameWidth))

	for _, r := range tt.Results {
		icon, style := t.statusIconStyle(r.Status)
		sb.WriteString("  ")
		sb.WriteString(style.Render(icon + " "))
		sb.WriteString(padRight(runewidth.Truncate(r.Name, maxName, "..."), maxName))
		if r.Count > 0 {
			sb.WriteString(t.theme.Muted.Render(fmt.Sprintf("  %d tests", r.Count)))
		}
		if r.Duration != "" {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render(padLeft(r.Duration, maxDur)))
		}
		if r.Details != "" && r.Status != pattern.StatusPass {
			for _, line := range strings.Split(r.Details, "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderDiff(d *pattern.Diff) string {
	if len(d.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	if d.Label != "" {
		sb.WriteString(t.theme.Bold.Render(d.Label))
		sb.WriteString("\n")
	}
	lineWidth := max(t.width-6, minNameWidth)
	for _, item := range d.Items {
		sb.WriteString("  ")
		sb.WriteString(t.theme.Primary.Render(item.Location))
		sb.WriteString("\n    ")
		sb.WriteString(t.theme.Success.Render(t.theme.Icons.Ref + " " + runewidth.Truncate(item.Reference, lineWidth, "...")))
		sb.WriteString("\n    ")
		sb.WriteString(t.theme.Error.Render(t.theme.Icons.Cand + " " + runewidth.Truncate(item.Candidate, lineWidth, "...")))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) iconStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return t.theme.Icons.Pass, t.theme.Success
	case "error":
		return t.theme.Icons.Fail, t.theme.Error
	case "warning":
		return t.theme.Icons.Warn, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Primary
	}
}

func (t *Terminal) statusIconStyle(status string) (string, lipgloss.Style) {
	switch status {
	case pattern.StatusPass:
		return t.theme.Icons.Pass, t.theme.Success
	case pattern.StatusFail:
		return t.theme.Icons.Fail, t.theme.Error
	case pattern.StatusSkip:
		return t.theme.Icons.Skip, t.theme.Warning
	default:
		return t.theme.Icons.Info, t.theme.Muted
	}
}

// padRight and padLeft pad to a display width, so wide runes line up.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
