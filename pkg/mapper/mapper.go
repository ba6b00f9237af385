// Package mapper converts check, comparison and report results into
// visualization patterns.
package mapper

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dkoosis/pkgcmp/pkg/pattern"
	"github.com/dkoosis/pkgcmp/pkg/status"
)

const (
	kindSuccess = "success"
	kindError   = "error"
	kindWarning = "warning"
	kindInfo    = "info"
)

// count formats n with digit grouping, e.g. 12,345. Printers are not
// shared between goroutines.
func count(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// statusTitle returns "Ok", "Failed", "Indeterminate" and so on.
// A Caser keeps state between calls, so each call builds its own.
func statusTitle(s status.Status) string {
	return cases.Title(language.English).String(strings.ToLower(s.String()))
}

func itemStatus(s status.Status) string {
	switch s {
	case status.OK:
		return pattern.StatusPass
	case status.Indeterminate:
		return pattern.StatusSkip
	default:
		return pattern.StatusFail
	}
}

// formatElapsed formats seconds; excluded or unknown times format as "".
func formatElapsed(secs float64) string {
	switch {
	case secs <= 0:
		return ""
	case secs < 1:
		return fmt.Sprintf("%dms", int(secs*1000))
	default:
		return fmt.Sprintf("%.1fs", secs)
	}
}

// withElapsed appends the formatted time in parentheses, if known.
func withElapsed(label string, secs float64) string {
	if d := formatElapsed(secs); d != "" {
		return label + " (" + d + ")"
	}
	return label
}

func breakdown(r status.Report) string {
	return fmt.Sprintf("%s ok, %s skipped, %s failed", count(r.OK), count(r.Skipped), count(r.Failed))
}

func reportMetrics(r status.Report) []pattern.SummaryItem {
	passedKind := kindSuccess
	if r.Failed > 0 {
		passedKind = kindInfo
	}
	metrics := []pattern.SummaryItem{
		{Label: "Tests passed", Value: count(r.OK), Kind: passedKind},
	}
	if r.Skipped > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Tests skipped", Value: count(r.Skipped), Kind: kindWarning})
	}
	if r.Failed > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: "Tests failed", Value: count(r.Failed), Kind: kindError})
	}
	return metrics
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
