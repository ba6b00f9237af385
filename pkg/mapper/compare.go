package mapper

import (
	"fmt"
	"strings"

	"github.com/dkoosis/pkgcmp/pkg/fuzzy"
	"github.com/dkoosis/pkgcmp/pkg/pattern"
)

const maxLineLen = 200

// FromComparison converts the result of comparing two transcripts into a
// Summary and, for mismatches, a Diff.
func FromComparison(refName, candName string, res fuzzy.Result) []pattern.Pattern {
	label := fmt.Sprintf("%s %s vs %s", strings.ToUpper(res.Verdict.String()), refName, candName)
	var metrics []pattern.SummaryItem
	switch res.Verdict {
	case fuzzy.Malformed:
		metrics = append(metrics, pattern.SummaryItem{
			Label: "Anchors", Value: "missing start or end marker", Kind: kindWarning,
		})
	default:
		passedKind := kindSuccess
		if res.Verdict == fuzzy.Mismatch {
			passedKind = kindInfo
		}
		metrics = append(metrics, pattern.SummaryItem{Label: "Statements passed", Value: count(res.Passed), Kind: passedKind})
		if res.Failed > 0 {
			metrics = append(metrics, pattern.SummaryItem{Label: "Statements failed", Value: count(res.Failed), Kind: kindError})
		}
	}
	patterns := []pattern.Pattern{&pattern.Summary{Label: label, Kind: pattern.SummaryKindCompare, Metrics: metrics}}

	if len(res.Mismatches) > 0 {
		items := make([]pattern.DiffItem, 0, len(res.Mismatches))
		for _, m := range res.Mismatches {
			items = append(items, pattern.DiffItem{
				Location:  fmt.Sprintf("%s:%d %s:%d", refName, m.RefLine, candName, m.CandLine),
				Reference: truncateString(m.Reference, maxLineLen),
				Candidate: truncateString(m.Candidate, maxLineLen),
			})
		}
		patterns = append(patterns, &pattern.Diff{
			Label: fmt.Sprintf("Mismatches (%d)", len(items)),
			Items: items,
		})
	}
	return patterns
}
