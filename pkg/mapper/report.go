package mapper

import (
	"fmt"

	"github.com/dkoosis/pkgcmp/pkg/pattern"
	"github.com/dkoosis/pkgcmp/pkg/report"
	"github.com/dkoosis/pkgcmp/pkg/status"
)

// PackageReport is the parsed testfile_status of one package.
type PackageReport struct {
	Package string
	Entries []report.Entry
}

// FromReports converts stored reports into a Summary and a TestTable with
// one row per package.
func FromReports(reports []PackageReport) []pattern.Pattern {
	var grand status.Report
	var elapsed float64
	failedPkgs := 0
	items := make([]pattern.TestTableItem, 0, len(reports))
	for _, r := range reports {
		total, secs := report.Totals(r.Entries)
		grand = grand.Add(total)
		elapsed += secs

		st := pattern.StatusPass
		switch {
		case total.Failed > 0:
			st = pattern.StatusFail
			failedPkgs++
		case total.OK == 0 && total.Skipped > 0:
			st = pattern.StatusSkip
		}
		items = append(items, pattern.TestTableItem{
			Name:     r.Package,
			Status:   st,
			Duration: formatElapsed(secs),
			Count:    total.Total(),
			Details:  breakdown(total),
		})
	}

	metrics := reportMetrics(grand)
	metrics = append(metrics, pattern.SummaryItem{Label: "Packages", Value: count(len(reports)), Kind: kindInfo})
	label := fmt.Sprintf("REPORT: %s packages, %s tests", count(len(reports)), count(grand.Total()))
	if failedPkgs > 0 {
		label = fmt.Sprintf("REPORT: %s/%s packages with failures, %s/%s tests failed",
			count(failedPkgs), count(len(reports)), count(grand.Failed), count(grand.Total()))
	}
	label = withElapsed(label, elapsed)

	patterns := []pattern.Pattern{&pattern.Summary{Label: label, Kind: pattern.SummaryKindReport, Metrics: metrics}}
	if len(items) > 0 {
		patterns = append(patterns, &pattern.TestTable{Label: "Packages", Results: items})
	}
	return patterns
}
