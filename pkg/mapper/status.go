package mapper

import (
	"fmt"
	"sort"

	"github.com/dkoosis/pkgcmp/pkg/pattern"
	"github.com/dkoosis/pkgcmp/pkg/status"
)

// FromPackages converts checked packages into patterns.
// Returns: Summary + TestTable per failed or indeterminate package +
// TestTable for passing packages.
func FromPackages(pkgs []*status.Package) []pattern.Pattern {
	sorted := make([]*status.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		pi, pj := pkgPriority(sorted[i].Status), pkgPriority(sorted[j].Status)
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Name < sorted[j].Name
	})

	patterns := []pattern.Pattern{checkSummary(sorted)}

	var passItems []pattern.TestTableItem
	for _, p := range sorted {
		if p.Status == status.OK {
			total := p.Totals()
			passItems = append(passItems, pattern.TestTableItem{
				Name:     p.Name,
				Status:   pattern.StatusPass,
				Duration: formatElapsed(p.ElapsedTime),
				Count:    total.Total(),
			})
			continue
		}
		patterns = append(patterns, packageTable(p))
	}
	if len(passItems) > 0 {
		patterns = append(patterns, &pattern.TestTable{
			Label:   fmt.Sprintf("Passing Packages (%d)", len(passItems)),
			Results: passItems,
		})
	}
	return patterns
}

func checkSummary(pkgs []*status.Package) *pattern.Summary {
	byStatus := make(map[status.Status]int)
	var total status.Report
	var elapsed float64
	for _, p := range pkgs {
		byStatus[p.Status]++
		total = total.Add(p.Totals())
		if p.ElapsedTime > 0 {
			elapsed += p.ElapsedTime
		}
	}

	var metrics []pattern.SummaryItem
	if n := byStatus[status.Failed]; n > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: statusTitle(status.Failed), Value: count(n), Kind: kindError})
	}
	if n := byStatus[status.Indeterminate]; n > 0 {
		metrics = append(metrics, pattern.SummaryItem{Label: statusTitle(status.Indeterminate), Value: count(n), Kind: kindWarning})
	}
	metrics = append(metrics, reportMetrics(total)...)
	metrics = append(metrics, pattern.SummaryItem{Label: "Packages", Value: count(len(pkgs)), Kind: kindInfo})

	bad := byStatus[status.Failed] + byStatus[status.Indeterminate] + byStatus[status.Unknown]
	label := fmt.Sprintf("PASS %s packages", count(len(pkgs)))
	if bad > 0 {
		label = fmt.Sprintf("FAIL %s/%s packages not OK", count(bad), count(len(pkgs)))
	}
	return &pattern.Summary{Label: withElapsed(label, elapsed), Kind: pattern.SummaryKindCheck, Metrics: metrics}
}

func packageTable(p *status.Package) *pattern.TestTable {
	items := make([]pattern.TestTableItem, 0, len(p.Files))
	notOK := 0
	for _, rel := range p.Paths() {
		f := p.Files[rel]
		if f.Status != status.OK {
			notOK++
		}
		items = append(items, pattern.TestTableItem{
			Name:     rel,
			Status:   itemStatus(f.Status),
			Duration: formatElapsed(f.ElapsedTime),
			Count:    f.Report.Total(),
			Details:  breakdown(f.Report),
		})
	}
	return &pattern.TestTable{
		Label:   fmt.Sprintf("%s %s (%d/%d files)", statusTitle(p.Status), p.Name, notOK, len(p.Files)),
		Results: items,
	}
}

func pkgPriority(s status.Status) int {
	switch s {
	case status.Failed:
		return 0
	case status.Indeterminate:
		return 1
	case status.Unknown:
		return 2
	default:
		return 3
	}
}
