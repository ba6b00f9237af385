package pattern

// SummaryKind identifies what produced a summary so renderers can dispatch
// on it.
type SummaryKind string

const (
	SummaryKindCheck   SummaryKind = "check"
	SummaryKindCompare SummaryKind = "compare"
	SummaryKindReport  SummaryKind = "report"
)

// Summary is a headline plus counts.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string // e.g. "Failed", "Tests passed"
	Value string // formatted value
	Kind  string // "success", "error", "warning", "info"; affects coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
