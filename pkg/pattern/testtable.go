package pattern

// Item statuses.
const (
	StatusPass = "pass"
	StatusFail = "fail"
	StatusSkip = "skip" // indeterminate: the reference could not judge it
)

// TestTable lists packages or test output files with their outcome.
type TestTable struct {
	Label   string
	Results []TestTableItem
}

// TestTableItem is a single package or output file.
type TestTableItem struct {
	Name     string
	Status   string // StatusPass, StatusFail or StatusSkip
	Duration string // formatted elapsed time, empty when unknown
	Count    int    // number of test units
	Details  string // per-unit breakdown or extra info
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
