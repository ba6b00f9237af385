package pattern

// Diff lists diverging line pairs of a reference and a candidate transcript.
type Diff struct {
	Label string
	Items []DiffItem
}

// DiffItem is one diverging line pair.
type DiffItem struct {
	Location  string // where the enclosing statements start
	Reference string
	Candidate string
}

func (d *Diff) Type() PatternType { return PatternTypeDiff }
