// Package pattern defines the semantic data types pkgcmp renders.
// Patterns are pure data; renderers decide presentation.
package pattern

// PatternType identifies the kind of visualization pattern.
type PatternType string

const (
	PatternTypeSummary   PatternType = "summary"
	PatternTypeTestTable PatternType = "test-table"
	PatternTypeDiff      PatternType = "diff"
)

// Pattern is the interface all visualization patterns implement.
type Pattern interface {
	Type() PatternType
}
