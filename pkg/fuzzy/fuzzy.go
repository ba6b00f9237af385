// Package fuzzy compares a reference transcript with a candidate transcript
// line by line, tolerating the cosmetic differences two implementations of
// the same interpreter are expected to show.
//
// Every prompt-delimited statement in the candidate transcript is counted
// as passed or failed. After a divergence both cursors are resynchronized at
// the next reference statement, so one bad statement does not cascade
// through the rest of the file.
package fuzzy

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkoosis/pkgcmp/internal/logging"
)

// Verdict is the outcome of a comparison.
type Verdict int

const (
	Malformed Verdict = -1 // comparison anchors missing
	Equal     Verdict = 0
	Mismatch  Verdict = 1
)

func (v Verdict) String() string {
	switch v {
	case Malformed:
		return "malformed"
	case Equal:
		return "equal"
	case Mismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Default anchors.
const (
	DefaultStartMarker = "Type 'q()' to quit R."
	DefaultEndMarker   = "Time elapsed:"
	DefaultPrompt      = "> "
)

const (
	graphicsWarning   = "FastR does not support graphics package"
	unusedConnection  = "closing unused connection"
	timingHeader      = "   user  system elapsed"
	visibleNull       = "NULL"
	keywordError      = "Error"
	keywordWarning    = "Warning"
	commentPrefix     = "#"
	sessionInfoFunc   = "sessionInfo"
	extSoftVersionFun = "extSoftVersion"
)

// volatileFunctions print environment details whose content is never
// compared.
var volatileFunctions = []string{sessionInfoFunc, extSoftVersionFun}

// Result is the outcome of Compare. Passed and Failed count candidate
// statements and are meaningful unless Verdict is Malformed.
type Result struct {
	Verdict    Verdict
	Passed     int
	Failed     int
	Mismatches []LineDiff
}

// Tuple returns the result as (verdict, passed, failed).
func (r Result) Tuple() (Verdict, int, int) {
	return r.Verdict, r.Passed, r.Failed
}

// LineDiff records one diverging line pair. Line numbers are 1-based and
// point at the start of the enclosing statement.
type LineDiff struct {
	RefLine   int
	CandLine  int
	Reference string
	Candidate string
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithLogger sets the logger used for mismatch and anchor diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartMarker sets the text whose line precedes the compared content.
func WithStartMarker(s string) Option {
	return func(c *Comparator) {
		if s != "" {
			c.startMarker = s
		}
	}
}

// WithEndMarker sets the text that ends the compared reference content.
func WithEndMarker(s string) Option {
	return func(c *Comparator) {
		if s != "" {
			c.endMarker = s
		}
	}
}

// WithPrompt sets the interactive prompt that starts statements.
func WithPrompt(s string) Option {
	return func(c *Comparator) {
		if s != "" {
			c.prompt = s
		}
	}
}

// Comparator compares transcripts. It holds configuration only and is safe
// for concurrent use.
type Comparator struct {
	logger      *slog.Logger
	startMarker string
	endMarker   string
	prompt      string
}

// New returns a Comparator with the default anchors.
func New(opts ...Option) *Comparator {
	c := &Comparator{
		logger:      logging.Discard(),
		startMarker: DefaultStartMarker,
		endMarker:   DefaultEndMarker,
		prompt:      DefaultPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// findStart returns the first non-blank line after the start marker, or -1.
func (c *Comparator) findStart(lines []string) int {
	for i, l := range lines {
		if !strings.Contains(l, c.startMarker) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) != "" {
				return j
			}
		}
	}
	return -1
}

// findEnd returns the index of the end marker or len(lines).
func (c *Comparator) findEnd(lines []string) int {
	for i, l := range lines {
		if strings.Contains(l, c.endMarker) {
			return i
		}
	}
	return len(lines)
}

// capturePrompt returns the prompt if the line at idx starts with it.
func (c *Comparator) capturePrompt(lines []string, idx int) string {
	if idx < len(lines) && strings.HasPrefix(lines[idx], c.prompt) {
		return c.prompt
	}
	return ""
}
