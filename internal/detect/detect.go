// Package detect recognizes transcripts produced by a known unit-test
// framework and extracts the summary the framework printed.
package detect

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Framework identifies a recognized test framework.
type Framework int

const (
	None     Framework = iota
	Testthat           // testthat, recognized by its output file name
	RUnit              // RUnit, recognized by its test protocol header
)

func (f Framework) String() string {
	switch f {
	case Testthat:
		return "testthat"
	case RUnit:
		return "runit"
	default:
		return "none"
	}
}

const (
	testthatFile     = "testthat.Rout"
	testthatResults  = "testthat results"
	runitProtocol    = "RUNIT TEST PROTOCOL"
	runitTotal       = "Number of test functions"
	runitErrors      = "Number of errors"
	runitFailures    = "Number of failures"
	testthatOK       = "OK"
	testthatSkipped  = "SKIPPED"
	testthatFailed   = "FAILED"
	testthatPartTrim = " \t|[]"
)

// ErrFrameworkSummary is returned when a framework was recognized but its
// summary could not be parsed. Callers fall back to a fuzzy comparison.
var ErrFrameworkSummary = errors.New("unparsable test framework summary")

// Summary is the pass/skip/fail count reported by a test framework.
// The counts are meaningless when Framework is None.
type Summary struct {
	Framework Framework
	OK        int
	Skipped   int
	Failed    int
}

// Detected reports whether a framework was recognized.
func (s Summary) Detected() bool {
	return s.Framework != None
}

// Total returns the number of tests in the summary, or -1 when the summary
// is not usable.
func (s Summary) Total() int {
	if !s.Detected() || s.OK < 0 || s.Skipped < 0 || s.Failed < 0 {
		return -1
	}
	return s.OK + s.Skipped + s.Failed
}

// Detect examines one output file. A zero Summary and nil error mean no
// framework was recognized. When a framework is recognized but its summary
// cannot be parsed, the returned Summary still names the framework and the
// error wraps ErrFrameworkSummary.
func Detect(filename string, lines []string) (Summary, error) {
	switch {
	case filepath.Base(filename) == testthatFile:
		ok, skipped, failed, err := parseTestthat(lines)
		return Summary{Framework: Testthat, OK: ok, Skipped: skipped, Failed: failed}, err
	case isRUnit(lines):
		ok, skipped, failed, err := parseRUnit(lines)
		return Summary{Framework: RUnit, OK: ok, Skipped: skipped, Failed: failed}, err
	default:
		return Summary{}, nil
	}
}

func isRUnit(lines []string) bool {
	return indexContaining(lines, runitProtocol) >= 0
}

func indexContaining(lines []string, sub string) int {
	for i, l := range lines {
		if strings.Contains(l, sub) {
			return i
		}
	}
	return -1
}

// parseTestthat reads the line following "testthat results", e.g.
//
//	OK: 2 SKIPPED: 0 FAILED: 0
func parseTestthat(lines []string) (ok, skipped, failed int, err error) {
	i := indexContaining(lines, testthatResults)
	if i < 0 {
		return 0, 0, 0, fmt.Errorf("%w: line %q not found", ErrFrameworkSummary, testthatResults)
	}
	if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], testthatOK) {
		return 0, 0, 0, fmt.Errorf("%w: no status line after line %d", ErrFrameworkSummary, i+1)
	}
	line := lines[i+1]
	idxSkipped := strings.Index(line, testthatSkipped)
	idxFailed := strings.Index(line, testthatFailed)
	if idxSkipped < 0 || idxFailed < 0 || idxFailed < idxSkipped {
		return 0, 0, 0, fmt.Errorf("%w: status line %q", ErrFrameworkSummary, line)
	}

	if ok, err = parseTestthatPart(line[:idxSkipped], testthatOK); err != nil {
		return 0, 0, 0, err
	}
	if skipped, err = parseTestthatPart(line[idxSkipped:idxFailed], testthatSkipped); err != nil {
		return 0, 0, 0, err
	}
	if failed, err = parseTestthatPart(line[idxFailed:], testthatFailed); err != nil {
		return 0, 0, 0, err
	}
	return ok, skipped, failed, nil
}

// parseTestthatPart parses a part such as "OK: 2".
func parseTestthatPart(part, label string) (int, error) {
	fields := strings.Split(part, ":")
	if len(fields) != 2 || strings.TrimSpace(fields[0]) != label {
		return 0, fmt.Errorf("%w: status part %q", ErrFrameworkSummary, part)
	}
	n, err := strconv.Atoi(strings.Trim(fields[1], testthatPartTrim))
	if err != nil {
		return 0, fmt.Errorf("%w: status part %q: %v", ErrFrameworkSummary, part, err)
	}
	return n, nil
}

// parseRUnit reads the RUnit protocol header:
//
//	RUNIT TEST PROTOCOL -- Thu Feb 08 10:54:42 2018
//	***********************************************
//	Number of test functions: 20
//	Number of errors: 0
//	Number of failures: 0
//
// RUnit has no notion of skipped tests.
func parseRUnit(lines []string) (ok, skipped, failed int, err error) {
	start := indexContaining(lines, runitProtocol)
	if start < 0 {
		return 0, 0, 0, fmt.Errorf("%w: line %q not found", ErrFrameworkSummary, runitProtocol)
	}
	total := 0
	for _, l := range lines[start:] {
		label, value, found := strings.Cut(l, ":")
		if !found {
			continue
		}
		switch {
		case strings.Contains(label, runitTotal):
			if total, err = runitCount(l, value); err != nil {
				return 0, 0, 0, err
			}
		case strings.Contains(label, runitErrors), strings.Contains(label, runitFailures):
			n, err := runitCount(l, value)
			if err != nil {
				return 0, 0, 0, err
			}
			failed += n
		}
	}
	return total - failed, 0, failed, nil
}

func runitCount(line, value string) (int, error) {
	// Only the text up to a following ':' belongs to the count.
	value, _, _ = strings.Cut(value, ":")
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: line %q: %v", ErrFrameworkSummary, line, err)
	}
	return n, nil
}
