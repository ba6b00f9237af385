package fuzzy

import (
	"fmt"
	"strings"

	"github.com/dkoosis/pkgcmp/pkg/transcript"
)

var blankRemover = strings.NewReplacer(" ", "", "\t", "")

// cursor walks one transcript. stmt is the index of the line that began
// the statement the cursor is currently in.
type cursor struct {
	lines  []string
	end    int
	prompt string // empty when the transcript showed no prompt
	pos    int
	stmt   int
}

// next skips blank lines and returns the current line without prompt and
// surrounding whitespace. It reports false once the cursor reaches end.
func (c *cursor) next() (string, bool) {
	for c.pos < c.end {
		line := c.lines[c.pos]
		if c.prompt != "" {
			line = strings.TrimPrefix(line, c.prompt)
		}
		line = strings.TrimSpace(line)
		if line != "" {
			return line, true
		}
		c.pos++
	}
	return "", false
}

// raw returns the unmodified line at i, or "" outside the transcript.
func (c *cursor) raw(i int) string {
	if i < 0 || i >= len(c.lines) {
		return ""
	}
	return c.lines[i]
}

// isStatementBegin reports whether line starts a statement: it carries the
// prompt and something other than a comment follows it.
func isStatementBegin(prompt, line string) bool {
	if prompt == "" || !strings.HasPrefix(line, prompt) {
		return false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, prompt))
	return rest != "" && !strings.HasPrefix(rest, commentPrefix)
}

// findLine returns the first index at or after from whose line equals
// line exactly, or -1. An empty line never matches.
func findLine(line string, lines []string, from int) int {
	if line == "" {
		return -1
	}
	for i := max(from, 0); i < len(lines); i++ {
		if lines[i] == line {
			return i
		}
	}
	return -1
}

func equalIgnoringBlanks(a, b string) bool {
	return blankRemover.Replace(a) == blankRemover.Replace(b)
}

// Compare compares the reference transcript with the candidate.
//
// Content is compared from the first non-blank line after the start marker
// in both transcripts up to the end marker of the reference; the candidate
// may continue past it. Missing start markers yield Malformed.
func (c *Comparator) Compare(ref, cand transcript.Transcript) Result {
	refStart := c.findStart(ref.Lines)
	refEnd := c.findEnd(ref.Lines)
	candStart := c.findStart(cand.Lines)
	if refStart < 0 || refEnd == 0 || candStart < 0 {
		if refStart < 0 {
			c.logger.Info("malformed start of reference output", "file", ref.Name)
		}
		if refEnd == 0 {
			c.logger.Info("malformed end of reference output", "file", ref.Name)
		}
		if candStart < 0 {
			c.logger.Info("malformed start of candidate output", "file", cand.Name)
		}
		return Result{Verdict: Malformed}
	}

	r := &cursor{lines: ref.Lines, end: refEnd, pos: refStart}
	d := &cursor{lines: cand.Lines, end: len(cand.Lines), pos: candStart}
	r.prompt = c.capturePrompt(ref.Lines, refStart)
	d.prompt = c.capturePrompt(cand.Lines, candStart)

	passed := make(map[int]struct{})
	failed := make(map[int]struct{})
	var mismatches []LineDiff
	overall := Equal

	refLine, refOK := r.next()
	candLine, candOK := d.next()
	r.stmt, d.stmt = r.pos, d.pos

	for {
		if !refOK || !candOK {
			if refOK {
				c.logger.Info("candidate output is shorter than reference output",
					"reference", ref.Name, "candidate", cand.Name)
				overall = Mismatch
			}
			break
		}

		sync, mismatch := false, false
		if refLine != candLine {
			switch {
			case strings.HasPrefix(candLine, keywordWarning) && strings.Contains(d.raw(d.pos+1), graphicsWarning):
				d.pos += 2
				if strings.HasPrefix(d.raw(d.pos), visibleNull) && !strings.HasPrefix(refLine, visibleNull) {
					d.pos++
				}
				sync = true
			case strings.HasPrefix(refLine, keywordWarning) && r.pos+1 < r.end && strings.Contains(r.raw(r.pos+1), unusedConnection):
				r.pos += 2
				sync = true
			case r.pos > 0 && strings.HasPrefix(r.raw(r.pos-1), timingHeader):
				r.pos++
				d.pos++
				sync = true
			case strings.Contains(refLine, keywordError) || strings.Contains(refLine, keywordWarning):
				// Only the presence of the diagnostic is compared; its
				// wording differs too often between implementations.
				keyword := keywordWarning
				if strings.Contains(refLine, keywordError) {
					keyword = keywordError
				}
				if !strings.Contains(candLine, keyword) {
					mismatch = true
				} else {
					r.pos++
					d.pos++
					sync = true
				}
			case c.inVolatileStatement(r, d):
				r.pos++
				d.pos++
				sync = true
			default:
				mismatch = !equalIgnoringBlanks(refLine, candLine)
			}
		}

		if mismatch {
			if d.stmt < 0 {
				panic(fmt.Sprintf("fuzzy: no candidate statement at line %d of %s", d.pos+1, cand.Name))
			}
			m := LineDiff{RefLine: r.stmt + 1, CandLine: d.stmt + 1, Reference: refLine, Candidate: candLine}
			mismatches = append(mismatches, m)
			c.logger.Info("statement output differs",
				"reference", fmt.Sprintf("%s:%d", ref.Name, m.RefLine),
				"candidate", fmt.Sprintf("%s:%d", cand.Name, m.CandLine),
				"expected", refLine, "got", candLine)

			r.pos++
			d.pos++
			sync = true
			delete(passed, d.stmt)
			failed[d.stmt] = struct{}{}
			overall = Mismatch
		} else if _, bad := failed[d.stmt]; !bad {
			passed[d.stmt] = struct{}{}
		}

		if sync {
			if r.pos == r.end-1 {
				// Only the trailing line of the reference is left.
				break
			}
			resync(r, d)
		} else {
			r.pos++
			d.pos++
		}

		refLine, refOK = r.next()
		candLine, candOK = d.next()
		if refOK && isStatementBegin(r.prompt, r.lines[r.pos]) {
			r.stmt = r.pos
		}
		if candOK && isStatementBegin(d.prompt, d.lines[d.pos]) {
			d.stmt = d.pos
		}
	}

	res := Result{Verdict: overall, Passed: len(passed), Failed: len(failed)}
	if overall == Mismatch {
		res.Mismatches = mismatches
	}
	c.logger.Debug("compared transcripts",
		"reference", ref.Name, "candidate", cand.Name,
		"verdict", res.Verdict, "passed", res.Passed, "failed", res.Failed)
	return res
}

// resync advances the reference cursor to the next statement whose exact
// text occurs in the rest of the candidate and moves the candidate cursor
// to that occurrence. Without a match the candidate cursor stays put.
func resync(r, d *cursor) {
	found := -1
	for r.pos < r.end {
		if isStatementBegin(r.prompt, r.lines[r.pos]) {
			found = findLine(r.lines[r.pos], d.lines, d.pos)
			if found > 0 {
				break
			}
		}
		r.pos++
	}
	if found > 0 {
		d.pos = found
	}
}

// inVolatileStatement reports whether both current statements call a
// function whose output is environment dependent.
func (c *Comparator) inVolatileStatement(r, d *cursor) bool {
	if r.stmt < 0 || d.stmt < 0 {
		return false
	}
	refStmt, candStmt := r.raw(r.stmt), d.raw(d.stmt)
	for _, fn := range volatileFunctions {
		if strings.Contains(refStmt, fn) && strings.Contains(candStmt, fn) {
			return true
		}
	}
	return false
}
