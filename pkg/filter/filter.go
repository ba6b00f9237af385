// Package filter normalizes transcripts before they are compared.
//
// A filter is scoped to packages by a regular expression and carries one
// action. Filters run in order over the whole line sequence, so a later
// filter sees the output of every earlier one.
package filter

import (
	"regexp"
	"strings"
)

// DefaultEngines are the identifying tokens the built-in default filter
// masks, so that directory names such as test.fastr and test.gnur do not
// cause false mismatches.
var DefaultEngines = []string{"fastr", "gnur"}

const (
	runitProtocolMarker = "RUNIT TEST PROTOCOL -- "
	runitProtocolMasked = "RUNIT TEST PROTOCOL -- <date_time>"
	enginePlaceholder   = "<engine>"
)

// Action is one of Delete, DeleteLine, Replace, ReplaceLine or Substitute.
// The set is closed; actions are chosen when a filter is parsed.
type Action interface {
	// Op returns the single-character operator used in filter files.
	Op() byte
	apply(lines []string)
}

// Delete removes every occurrence of Sub from every line.
type Delete struct {
	Sub string
}

// DeleteLine blanks every line containing Sub together with Before
// preceding and After following lines.
type DeleteLine struct {
	Sub    string
	Before int
	After  int
}

// Replace substitutes New for every occurrence of Old.
type Replace struct {
	Old string
	New string
}

// ReplaceLine replaces a whole line containing Sub by Line.
type ReplaceLine struct {
	Sub  string
	Line string
}

// Substitute applies a regular expression substitution to every line.
type Substitute struct {
	Pattern *regexp.Regexp
	Repl    string
}

func (Delete) Op() byte      { return 'd' }
func (DeleteLine) Op() byte  { return 'D' }
func (Replace) Op() byte     { return 'r' }
func (ReplaceLine) Op() byte { return 'R' }
func (Substitute) Op() byte  { return 's' }

func (a Delete) apply(lines []string) {
	if a.Sub == "" {
		return
	}
	for i, l := range lines {
		// Removing an occurrence can join two halves into a new one.
		for strings.Contains(l, a.Sub) {
			l = strings.ReplaceAll(l, a.Sub, "")
		}
		lines[i] = l
	}
}

func (a DeleteLine) apply(lines []string) {
	if a.Sub == "" {
		return
	}
	// Matches are taken from the input to this filter, not from lines
	// blanked by an earlier window.
	var hits []int
	for i, l := range lines {
		if strings.Contains(l, a.Sub) {
			hits = append(hits, i)
		}
	}
	blanked := make([]bool, len(lines))
	for _, i := range hits {
		lo := max(0, i-a.Before)
		hi := min(len(lines)-1, i+a.After)
		for j := lo; j <= hi; j++ {
			if blanked[j] {
				continue
			}
			lines[j] = ""
			blanked[j] = true
		}
	}
}

func (a Replace) apply(lines []string) {
	if a.Old == "" {
		return
	}
	for i, l := range lines {
		lines[i] = strings.ReplaceAll(l, a.Old, a.New)
	}
}

func (a ReplaceLine) apply(lines []string) {
	for i, l := range lines {
		if strings.Contains(l, a.Sub) {
			lines[i] = a.Line
		}
	}
}

func (a Substitute) apply(lines []string) {
	for i, l := range lines {
		lines[i] = a.Pattern.ReplaceAllString(l, a.Repl)
	}
}

// Filter is an immutable, package-scoped transform.
type Filter struct {
	// Package selects the packages the filter applies to. Nil matches all.
	Package *regexp.Regexp
	Action  Action
	// Source is the filter file line the filter was parsed from.
	Source string
}

// Matches reports whether the filter applies to pkg. An empty package name
// matches every filter; it is used when previewing filters.
func (f Filter) Matches(pkg string) bool {
	return pkg == "" || f.Package == nil || f.Package.MatchString(pkg)
}

func (f Filter) String() string {
	if f.Source != "" {
		return f.Source
	}
	return string(f.Action.Op())
}

// Set is an ordered list of filters.
type Set []Filter

// Select returns the filters that apply to pkg, preserving order.
func (s Set) Select(pkg string) Set {
	var out Set
	for _, f := range s {
		if f.Matches(pkg) {
			out = append(out, f)
		}
	}
	return out
}

// Apply runs the filters over a copy of lines. An empty set applies the
// built-in default with DefaultEngines.
func Apply(lines []string, set Set) []string {
	if len(set) == 0 {
		return ApplyDefault(lines, DefaultEngines)
	}
	out := make([]string, len(lines))
	copy(out, lines)
	for _, f := range set {
		f.Action.apply(out)
	}
	return out
}

// ApplyDefault masks the RUnit protocol timestamp and replaces every
// engine token with a shared placeholder.
func ApplyDefault(lines []string, engines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.Contains(l, runitProtocolMarker) {
			out[i] = runitProtocolMasked
			continue
		}
		for _, e := range engines {
			if e != "" {
				l = strings.ReplaceAll(l, e, enginePlaceholder)
			}
		}
		out[i] = l
	}
	return out
}

// Pipeline binds a filter set to the engine tokens used when no filter
// applies to a package.
type Pipeline struct {
	Set     Set
	Engines []string
}

// Apply selects the filters for pkg and runs them over lines.
func (p Pipeline) Apply(lines []string, pkg string) []string {
	selected := p.Set.Select(pkg)
	if len(selected) == 0 {
		engines := p.Engines
		if engines == nil {
			engines = DefaultEngines
		}
		return ApplyDefault(lines, engines)
	}
	return Apply(lines, selected)
}
