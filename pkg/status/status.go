// Package status models the outcome of checking test output files and the
// packages that own them.
//
// Statuses only move in one direction: a file or package that failed can
// never become OK again, and an indeterminate result (the reference itself
// was unusable) overrides everything else.
package status

import (
	"fmt"
	"sort"
)

// Status is the state of a file or package check.
type Status int

const (
	Unknown Status = iota
	OK
	Failed
	Indeterminate
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "UNKNOWN"
	case OK:
		return "OK"
	case Failed:
		return "FAILED"
	case Indeterminate:
		return "INDETERMINATE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ElapsedExcluded marks an elapsed time that must not be aggregated.
const ElapsedExcluded = -1.0

// Transition returns the status that results from requesting req while in
// cur. Requests that would improve a Failed or Indeterminate status are
// ignored, as are requests for Unknown.
func Transition(cur, req Status) Status {
	switch req {
	case OK:
		if cur == Unknown || cur == OK {
			return OK
		}
	case Failed:
		if cur != Indeterminate {
			return Failed
		}
	case Indeterminate:
		return Indeterminate
	}
	return cur
}

// Report counts the test units of one output file.
type Report struct {
	OK      int
	Skipped int
	Failed  int
}

// Total returns the number of units in the report.
func (r Report) Total() int {
	return r.OK + r.Skipped + r.Failed
}

// Add returns the element-wise sum of r and o.
func (r Report) Add(o Report) Report {
	return Report{OK: r.OK + o.OK, Skipped: r.Skipped + o.Skipped, Failed: r.Failed + o.Failed}
}

// Unassessed is the report of a file whose content was never judged: the
// whole file counts as one skipped unit.
var Unassessed = Report{Skipped: 1}

// File is the status of one test output file.
type File struct {
	Status      Status
	Report      Report
	ElapsedTime float64
	Path        string // absolute path of the output, or of its .fail sibling
}

// NewFile returns an unassessed file with the given initial status.
func NewFile(path string, st Status) *File {
	f := &File{Report: Unassessed, Path: path}
	f.SetStatus(st)
	return f
}

// SetStatus requests a status change. Entering Indeterminate moves failed
// units to skipped and excludes the file from timing.
func (f *File) SetStatus(req Status) {
	prev := f.Status
	f.Status = Transition(f.Status, req)
	if f.Status == Indeterminate && prev != Indeterminate {
		f.Report = Report{OK: f.Report.OK, Skipped: f.Report.Skipped + f.Report.Failed}
		f.ElapsedTime = ElapsedExcluded
	}
}

// Package is the status of one package and of the output files it owns,
// keyed by path relative to the package output directory.
type Package struct {
	Name        string
	Status      Status
	ElapsedTime float64
	Files       map[string]*File
}

// NewPackage returns a package in the Unknown state with no files.
func NewPackage(name string) *Package {
	return &Package{Name: name, Files: make(map[string]*File)}
}

// SetStatus requests a status change for the package.
func (p *Package) SetStatus(req Status) {
	prev := p.Status
	p.Status = Transition(p.Status, req)
	if p.Status == Indeterminate && prev != Indeterminate {
		p.ElapsedTime = ElapsedExcluded
	}
}

// Paths returns the relative file paths in sorted order.
func (p *Package) Paths() []string {
	paths := make([]string, 0, len(p.Files))
	for rel := range p.Files {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths
}

// Finish folds every file status into the package and then requests OK,
// which only sticks if nothing failed or was indeterminate.
func (p *Package) Finish() {
	for _, rel := range p.Paths() {
		p.SetStatus(p.Files[rel].Status)
	}
	p.SetStatus(OK)
}

// Totals sums the reports of all files.
func (p *Package) Totals() Report {
	var total Report
	for _, f := range p.Files {
		total = total.Add(f.Report)
	}
	return total
}

// HasFailed reports whether any file is Failed.
func (p *Package) HasFailed() bool {
	for _, f := range p.Files {
		if f.Status == Failed {
			return true
		}
	}
	return false
}
