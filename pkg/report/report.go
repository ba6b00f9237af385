// Package report reads and writes the per-package testfile_status file.
//
// The file starts with a comment header and holds one line per assessed
// output file:
//
//	# <file path> <tests passed> <tests skipped> <tests failed>
//	tests/testthat.Rout 212 3 1 41.2
//
// The trailing elapsed time is optional when reading.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dkoosis/pkgcmp/pkg/status"
)

// FileName is the name of the report inside a package output directory.
const FileName = "testfile_status"

// Header is the first line of every report.
const Header = "# <file path> <tests passed> <tests skipped> <tests failed>"

// FailSuffix marks the output of a test run that did not complete.
const FailSuffix = ".fail"

// ErrFormat is returned for report lines that cannot be parsed.
var ErrFormat = errors.New("malformed report line")

var lineRe = regexp.MustCompile(
	`^(.+?) (-?\d+) (-?\d+) (-?\d+)(?: (-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?))?$`,
)

// Entry is one report line.
type Entry struct {
	Path        string // relative to the package output directory
	Report      status.Report
	ElapsedTime float64
}

// Write writes the header followed by one line per entry.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, e := range entries {
		fmt.Fprintf(bw, "%s %d %d %d %s\n", e.Path,
			e.Report.OK, e.Report.Skipped, e.Report.Failed,
			strconv.FormatFloat(e.ElapsedTime, 'f', -1, 64))
	}
	return bw.Flush()
}

// WriteFile writes entries to dir/testfile_status.
func WriteFile(dir string, entries []Entry) error {
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}

// Entries lists the report entries of pkg in path order. dir is the
// package output directory the relative paths refer to. A file whose
// output is gone is recorded under its .fail sibling when it failed;
// otherwise it is left out.
func Entries(dir string, pkg *status.Package, logger *slog.Logger) []Entry {
	var entries []Entry
	for _, rel := range pkg.Paths() {
		f := pkg.Files[rel]
		e := Entry{Path: rel, Report: f.Report, ElapsedTime: f.ElapsedTime}
		switch {
		case exists(filepath.Join(dir, rel)):
		case f.Status == status.Failed && exists(filepath.Join(dir, rel+FailSuffix)):
			e.Path = rel + FailSuffix
		default:
			logger.Info("test output does not exist", "package", pkg.Name, "file", rel)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Parse reads a report. Blank and comment lines are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: %w: %q", n, ErrFormat, line)
		}
		e := Entry{Path: m[1]}
		e.Report.OK, _ = strconv.Atoi(m[2])
		e.Report.Skipped, _ = strconv.Atoi(m[3])
		e.Report.Failed, _ = strconv.Atoi(m[4])
		if m[5] != "" {
			elapsed, err := strconv.ParseFloat(m[5], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", n, ErrFormat, err)
			}
			e.ElapsedTime = elapsed
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return entries, nil
}

// ParseFile reads the report at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Glob returns the reports below root, one per package directory, sorted.
func Glob(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), "**/"+FileName)
	if err != nil {
		return nil, fmt.Errorf("glob reports in %s: %w", root, err)
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

// Totals sums the entry reports. Elapsed times below zero are excluded
// from the returned time.
func Totals(entries []Entry) (status.Report, float64) {
	var total status.Report
	var elapsed float64
	for _, e := range entries {
		total = total.Add(e.Report)
		if e.ElapsedTime > 0 {
			elapsed += e.ElapsedTime
		}
	}
	return total, elapsed
}
