// Package pkgtest checks the test outputs of a candidate runtime against
// those of a reference runtime, one package at a time.
//
// For every reference output the matching candidate output is judged,
// either through the test framework summaries both printed or through a
// fuzzy comparison of the filtered transcripts. The outcome is recorded in
// a status.Package and persisted as the package's testfile_status report.
package pkgtest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/pkgcmp/internal/logging"
	"github.com/dkoosis/pkgcmp/pkg/filter"
	"github.com/dkoosis/pkgcmp/pkg/fuzzy"
	"github.com/dkoosis/pkgcmp/pkg/report"
	"github.com/dkoosis/pkgcmp/pkg/status"
)

// Job names a package and the directories holding the outputs of both
// runs.
type Job struct {
	Package string
	RefDir  string
	CandDir string
}

// Jobs builds jobs for packages laid out as <root>/<package>. Without
// names every package directory below candRoot is used.
func Jobs(refRoot, candRoot string, names []string) ([]Job, error) {
	if len(names) == 0 {
		entries, err := os.ReadDir(candRoot)
		if err != nil {
			return nil, fmt.Errorf("list candidate packages: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
	}
	jobs := make([]Job, 0, len(names))
	for _, n := range names {
		jobs = append(jobs, Job{
			Package: n,
			RefDir:  filepath.Join(refRoot, n),
			CandDir: filepath.Join(candRoot, n),
		})
	}
	return jobs, nil
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger for progress and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithComparator sets the comparator used for outputs without a test
// framework summary.
func WithComparator(cmp *fuzzy.Comparator) Option {
	return func(c *Checker) {
		if cmp != nil {
			c.comparator = cmp
		}
	}
}

// WithFilters sets the filters applied to both transcripts before a fuzzy
// comparison.
func WithFilters(p filter.Pipeline) Option {
	return func(c *Checker) { c.filters = p }
}

// WithParallelism bounds the number of packages checked at once.
// Values below one use the number of CPUs.
func WithParallelism(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithReport controls whether the testfile_status report is written.
func WithReport(write bool) Option {
	return func(c *Checker) { c.writeReport = write }
}

// WithDumpPreprocessed writes the filtered transcripts next to the
// originals before comparing them.
func WithDumpPreprocessed(dump bool) Option {
	return func(c *Checker) { c.dumpPreprocessed = dump }
}

// Checker checks packages. Its configuration is read-only once built, so
// one Checker serves concurrent packages.
type Checker struct {
	logger           *slog.Logger
	comparator       *fuzzy.Comparator
	filters          filter.Pipeline
	parallelism      int
	writeReport      bool
	dumpPreprocessed bool
}

// NewChecker returns a Checker that writes reports and uses default
// filters and comparator anchors unless configured otherwise.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		logger:      logging.Discard(),
		parallelism: runtime.NumCPU(),
		writeReport: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.comparator == nil {
		c.comparator = fuzzy.New(fuzzy.WithLogger(c.logger))
	}
	return c
}

// CheckPackage judges every reference output of job against the candidate
// output of the same relative path. Checking continues past failures so
// every file gets a status. Problems with the outputs, including missing
// reference outputs and unreadable files, are expressed as status; the
// only error is cancellation of ctx.
func (c *Checker) CheckPackage(ctx context.Context, job Job) (*status.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := c.logger.With("package", job.Package)
	logger.Info("begin checking")

	pkg := status.NewPackage(job.Package)
	candFiles, err := Discover(job.CandDir)
	if err != nil {
		logger.Warn("cannot list candidate outputs", "error", err)
		pkg.SetStatus(status.Indeterminate)
		return pkg, nil
	}
	pkg.Files = candFiles
	if err := ReadTestTime(job.CandDir, pkg); err != nil {
		logger.Warn("ignoring test time", "error", err)
	}

	refFiles, err := referenceOutputs(job)
	if err != nil {
		// Without a reference nothing can be judged.
		logger.Warn("no reference outputs", "error", err)
		for _, f := range pkg.Files {
			f.SetStatus(status.Indeterminate)
		}
		pkg.SetStatus(status.Indeterminate)
		c.finish(logger, job, pkg)
		return pkg, nil
	}

	if hasFailed(refFiles) {
		logger.Info("reference test had .fail outputs")
	}
	if pkg.HasFailed() {
		logger.Info("candidate test had .fail outputs")
		pkg.SetStatus(status.Failed)
	}

	for _, rel := range sortedPaths(refFiles) {
		ref := refFiles[rel]
		file, ok := pkg.Files[rel]
		switch {
		case ref.Status == status.Failed:
			// A broken reference cannot judge the candidate.
			logger.Info("reference output failed", "file", rel)
			if ok {
				file.SetStatus(status.Indeterminate)
			}
			pkg.SetStatus(status.Indeterminate)
			continue
		case !ok:
			logger.Info("candidate is missing output file", "file", rel)
			pkg.SetStatus(status.Failed)
			continue
		case file.Status == status.Failed:
			continue
		}
		if err := c.checkFile(logger, pkg, rel, ref, file); err != nil {
			logger.Warn("cannot compare output", "file", rel, "error", err)
			file.Report = status.Unassessed
			file.SetStatus(status.Indeterminate)
			pkg.SetStatus(status.Indeterminate)
		}
	}
	c.finish(logger, job, pkg)
	return pkg, nil
}

// referenceOutputs lists the reference outputs of job. A missing reference
// directory is an error here, unlike a missing candidate directory.
func referenceOutputs(job Job) (map[string]*status.File, error) {
	info, err := os.Stat(job.RefDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", job.RefDir)
	}
	return Discover(job.RefDir)
}

// finish settles the package status and writes its report. A report that
// cannot be written is logged; the verdict stands.
func (c *Checker) finish(logger *slog.Logger, job Job, pkg *status.Package) {
	pkg.Finish()
	if c.writeReport {
		if err := report.WriteFile(job.CandDir, report.Entries(job.CandDir, pkg, logger)); err != nil {
			logger.Error("cannot write report", "error", err)
		}
	}
	logger.Info("end checking", "status", pkg.Status)
}

// Run checks the packages of jobs concurrently and returns their statuses
// in job order. Packages are judged independently; cancellation of ctx
// stops packages not yet started and is the only error returned.
func (c *Checker) Run(ctx context.Context, jobs []Job) ([]*status.Package, error) {
	results := make([]*status.Package, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			pkg, err := c.CheckPackage(gctx, job)
			if err != nil {
				return err
			}
			results[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func hasFailed(files map[string]*status.File) bool {
	for _, f := range files {
		if f.Status == status.Failed {
			return true
		}
	}
	return false
}

func sortedPaths(files map[string]*status.File) []string {
	paths := make([]string, 0, len(files))
	for rel := range files {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths
}
