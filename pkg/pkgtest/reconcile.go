package pkgtest

import (
	"log/slog"

	"github.com/dkoosis/pkgcmp/internal/detect"
	"github.com/dkoosis/pkgcmp/pkg/fuzzy"
	"github.com/dkoosis/pkgcmp/pkg/status"
	"github.com/dkoosis/pkgcmp/pkg/transcript"
)

// PreprocessedSuffix is appended to a transcript path when its filtered
// content is dumped.
const PreprocessedSuffix = ".preprocessed"

// Reconcile judges a candidate framework summary against the reference
// summary of the same test file.
//
// A candidate that reports more tests than the reference, or unusable
// counts, is not trusted: it gets the reference's skipped tests and fails
// the rest. A candidate that reports fewer tests has the missing ones
// counted as failed. Only equal totals keep the candidate's own numbers.
func Reconcile(cand, ref detect.Summary) (status.Report, status.Status) {
	candTotal, refTotal := cand.Total(), ref.Total()
	switch {
	case candTotal < 0 || candTotal > refTotal:
		return status.Report{OK: 0, Skipped: ref.Skipped, Failed: ref.OK + ref.Failed}, status.Failed
	case candTotal < refTotal:
		return status.Report{OK: cand.OK, Skipped: cand.Skipped, Failed: cand.Failed + refTotal - candTotal}, status.Failed
	default:
		return status.Report{OK: cand.OK, Skipped: cand.Skipped, Failed: cand.Failed}, status.OK
	}
}

// checkFile compares one candidate output with its reference and records
// the outcome in file and pkg. It fails only when an output cannot be read.
func (c *Checker) checkFile(logger *slog.Logger, pkg *status.Package, rel string, ref, file *status.File) error {
	refT, err := transcript.ReadFile(ref.Path)
	if err != nil {
		return err
	}
	candT, err := transcript.ReadFile(file.Path)
	if err != nil {
		return err
	}

	if c.reconcileFramework(logger, pkg, rel, refT, candT, file) {
		return nil
	}

	refLines := c.filters.Apply(refT.Lines, pkg.Name)
	candLines := c.filters.Apply(candT.Lines, pkg.Name)
	if c.dumpPreprocessed {
		for path, lines := range map[string][]string{ref.Path: refLines, file.Path: candLines} {
			if err := transcript.WriteFile(path+PreprocessedSuffix, lines); err != nil {
				logger.Warn("cannot dump preprocessed output", "file", path, "error", err)
			}
		}
	}

	res := c.comparator.Compare(transcript.New(refT.Name, refLines), transcript.New(candT.Name, candLines))
	switch res.Verdict {
	case fuzzy.Malformed:
		logger.Info("content malformed", "file", rel)
		file.Report = status.Unassessed
		file.SetStatus(status.Indeterminate)
		pkg.SetStatus(status.Indeterminate)
	case fuzzy.Mismatch:
		logger.Info("output mismatch", "file", rel, "passed", res.Passed, "failed", res.Failed)
		file.Report = status.Report{OK: res.Passed, Failed: res.Failed}
		file.SetStatus(status.Failed)
		pkg.SetStatus(status.Failed)
	default:
		file.Report = status.Report{OK: res.Passed, Failed: res.Failed}
		file.SetStatus(status.OK)
	}
	return nil
}

// reconcileFramework handles candidate outputs that carry a test framework
// summary. It reports false when the fuzzy comparison has to decide
// instead: no framework in the candidate, or a summary on either side that
// cannot be used.
func (c *Checker) reconcileFramework(logger *slog.Logger, pkg *status.Package, rel string, refT, candT transcript.Transcript, file *status.File) bool {
	cand, err := detect.Detect(candT.Name, candT.Lines)
	if err != nil {
		logger.Info("error parsing test framework summary", "file", candT.Name, "error", err)
		return false
	}
	if !cand.Detected() {
		return false
	}
	logger.Debug("detected test framework", "file", rel, "framework", cand.Framework)

	ref, err := detect.Detect(refT.Name, refT.Lines)
	if err != nil {
		logger.Info("error parsing test framework summary", "file", refT.Name, "error", err)
		return false
	}
	if !ref.Detected() {
		logger.Info("reference output has no test framework summary", "file", rel)
		return false
	}

	if cand.Total() < 0 {
		logger.Info("candidate reported invalid numbers of executed tests", "file", rel)
	} else if cand.Total() != ref.Total() {
		logger.Info("different number of tests executed", "file", rel,
			"candidate", cand.Total(), "reference", ref.Total())
	}

	rep, st := Reconcile(cand, ref)
	file.Report = rep
	file.SetStatus(st)
	pkg.SetStatus(st)
	return true
}
