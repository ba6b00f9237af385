package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dkoosis/pkgcmp/internal/config"
	"github.com/dkoosis/pkgcmp/internal/detect"
	"github.com/dkoosis/pkgcmp/internal/version"
	"github.com/dkoosis/pkgcmp/pkg/fuzzy"
	"github.com/dkoosis/pkgcmp/pkg/mapper"
	"github.com/dkoosis/pkgcmp/pkg/pkgtest"
	"github.com/dkoosis/pkgcmp/pkg/report"
	"github.com/dkoosis/pkgcmp/pkg/status"
	"github.com/dkoosis/pkgcmp/pkg/transcript"
)

type compareCommand struct {
	app *app

	Filters string `long:"filters" value-name:"FILE" description:"filter file"`
	Package string `short:"p" long:"package" value-name:"NAME" description:"package name used to select filters"`
	Details bool   `short:"d" long:"details" description:"render the mismatching lines"`
	Args    struct {
		Ref  string `positional-arg-name:"REF" required:"yes"`
		Cand string `positional-arg-name:"CAND" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

func (c *compareCommand) Execute(_ []string) error {
	cfg, logger, err := c.app.setup(config.CliFlags{FilterFile: c.Filters})
	if err != nil {
		return err
	}
	filters, err := pipeline(cfg, logger)
	if err != nil {
		return err
	}
	ref, err := transcript.ReadFile(c.Args.Ref)
	if err != nil {
		return err
	}
	cand, err := transcript.ReadFile(c.Args.Cand)
	if err != nil {
		return err
	}

	res := comparator(cfg, logger).Compare(
		transcript.New(ref.Name, filters.Apply(ref.Lines, c.Package)),
		transcript.New(cand.Name, filters.Apply(cand.Lines, c.Package)),
	)
	fmt.Fprintf(c.app.stdout, "%s %d %d\n", res.Verdict, res.Passed, res.Failed)
	if c.Details && res.Verdict != fuzzy.Equal {
		c.app.render(cfg, mapper.FromComparison(ref.Name, cand.Name, res))
	}

	switch res.Verdict {
	case fuzzy.Mismatch:
		c.app.code = exitDifferent
	case fuzzy.Malformed:
		c.app.code = exitMalformed
	}
	return nil
}

type detectCommand struct {
	app *app

	Args struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

func (c *detectCommand) Execute(_ []string) error {
	if _, _, err := c.app.setup(config.CliFlags{}); err != nil {
		return err
	}
	t, err := transcript.ReadFile(c.Args.File)
	if err != nil {
		return err
	}
	sum, err := detect.Detect(t.Name, t.Lines)
	if errors.Is(err, detect.ErrFrameworkSummary) {
		fmt.Fprintf(c.app.stderr, "pkgcmp: %s: %v\n", t.Name, err)
		fmt.Fprintln(c.app.stdout, sum.Framework)
		c.app.code = exitMalformed
		return nil
	}
	if err != nil {
		return err
	}
	if !sum.Detected() {
		fmt.Fprintln(c.app.stdout, detect.None)
		return nil
	}
	fmt.Fprintf(c.app.stdout, "%s %d %d %d\n", sum.Framework, sum.OK, sum.Skipped, sum.Failed)
	return nil
}

type filterCommand struct {
	app *app

	Filters string `long:"filters" value-name:"FILE" description:"filter file"`
	Package string `short:"p" long:"package" value-name:"NAME" description:"package name used to select filters"`
	Args    struct {
		File string `positional-arg-name:"FILE" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

func (c *filterCommand) Execute(_ []string) error {
	cfg, logger, err := c.app.setup(config.CliFlags{FilterFile: c.Filters})
	if err != nil {
		return err
	}
	filters, err := pipeline(cfg, logger)
	if err != nil {
		return err
	}
	t, err := transcript.ReadFile(c.Args.File)
	if err != nil {
		return err
	}
	for _, line := range filters.Apply(t.Lines, c.Package) {
		fmt.Fprintln(c.app.stdout, line)
	}
	return nil
}

type checkCommand struct {
	app *app

	Filters          string `long:"filters" value-name:"FILE" description:"filter file"`
	RefRoot          string `long:"ref-root" value-name:"DIR" description:"reference outputs, one directory per package"`
	CandRoot         string `long:"cand-root" value-name:"DIR" description:"candidate outputs, one directory per package"`
	Jobs             int    `short:"j" long:"jobs" value-name:"N" description:"packages checked in parallel (default: number of CPUs)"`
	NoReport         bool   `long:"no-report" description:"do not write testfile_status reports"`
	DumpPreprocessed bool   `long:"dump-preprocessed" description:"write filtered transcripts next to the outputs"`
	Args             struct {
		Packages []string `positional-arg-name:"PKG"`
	} `positional-args:"yes"`
}

func (c *checkCommand) Execute(_ []string) error {
	cli := config.CliFlags{
		FilterFile: c.Filters,
		RefRoot:    c.RefRoot,
		CandRoot:   c.CandRoot,
		Jobs:       c.Jobs,
	}
	if c.NoReport {
		cli.NoReport, cli.NoReportSet = true, true
	}
	if c.DumpPreprocessed {
		cli.DumpPreprocessed, cli.DumpPreprocessedSet = true, true
	}
	cfg, logger, err := c.app.setup(cli)
	if err != nil {
		return err
	}
	filters, err := pipeline(cfg, logger)
	if err != nil {
		return err
	}
	jobs, err := pkgtest.Jobs(cfg.RefRoot, cfg.CandRoot, c.Args.Packages)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	checker := pkgtest.NewChecker(
		pkgtest.WithLogger(logger),
		pkgtest.WithComparator(comparator(cfg, logger)),
		pkgtest.WithFilters(filters),
		pkgtest.WithParallelism(cfg.Jobs),
		pkgtest.WithReport(!cfg.NoReport),
		pkgtest.WithDumpPreprocessed(cfg.DumpPreprocessed),
	)
	pkgs, err := checker.Run(ctx, jobs)
	if err != nil {
		return err
	}

	c.app.render(cfg, mapper.FromPackages(pkgs))
	for _, p := range pkgs {
		if p != nil && p.Status == status.Failed {
			c.app.code = exitDifferent
		}
	}
	return nil
}

type summaryCommand struct {
	app *app

	Args struct {
		Root string `positional-arg-name:"ROOT" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

func (c *summaryCommand) Execute(_ []string) error {
	cfg, logger, err := c.app.setup(config.CliFlags{})
	if err != nil {
		return err
	}
	paths, err := report.Glob(c.Args.Root)
	if err != nil {
		return err
	}
	reports := make([]mapper.PackageReport, 0, len(paths))
	for _, path := range paths {
		entries, err := report.ParseFile(path)
		if err != nil {
			logger.Warn("skipping report", "path", path, "error", err)
			continue
		}
		name, err := filepath.Rel(c.Args.Root, filepath.Dir(path))
		if err != nil {
			name = filepath.Dir(path)
		}
		reports = append(reports, mapper.PackageReport{Package: filepath.ToSlash(name), Entries: entries})
	}
	if len(reports) == 0 {
		return fmt.Errorf("no %s files below %s", report.FileName, c.Args.Root)
	}
	c.app.render(cfg, mapper.FromReports(reports))
	return nil
}

type versionCommand struct {
	app *app
}

func (c *versionCommand) Execute(_ []string) error {
	fmt.Fprintln(c.app.stdout, version.String())
	return nil
}
