// pkgcmp compares the test outputs of a candidate R runtime against a
// reference runtime and reports which package tests still diverge.
//
// Usage:
//
//	pkgcmp compare gnur/tests/a.Rout fastr/tests/a.Rout
//	pkgcmp check --ref-root test.gnur --cand-root test.fastr zoo xts
//	pkgcmp summary test.fastr
//
// Output modes for check and summary (auto-detected):
//
//	terminal  styled Unicode output (default when TTY)
//	llm       terse plain text (default when piped)
//	json      structured JSON for automation
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"github.com/dkoosis/pkgcmp/internal/config"
	"github.com/dkoosis/pkgcmp/internal/logging"
	"github.com/dkoosis/pkgcmp/pkg/filter"
	"github.com/dkoosis/pkgcmp/pkg/fuzzy"
	"github.com/dkoosis/pkgcmp/pkg/pattern"
	"github.com/dkoosis/pkgcmp/pkg/render"
)

// Exit codes.
const (
	exitOK        = 0
	exitDifferent = 1 // mismatch or failed package
	exitUsage     = 2
	exitMalformed = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globalOptions are accepted before or after any command.
type globalOptions struct {
	Config   string `long:"config" value-name:"FILE" description:"config file (default: .pkgcmp.yaml)"`
	LogLevel string `long:"log-level" value-name:"LEVEL" description:"debug, info, warn or error"`
	Format   string `long:"format" value-name:"FORMAT" description:"output format: auto, terminal, llm, json"`
	Theme    string `long:"theme" value-name:"THEME" description:"terminal theme: default, orca, mono"`
	NoColor  bool   `long:"no-color" description:"disable colors"`
}

// app carries the streams and the exit code through command execution.
type app struct {
	opts   globalOptions
	stdout io.Writer
	stderr io.Writer
	code   int
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	parser := newParser(a)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return exitOK
		}
		fmt.Fprintf(stderr, "pkgcmp: %v\n", err)
		return exitUsage
	}
	return a.code
}

func newParser(a *app) *flags.Parser {
	p := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = "pkgcmp"

	mustAdd(p, "compare", "Compare two output files",
		"Filters both transcripts and prints '<verdict> <passed> <failed>'. Exits 1 on mismatch and 3 when the outputs lack their anchors.",
		&compareCommand{app: a})
	mustAdd(p, "detect", "Detect a test framework summary",
		"Prints '<framework> <ok> <skipped> <failed>', or 'none' when no framework is recognized.",
		&detectCommand{app: a})
	mustAdd(p, "filter", "Print a filtered output file",
		"Applies the filters selected for --package and prints the result.",
		&filterCommand{app: a})
	mustAdd(p, "check", "Check package test outputs",
		"Compares every candidate package output with the reference, writes testfile_status reports and renders the results. Exits 1 when a package failed.",
		&checkCommand{app: a})
	mustAdd(p, "summary", "Summarize stored reports",
		"Aggregates all testfile_status reports below ROOT.",
		&summaryCommand{app: a})
	mustAdd(p, "version", "Print version information", "", &versionCommand{app: a})
	return p
}

func mustAdd(p *flags.Parser, name, short, long string, data any) {
	if _, err := p.AddCommand(name, short, long, data); err != nil {
		panic(fmt.Sprintf("register %s command: %v", name, err))
	}
}

// setup resolves configuration from cli merged with the global options and
// builds the logger.
func (a *app) setup(cli config.CliFlags) (*config.ResolvedConfig, *slog.Logger, error) {
	cli.ConfigPath = a.opts.Config
	cli.LogLevel = a.opts.LogLevel
	cli.Format = a.opts.Format
	cli.Theme = a.opts.Theme
	if a.opts.NoColor {
		cli.NoColor, cli.NoColorSet = true, true
	}
	cfg, err := config.ResolveConfig(cli)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(a.stderr, cfg.LogLevel, isTTYWriter(a.stderr), cfg.NoColor)
	if err != nil {
		return nil, nil, err
	}
	if cfg.ConfigFile != "" {
		logger.Debug("loaded config", "file", cfg.ConfigFile)
	}
	return cfg, logger, nil
}

func pipeline(cfg *config.ResolvedConfig, logger *slog.Logger) (filter.Pipeline, error) {
	p := filter.Pipeline{Engines: cfg.Engines}
	if cfg.FilterFile == "" {
		return p, nil
	}
	set, err := filter.Load(cfg.FilterFile, logger)
	if err != nil {
		return p, err
	}
	p.Set = set
	return p, nil
}

func comparator(cfg *config.ResolvedConfig, logger *slog.Logger) *fuzzy.Comparator {
	return fuzzy.New(
		fuzzy.WithLogger(logger),
		fuzzy.WithStartMarker(cfg.StartMarker),
		fuzzy.WithEndMarker(cfg.EndMarker),
		fuzzy.WithPrompt(cfg.Prompt),
	)
}

func (a *app) render(cfg *config.ResolvedConfig, patterns []pattern.Pattern) {
	theme := render.ThemeByName(cfg.Theme)
	if cfg.NoColor {
		theme = render.MonoTheme()
	}
	width, _ := termSize(a.stdout)
	fmt.Fprint(a.stdout, render.New(resolveFormat(cfg.Format, a.stdout), theme, width).Render(patterns))
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" && format != "" {
		return format
	}
	// Auto-detect: TTY = terminal, piped = llm
	if isTTYWriter(w) {
		return render.FormatTerminal
	}
	return render.FormatLLM
}
