package filter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every filter parse error.
var ErrSyntax = errors.New("invalid filter syntax")

// actionRe matches "<op>[-N][+N]/<args>".
var actionRe = regexp.MustCompile(`^([dDrRs])(?:-(\d+))?(?:\+(\d+))?/(.*)$`)

// backrefRe matches Python-style back references in substitutions.
var backrefRe = regexp.MustCompile(`\\(\d+)`)

// Diagnostic describes a filter file line that was skipped.
type Diagnostic struct {
	File string
	Line int
	Text string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %v: %q", d.File, d.Line, d.Err, d.Text)
}

// Parse parses one filter line of the form
//
//	<package regex> => <op>[-N][+N]/<arg1>[/<arg2>]
//
// where op is one of d, D, r, R, s and "\/" escapes a slash in an argument.
func Parse(line string) (Filter, error) {
	idx := strings.Index(line, "=>")
	if idx < 0 {
		return Filter{}, fmt.Errorf("%w: missing '=>'", ErrSyntax)
	}
	pkgPattern := strings.TrimSpace(line[:idx])
	actionText := strings.TrimLeft(line[idx+2:], " \t")
	if pkgPattern == "" {
		return Filter{}, fmt.Errorf("%w: empty package pattern", ErrSyntax)
	}
	pkgRe, err := regexp.Compile("^(?:" + pkgPattern + ")")
	if err != nil {
		return Filter{}, fmt.Errorf("%w: package pattern: %v", ErrSyntax, err)
	}

	m := actionRe.FindStringSubmatch(actionText)
	if m == nil {
		return Filter{}, fmt.Errorf("%w: unrecognized action %q", ErrSyntax, actionText)
	}
	op := m[1][0]
	before, after := 0, 0
	if m[2] != "" || m[3] != "" {
		if op != 'D' {
			return Filter{}, fmt.Errorf("%w: context counts are only valid for 'D'", ErrSyntax)
		}
		if before, err = atoiOrZero(m[2]); err != nil {
			return Filter{}, err
		}
		if after, err = atoiOrZero(m[3]); err != nil {
			return Filter{}, err
		}
	}

	args := splitArgs(m[4])
	action, err := newAction(op, args, before, after)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Package: pkgRe, Action: action, Source: strings.TrimSpace(line)}, nil
}

func newAction(op byte, args []string, before, after int) (Action, error) {
	want := 2
	if op == 'd' || op == 'D' {
		want = 1
	}
	if len(args) != want {
		return nil, fmt.Errorf("%w: '%c' takes %d argument(s), got %d", ErrSyntax, op, want, len(args))
	}
	if args[0] == "" {
		return nil, fmt.Errorf("%w: empty match argument", ErrSyntax)
	}

	switch op {
	case 'd':
		return Delete{Sub: args[0]}, nil
	case 'D':
		return DeleteLine{Sub: args[0], Before: before, After: after}, nil
	case 'r':
		return Replace{Old: args[0], New: args[1]}, nil
	case 'R':
		return ReplaceLine{Sub: args[0], Line: args[1]}, nil
	default:
		re, err := regexp.Compile(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: substitution pattern: %v", ErrSyntax, err)
		}
		return Substitute{Pattern: re, Repl: convertReplacement(args[1])}, nil
	}
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: context count %q", ErrSyntax, s)
	}
	return n, nil
}

// splitArgs splits on unescaped slashes. Only "\/" is unescaped; any other
// backslash is kept so regular expressions survive intact.
func splitArgs(s string) []string {
	var args []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == '/' {
			cur.WriteByte('/')
			i++
			continue
		}
		if c == '/' {
			args = append(args, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	return append(args, cur.String())
}

// convertReplacement turns a replacement written with \N back references
// into Go's template syntax. A literal '$' stays literal.
func convertReplacement(s string) string {
	s = strings.ReplaceAll(s, "$", "$$")
	return backrefRe.ReplaceAllString(s, "$${$1}")
}

// ParseFile reads filters from r, one per line. Blank lines and lines
// starting with '#' are ignored. Malformed lines are reported as
// diagnostics and skipped; they never stop the remaining lines loading.
func ParseFile(r io.Reader, name string) (Set, []Diagnostic) {
	var set Set
	var diags []Diagnostic
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if trimmed := strings.TrimSpace(text); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		f, err := Parse(text)
		if err != nil {
			diags = append(diags, Diagnostic{File: name, Line: lineNo, Text: text, Err: err})
			continue
		}
		set = append(set, f)
	}
	if err := scanner.Err(); err != nil {
		diags = append(diags, Diagnostic{File: name, Line: lineNo + 1, Err: err})
	}
	return set, diags
}

// Load parses the filter file at path and logs every skipped line.
// A missing file yields an empty set.
func Load(path string, logger *slog.Logger) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("no filter file", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("opening filter file: %w", err)
	}
	defer f.Close()

	set, diags := ParseFile(f, path)
	for _, d := range diags {
		logger.Warn("skipping filter", "file", d.File, "line", d.Line, "text", d.Text, "err", d.Err)
	}
	logger.Debug("loaded filters", "path", path, "count", len(set), "skipped", len(diags))
	return set, nil
}
