// Package transcript reads captured interpreter output into line sequences.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single transcript line. Package tests occasionally
// print very wide data frames.
const maxLineSize = 4 * 1024 * 1024

// Transcript is the output of one reference or candidate run.
// Name identifies it in diagnostics only.
type Transcript struct {
	Name  string
	Lines []string
}

// New builds a transcript from lines already in memory.
func New(name string, lines []string) Transcript {
	return Transcript{Name: name, Lines: lines}
}

// Read splits r into lines without their line terminators.
func Read(name string, r io.Reader) (Transcript, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return Transcript{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return Transcript{Name: name, Lines: lines}, nil
}

// ReadFile reads the transcript stored at path.
func ReadFile(path string) (Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()
	return Read(path, f)
}

// WriteFile writes lines to path, one per line.
func WriteFile(path string, lines []string) error {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Len returns the number of lines.
func (t Transcript) Len() int {
	return len(t.Lines)
}
