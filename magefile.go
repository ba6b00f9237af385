//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir     = "bin"
	binName    = "pkgcmp"
	mainPkg    = "./cmd/pkgcmp"
	versionPkg = "github.com/dkoosis/pkgcmp/internal/version"
)

// Default target - build the binary
var Default = Build

// Build builds the pkgcmp binary with version information.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binDir, binName), mainPkg)
}

func ldflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	flags := []string{"-s", "-w", "-X " + versionPkg + ".BuildDate=" + time.Now().UTC().Format(time.RFC3339)}
	if version != "" {
		flags = append(flags, "-X "+versionPkg+".Version="+version)
	}
	if commit != "" {
		flags = append(flags, "-X "+versionPkg+".CommitHash="+commit)
	}
	return strings.Join(flags, " ")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binDir)
}

// Test runs the test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// QA runs formatting, vet, linters and tests.
func QA() {
	mg.SerialDeps(Lint.Format, Lint.Vet, Lint.Golangci, Test)
}

// Check builds pkgcmp and checks the package outputs below the directories
// named by REF_ROOT and CAND_ROOT (defaults: test.gnur and test.fastr).
func Check() error {
	mg.Deps(Build)
	args := []string{"check"}
	if ref := os.Getenv("REF_ROOT"); ref != "" {
		args = append(args, "--ref-root", ref)
	}
	if cand := os.Getenv("CAND_ROOT"); cand != "" {
		args = append(args, "--cand-root", cand)
	}
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// Format fails when any file needs gofmt.
func (Lint) Format() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need formatting:\n%s", out)
	}
	return nil
}

// Vet runs go vet
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint when it is installed.
func (Lint) Golangci() error {
	if _, err := sh.Output("golangci-lint", "version"); err != nil {
		fmt.Println("golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "--timeout=5m", "./...")
}
