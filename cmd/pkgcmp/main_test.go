package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/pkgcmp/pkg/report"
)

var banner = []string{
	`R version 4.0.3 (2020-10-10) -- "Bunny-Wunnies Freak Out"`,
	"Type 'q()' to quit R.",
	"",
}

func rout(body ...string) string {
	return strings.Join(append(append([]string{}, banner...), body...), "\n") + "\n"
}

// workspace runs the test in an empty directory without user configuration
// and writes files, keyed by slash-separated relative path.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".xdg"))
	t.Setenv("NO_COLOR", "")
	t.Setenv("PKGCMP_FORMAT", "")
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func runCmd(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	workspace(t, nil)

	code, out, _ := runCmd("--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "compare")

	code, _, errOut := runCmd("frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "pkgcmp:")

	code, _, _ = runCmd("compare", "only-one.Rout")
	assert.Equal(t, exitUsage, code)
}

func TestRun_Version(t *testing.T) {
	workspace(t, nil)
	code, out, _ := runCmd("version")
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "pkgcmp "), out)
}

func TestRun_Compare(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		cand     string
		wantCode int
		wantOut  string
	}{
		{
			name:     "equal",
			ref:      rout("> sum(1:10)", "[1] 55"),
			cand:     rout("> sum(1:10)", "[1]  55"),
			wantCode: exitOK,
			wantOut:  "equal 1 0\n",
		},
		{
			name:     "mismatch",
			ref:      rout("> mean(c(1, 2, 3))", "[1] 2"),
			cand:     rout("> mean(c(1, 2, 3))", "[1] 2.5"),
			wantCode: exitDifferent,
			wantOut:  "mismatch 0 1\n",
		},
		{
			name:     "malformed",
			ref:      "no banner here\n",
			cand:     rout("> 1", "[1] 1"),
			wantCode: exitMalformed,
			wantOut:  "malformed 0 0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t, map[string]string{"ref.Rout": tt.ref, "cand.Rout": tt.cand})
			code, out, _ := runCmd("compare", "ref.Rout", "cand.Rout")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestRun_CompareDetails(t *testing.T) {
	workspace(t, map[string]string{
		"ref.Rout":  rout("> mean(c(1, 2, 3))", "[1] 2"),
		"cand.Rout": rout("> mean(c(1, 2, 3))", "[1] 2.5"),
	})
	code, out, _ := runCmd("compare", "--details", "--format", "llm", "ref.Rout", "cand.Rout")
	assert.Equal(t, exitDifferent, code)
	assert.Contains(t, out, "SCOPE: MISMATCH ref.Rout vs cand.Rout")
	assert.Contains(t, out, "+ [1] 2.5")
}

func TestRun_CompareWithFilters(t *testing.T) {
	workspace(t, map[string]string{
		"filters":   "zoo => s/0x[0-9a-f]+/<addr>\n",
		"ref.Rout":  rout("> e", "<environment: 0x55d5c8>"),
		"cand.Rout": rout("> e", "<environment: 0x7f01aa>"),
	})

	code, out, _ := runCmd("compare", "ref.Rout", "cand.Rout")
	assert.Equal(t, exitDifferent, code, out)

	code, out, _ = runCmd("compare", "--filters", "filters", "-p", "zoo", "ref.Rout", "cand.Rout")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "equal 1 0\n", out)
}

func TestRun_Filter(t *testing.T) {
	workspace(t, map[string]string{
		".pkgcmp.yaml": "filter_file: filters\n",
		"filters":      "zoo => D/Loading required\n",
		"a.Rout":       "Loading required package: zoo\n> 1\n[1] 1\n",
	})
	code, out, _ := runCmd("filter", "-p", "zoo", "a.Rout")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "\n> 1\n[1] 1\n", out)
}

func TestRun_Detect(t *testing.T) {
	workspace(t, map[string]string{
		"tests/testthat.Rout":  "testthat results\nOK: 4 SKIPPED: 1 FAILED: 2\n",
		"broken/testthat.Rout": "testthat results\nOK: lots\n",
		"plain.Rout":           rout("> 1", "[1] 1"),
	})

	code, out, _ := runCmd("detect", "tests/testthat.Rout")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "testthat 4 1 2\n", out)

	code, out, _ = runCmd("detect", "plain.Rout")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "none\n", out)

	code, out, errOut := runCmd("detect", "broken/testthat.Rout")
	assert.Equal(t, exitMalformed, code)
	assert.Equal(t, "testthat\n", out)
	assert.NotEmpty(t, errOut)
}

func TestRun_CheckAndSummary(t *testing.T) {
	dir := workspace(t, map[string]string{
		"test.gnur/zoo/tests/a.Rout":  rout("> 1 + 1", "[1] 2"),
		"test.fastr/zoo/tests/a.Rout": rout("> 1 + 1", "[1] 2"),
		"test.gnur/xts/tests/a.Rout":  rout("> 2 * 2", "[1] 4"),
		"test.fastr/xts/tests/a.Rout": rout("> 2 * 2", "[1] 5"),
	})

	code, out, _ := runCmd("check", "--format", "llm", "zoo")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "PASS 1 packages")
	assert.FileExists(t, filepath.Join(dir, "test.fastr", "zoo", report.FileName))
	assert.NoFileExists(t, filepath.Join(dir, "test.fastr", "xts", report.FileName))

	code, out, _ = runCmd("check", "--format", "llm")
	assert.Equal(t, exitDifferent, code)
	assert.Contains(t, out, "FAIL 1/2 packages not OK")

	code, out, _ = runCmd("summary", "--format", "json", "test.fastr")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, `"version": "1.0"`)
	assert.Contains(t, out, `"xts"`)
}

func TestRun_CheckNoReport(t *testing.T) {
	dir := workspace(t, map[string]string{
		"ref/zoo/a.Rout":  rout("> 1", "[1] 1"),
		"cand/zoo/a.Rout": rout("> 1", "[1] 1"),
	})
	code, _, _ := runCmd("check", "--ref-root", "ref", "--cand-root", "cand", "--no-report", "--format", "json")
	assert.Equal(t, exitOK, code)
	assert.NoFileExists(t, filepath.Join(dir, "cand", "zoo", report.FileName))
}

func TestRun_SummaryWithoutReports(t *testing.T) {
	workspace(t, map[string]string{"empty/.keep": ""})
	code, _, errOut := runCmd("summary", "empty")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "no testfile_status files")
}

func TestRun_InvalidFormat(t *testing.T) {
	workspace(t, nil)
	code, _, errOut := runCmd("summary", "--format", "html", ".")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "invalid format")
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "llm", resolveFormat("auto", &buf))
	assert.Equal(t, "json", resolveFormat("json", &buf))
	assert.False(t, isTTYWriter(&buf))
	w, h := termSize(&buf)
	assert.Equal(t, [2]int{80, 24}, [2]int{w, h})
}
