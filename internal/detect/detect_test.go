package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Testthat(t *testing.T) {
	lines := []string{
		"> library(testthat)",
		"> test_check(\"zoo\")",
		"══ testthat results  ═══════════════════",
		"OK: 212 SKIPPED: 3 FAILED: 1",
		"",
	}
	got, err := Detect("/tmp/test.fastr/zoo/tests/testthat.Rout", lines)
	require.NoError(t, err)
	assert.Equal(t, Summary{Framework: Testthat, OK: 212, Skipped: 3, Failed: 1}, got)
	assert.True(t, got.Detected())
	assert.Equal(t, 216, got.Total())
}

func TestDetect_TestthatBracketedCounts(t *testing.T) {
	lines := []string{"testthat results", "OK: 4 | SKIPPED: 1 | FAILED: 0 ]"}
	got, err := Detect("testthat.Rout", lines)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Total())
}

func TestDetect_TestthatMalformed(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"no results line", []string{"> 1+1", "[1] 2"}},
		{"results at end", []string{"testthat results"}},
		{"next line not OK", []string{"testthat results", "[ OK: 1 | SKIPPED: 0 | FAILED: 0 ]"}},
		{"missing FAILED", []string{"testthat results", "OK: 1 SKIPPED: 0"}},
		{"swapped order", []string{"testthat results", "OK: 1 FAILED: 0 SKIPPED: 0"}},
		{"not a number", []string{"testthat results", "OK: x SKIPPED: 0 FAILED: 0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect("testthat.Rout", tt.lines)
			assert.ErrorIs(t, err, ErrFrameworkSummary)
			assert.Equal(t, Testthat, got.Framework)
		})
	}
}

func TestDetect_RUnit(t *testing.T) {
	lines := []string{
		"> runTestSuite(suite)",
		"RUNIT TEST PROTOCOL -- Thu Feb 08 10:54:42 2018 ",
		"***********************************************",
		"Number of test functions: 20 ",
		"Number of errors: 1 ",
		"Number of failures: 2 ",
		"",
		"1 Test Suite : ",
		"pkg unit testing - 20 test functions, 1 error, 2 failures",
	}
	got, err := Detect("runit.Rout", lines)
	require.NoError(t, err)
	assert.Equal(t, Summary{Framework: RUnit, OK: 17, Skipped: 0, Failed: 3}, got)
}

func TestDetect_RUnitIgnoresLinesBeforeProtocol(t *testing.T) {
	lines := []string{
		"Number of errors: 5",
		"RUNIT TEST PROTOCOL -- <date_time>",
		"Number of test functions: 3",
		"Number of errors: 0",
		"Number of failures: 0",
	}
	got, err := Detect("runit.Rout", lines)
	require.NoError(t, err)
	assert.Equal(t, 3, got.OK)
	assert.Equal(t, 0, got.Failed)
}

func TestDetect_RUnitMalformedCount(t *testing.T) {
	lines := []string{"RUNIT TEST PROTOCOL", "Number of test functions: many"}
	got, err := Detect("runit.Rout", lines)
	assert.ErrorIs(t, err, ErrFrameworkSummary)
	assert.Equal(t, RUnit, got.Framework)
}

func TestDetect_NotDetected(t *testing.T) {
	got, err := Detect("tests.Rout", []string{"> x <- 1", "> x", "[1] 1"})
	require.NoError(t, err)
	assert.False(t, got.Detected())
	assert.Equal(t, -1, got.Total())
}

func TestSummary_TotalInvalidCounts(t *testing.T) {
	s := Summary{Framework: RUnit, OK: -2, Failed: 4}
	assert.Equal(t, -1, s.Total())
}

func TestFramework_String(t *testing.T) {
	assert.Equal(t, "testthat", Testthat.String())
	assert.Equal(t, "runit", RUnit.String())
	assert.Equal(t, "none", None.String())
}
