package fuzzy

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/pkgcmp/pkg/transcript"
)

// rout prepends the interpreter banner to body; body starts at index 5.
func rout(body ...string) []string {
	return append([]string{
		`R version 4.0.3 (2020-10-10) -- "Bunny-Wunnies Freak Out"`,
		"Type 'demo()' for some demos, 'help()' for on-line help, or",
		"'help.start()' for an HTML browser interface to help.",
		"Type 'q()' to quit R.",
		"",
	}, body...)
}

func compare(ref, cand []string) Result {
	return New().Compare(transcript.New("ref.Rout", ref), transcript.New("cand.Rout", cand))
}

type want struct {
	verdict Verdict
	passed  int
	failed  int
}

func assertResult(t *testing.T, w want, got Result) {
	t.Helper()
	v, p, f := got.Tuple()
	assert.Equal(t, w, want{v, p, f})
}

func TestCompare_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		ref  []string
		cand []string
		want want
	}{
		{
			name: "near identical",
			ref:  rout("> sum(1:10)", "[1] 55", ""),
			cand: rout("> sum(1:10)", "[1]  55", "", "> ", "Time elapsed: 0.3"),
			want: want{Equal, 1, 0},
		},
		{
			name: "single mismatch",
			ref:  rout("> mean(c(1, 2, 3))", "[1] 2"),
			cand: rout("> mean(c(1, 2, 3))", "[1] 2.5"),
			want: want{Mismatch, 0, 1},
		},
		{
			name: "mismatch then resync",
			ref: rout(
				"> str(list(a = 1))",
				"List of 1",
				" $ a: num 1",
				"> length(1:3)",
				"[1] 3",
			),
			cand: rout(
				"> str(list(a = 1))",
				"List of 1",
				" $ a: int 1",
				` - attr(*, "x")= chr "y"`,
				"> length(1:3)",
				"[1] 3",
			),
			want: want{Mismatch, 1, 1},
		},
		{
			name: "failed statement stays failed",
			ref:  rout("> print(1:3); print(4); print(5)", "[1] 1 2 3", "[1] 4", "[1] 5"),
			cand: rout("> print(1:3); print(4); print(5)", "[1] 1 2 4", "[1] 4", "[1] 5"),
			want: want{Mismatch, 0, 1},
		},
		{
			name: "error wording differs",
			ref:  rout(`> stop("boom")`, "Error: boom", "Execution halted"),
			cand: rout(`> stop("boom")`, `Error in stop("boom") : boom`, "Execution halted"),
			want: want{Equal, 1, 0},
		},
		{
			name: "error missing in candidate",
			ref:  rout(`> stop("boom")`, "Error: boom", "Execution halted"),
			cand: rout(`> stop("boom")`, `[1] "boom"`, "Execution halted"),
			want: want{Mismatch, 0, 1},
		},
		{
			name: "graphics warning and visible NULL skipped",
			ref:  rout("> plot(1:10)", "> 1 + 1", "[1] 2"),
			cand: rout(
				"> plot(1:10)",
				"Warning message:",
				"FastR does not support graphics package and may produce weird results",
				"NULL",
				"> 1 + 1",
				"[1] 2",
			),
			want: want{Equal, 2, 0},
		},
		{
			name: "closing unused connection skipped",
			ref: rout(
				`> f <- file(tempfile(), "w")`,
				"> invisible(gc())",
				"Warning message:",
				"closing unused connection 3 (/tmp/Rtmp1/file)",
				"> 2 * 3",
				"[1] 6",
			),
			cand: rout(
				`> f <- file(tempfile(), "w")`,
				"> invisible(gc())",
				"> 2 * 3",
				"[1] 6",
			),
			want: want{Equal, 3, 0},
		},
		{
			name: "timing ignored",
			ref:  rout("> proc.time()", "   user  system elapsed ", "  0.151   0.032   0.176 "),
			cand: rout("> proc.time()", "   user  system elapsed ", " 12.310   0.540   4.020 "),
			want: want{Equal, 1, 0},
		},
		{
			name: "session info ignored",
			ref: rout(
				"> sessionInfo()",
				"R version 4.0.3 (2020-10-10)",
				"Platform: x86_64-pc-linux-gnu (64-bit)",
				"> 1",
				"[1] 1",
			),
			cand: rout(
				"> sessionInfo()",
				"R version 4.0.3 (candidate)",
				"Platform: x86_64 (64-bit)",
				"Running under: Linux",
				"> 1",
				"[1] 1",
			),
			want: want{Equal, 2, 0},
		},
		{
			name: "candidate shorter",
			ref:  rout("> 1", "[1] 1", "> 2", "[1] 2"),
			cand: rout("> 1", "[1] 1"),
			want: want{Mismatch, 1, 0},
		},
		{
			name: "candidate continues past end marker",
			ref:  rout("> 1", "[1] 1", "Time elapsed: 0.1", "garbage"),
			cand: rout("> 1", "[1] 1", "> 2", "[1] 2"),
			want: want{Equal, 1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertResult(t, tt.want, compare(tt.ref, tt.cand))
		})
	}
}

func TestCompare_Malformed(t *testing.T) {
	good := rout("> 1", "[1] 1")
	tests := []struct {
		name string
		ref  []string
		cand []string
	}{
		{"reference without start", []string{"> 1", "[1] 1"}, good},
		{"candidate without start", good, []string{"> 1", "[1] 1"}},
		{"start marker then blanks", []string{"Type 'q()' to quit R.", "", "  "}, good},
		{"end marker on first line", append([]string{"Time elapsed: 1"}, good...), good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compare(tt.ref, tt.cand)
			assertResult(t, want{Malformed, 0, 0}, got)
			assert.Empty(t, got.Mismatches)
		})
	}
}

func TestCompare_Reflexive(t *testing.T) {
	x := rout(
		"> x <- c(1, 2, 3)",
		"> mean(x)",
		"[1] 2",
		"> # a comment",
		`> print("a")`,
		`[1] "a"`,
		"> ",
		"> proc.time()",
		"   user  system elapsed ",
		"  0.150   0.030   0.170 ",
	)
	assertResult(t, want{Equal, 4, 0}, compare(x, x))

	withEnd := append(append([]string{}, x...), "Time elapsed: 0.2")
	assertResult(t, want{Equal, 4, 0}, compare(withEnd, withEnd))
}

func TestCompare_ManyStatements(t *testing.T) {
	var ref, cand []string
	for i := 0; i < 26; i++ {
		stmt := "> v" + string(rune('a'+i)) + " <- " + string(rune('a'+i))
		ref = append(ref, stmt, "[1] ok")
		cand = append(cand, stmt, "[1] ok")
	}
	assertResult(t, want{Equal, 26, 0}, compare(rout(ref...), rout(cand...)))

	// Break every other statement's output.
	for i := 1; i < len(cand); i += 4 {
		cand[i] = "[1] bad"
	}
	assertResult(t, want{Mismatch, 13, 13}, compare(rout(ref...), rout(cand...)))
}

func TestCompare_RecordsMismatches(t *testing.T) {
	got := compare(
		rout("> mean(c(1, 2, 3))", "[1] 2"),
		rout("> mean(c(1, 2, 3))", "[1] 2.5"),
	)
	require.Len(t, got.Mismatches, 1)
	assert.Equal(t, LineDiff{RefLine: 6, CandLine: 6, Reference: "[1] 2", Candidate: "[1] 2.5"}, got.Mismatches[0])
}

func TestCompare_LogsMismatch(t *testing.T) {
	var buf bytes.Buffer
	c := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	c.Compare(
		transcript.New("gnur/a.Rout", rout("> 1", "[1] 1")),
		transcript.New("fastr/a.Rout", rout("> 1", "[1] 2")),
	)
	assert.Contains(t, buf.String(), "gnur/a.Rout:6")
	assert.Contains(t, buf.String(), "fastr/a.Rout:6")
}

func TestCompare_CustomAnchors(t *testing.T) {
	c := New(WithStartMarker("BEGIN"), WithEndMarker("END"), WithPrompt("$ "))
	ref := []string{"BEGIN", "$ echo hi", "hi", "END", "noise"}
	cand := []string{"header", "BEGIN", "", "$ echo hi", "hi", "more"}
	v, p, f := c.Compare(transcript.New("r", ref), transcript.New("c", cand)).Tuple()
	assert.Equal(t, Equal, v)
	assert.Equal(t, 1, p)
	assert.Equal(t, 0, f)
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "malformed", Malformed.String())
	assert.Equal(t, "equal", Equal.String())
	assert.Equal(t, "mismatch", Mismatch.String())
}

func TestIsStatementBegin(t *testing.T) {
	assert.True(t, isStatementBegin("> ", "> x"))
	assert.False(t, isStatementBegin("> ", "> "))
	assert.False(t, isStatementBegin("> ", "> # note"))
	assert.False(t, isStatementBegin("> ", "+ x"))
	assert.False(t, isStatementBegin("", "> x"))
}
