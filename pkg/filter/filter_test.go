package filter

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, line string) Filter {
	t.Helper()
	f, err := Parse(line)
	require.NoError(t, err, line)
	return f
}

func TestApply_Actions(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		in     []string
		want   []string
	}{
		{
			name:   "delete substring",
			filter: `.* => d/ms`,
			in:     []string{"took 12ms", "ms ms", "none"},
			want:   []string{"took 12", " ", "none"},
		},
		{
			name:   "delete joins halves",
			filter: `.* => d/ab`,
			in:     []string{"aabb"},
			want:   []string{""},
		},
		{
			name:   "delete line with context",
			filter: `.* => D-1+2/Loading`,
			in:     []string{"a", "b", "Loading x", "c", "d", "e"},
			want:   []string{"a", "", "", "", "", "e"},
		},
		{
			name:   "delete line at edges",
			filter: `.* => D-3+3/x`,
			in:     []string{"x", "y"},
			want:   []string{"", ""},
		},
		{
			name:   "overlapping windows",
			filter: `.* => D+1/hit`,
			in:     []string{"hit", "hit", "keep?", "keep"},
			want:   []string{"", "", "", "keep"},
		},
		{
			name:   "replace substring",
			filter: `.* => r/0x7f\/abc/<addr>`,
			in:     []string{"at 0x7f/abc here"},
			want:   []string{"at <addr> here"},
		},
		{
			name:   "replace whole line",
			filter: `.* => R/Java HotSpot/<jvm>`,
			in:     []string{"OpenJDK Java HotSpot 64", "x"},
			want:   []string{"<jvm>", "x"},
		},
		{
			name:   "regex substitute with back reference",
			filter: `.* => s/(\d+) secs/\1 s`,
			in:     []string{"took 3 secs", "none"},
			want:   []string{"took 3 s", "none"},
		},
		{
			name:   "regex substitute keeps dollar literal",
			filter: `.* => s/USD/$`,
			in:     []string{"5 USD"},
			want:   []string{"5 $"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.in, Set{mustParse(t, tt.filter)})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := []string{"abc"}
	_ = Apply(in, Set{mustParse(t, `.* => d/b`)})
	assert.Equal(t, []string{"abc"}, in)
}

func TestApply_OrderMatters(t *testing.T) {
	set := Set{
		mustParse(t, `.* => r/foo/bar`),
		mustParse(t, `.* => R/bar/<gone>`),
	}
	assert.Equal(t, []string{"<gone>"}, Apply([]string{"foo"}, set))

	reversed := Set{set[1], set[0]}
	assert.Equal(t, []string{"bar"}, Apply([]string{"foo"}, reversed))
}

func TestApply_Idempotent(t *testing.T) {
	set := Set{
		mustParse(t, `.* => d/abc`),
		mustParse(t, `.* => r/tmp\/Rtmp/<tmp>`),
		mustParse(t, `.* => d/ `),
	}
	inputs := [][]string{
		{"aabcbc x", "/tmp/Rtmp123/file", ""},
		{"abcabc", "no match", "a b d"},
	}
	for _, in := range inputs {
		once := Apply(in, set)
		twice := Apply(once, set)
		assert.Equal(t, once, twice)
	}
}

func TestApplyDefault(t *testing.T) {
	in := []string{
		"RUNIT TEST PROTOCOL -- Thu Feb 08 10:54:42 2018",
		"/home/u/test.fastr/pkg/tests",
		"gnur and fastr",
	}
	want := []string{
		"RUNIT TEST PROTOCOL -- <date_time>",
		"/home/u/test.<engine>/pkg/tests",
		"<engine> and <engine>",
	}
	assert.Equal(t, want, Apply(in, nil))
	assert.Equal(t, want, ApplyDefault(in, DefaultEngines))
}

func TestSelect(t *testing.T) {
	set := Set{
		mustParse(t, `zoo => d/a`),
		mustParse(t, `.* => d/b`),
		mustParse(t, `Matrix|lattice => d/c`),
	}
	assert.Len(t, set.Select("zoo"), 2)
	assert.Len(t, set.Select("lattice"), 2)
	assert.Len(t, set.Select("ggplot2"), 1)
	assert.Len(t, set.Select(""), 3)
	// Anchored at the start only.
	assert.Len(t, set.Select("zoology"), 2)
	assert.Len(t, set.Select("bazoo"), 1)
}

func TestPipeline_FallsBackToDefault(t *testing.T) {
	p := Pipeline{Set: Set{mustParse(t, `zoo => d/x`)}, Engines: []string{"cand"}}
	assert.Equal(t, []string{"<engine> y"}, p.Apply([]string{"cand y"}, "other"))
	assert.Equal(t, []string{"cand y"}, p.Apply([]string{"cand xy"}, "zoo"))
}

func TestFilter_Matches(t *testing.T) {
	f := Filter{Package: regexp.MustCompile("^(?:abc)"), Action: Delete{Sub: "x"}}
	assert.True(t, f.Matches("abc"))
	assert.True(t, f.Matches(""))
	assert.False(t, f.Matches("xabc"))
	assert.True(t, Filter{Action: Delete{Sub: "x"}}.Matches("anything"))
}
