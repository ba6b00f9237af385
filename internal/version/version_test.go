package version

import "testing"

func TestString(t *testing.T) {
	oldV, oldC, oldD := Version, CommitHash, BuildDate
	t.Cleanup(func() { Version, CommitHash, BuildDate = oldV, oldC, oldD })

	Version, CommitHash, BuildDate = "v0.3.1", "abc1234", "2026-10-01"
	if got, want := String(), "pkgcmp v0.3.1 (commit abc1234, built 2026-10-01)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
