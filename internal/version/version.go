// Package version holds build metadata for pkgcmp.
package version

import "fmt"

// Populated by the linker at build time:
//
//	-ldflags "-X github.com/dkoosis/pkgcmp/internal/version.Version=v1.2.0"
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("pkgcmp %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
