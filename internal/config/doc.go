// Package config handles configuration loading and merging for pkgcmp.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--filters, --jobs, --format, --theme, --no-color, etc.)
//  2. Environment variables (PKGCMP_*, NO_COLOR)
//  3. YAML config file (.pkgcmp.yaml in the working directory or ~/.config/pkgcmp/.pkgcmp.yaml)
//  4. Hardcoded defaults
//
// The resolved value is passed explicitly to the commands; nothing below the
// CLI reads configuration on its own.
//
// # Key Configuration Options
//
//   - filter_file: output filter definitions; empty uses the built-in default filter
//   - ref_root, cand_root: directories holding one output directory per package
//   - jobs: packages checked in parallel (0 = number of CPUs)
//   - engines: tokens masked by the default filter
//   - start_marker, end_marker, prompt: comparison anchors
//   - format: auto, terminal, llm or json
//
// # Environment Variables
//
//   - PKGCMP_FILTER_FILE, PKGCMP_REF_ROOT, PKGCMP_CAND_ROOT, PKGCMP_JOBS
//   - PKGCMP_FORMAT, PKGCMP_THEME, PKGCMP_LOG_LEVEL
//   - PKGCMP_DUMP_PREPROCESSED, PKGCMP_NO_REPORT: "true" or "1" to enable
//   - PKGCMP_NO_COLOR, or NO_COLOR set to any value, to disable colors
package config
