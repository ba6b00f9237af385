package config

import (
	"fmt"
	"os"
	"strconv"
)

// Setting sources, highest priority first.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// CliFlags holds the values of command-line flags. Empty strings and zero
// Jobs mean the flag was not given; booleans carry an explicit Set marker.
type CliFlags struct {
	ConfigPath string
	FilterFile string
	RefRoot    string
	CandRoot   string
	Format     string
	Theme      string
	LogLevel   string
	Jobs       int

	NoColor             bool
	NoColorSet          bool
	DumpPreprocessed    bool
	DumpPreprocessedSet bool
	NoReport            bool
	NoReportSet         bool
}

// ResolvedConfig is the final configuration after applying all sources.
type ResolvedConfig struct {
	AppConfig
	ConfigFile string            // file read, "" if none
	Sources    map[string]string // setting name to the source that set it
}

// ResolveConfig resolves configuration from all sources: CLI flags over
// environment variables over the config file over defaults.
func ResolveConfig(cli CliFlags) (*ResolvedConfig, error) {
	appCfg, path, err := LoadConfig(cli.ConfigPath)
	if err != nil {
		return nil, err
	}
	base := SourceDefault
	if path != "" {
		base = SourceFile
	}
	r := &ResolvedConfig{AppConfig: *appCfg, ConfigFile: path, Sources: make(map[string]string)}

	r.FilterFile = r.resolveString("filter_file", base, r.FilterFile, cli.FilterFile, "PKGCMP_FILTER_FILE")
	r.RefRoot = r.resolveString("ref_root", base, r.RefRoot, cli.RefRoot, "PKGCMP_REF_ROOT")
	r.CandRoot = r.resolveString("cand_root", base, r.CandRoot, cli.CandRoot, "PKGCMP_CAND_ROOT")
	r.Format = r.resolveString("format", base, r.Format, cli.Format, "PKGCMP_FORMAT")
	r.Theme = r.resolveString("theme", base, r.Theme, cli.Theme, "PKGCMP_THEME")
	r.LogLevel = r.resolveString("log_level", base, r.LogLevel, cli.LogLevel, "PKGCMP_LOG_LEVEL")

	r.Sources["jobs"] = base
	switch {
	case cli.Jobs != 0:
		r.Jobs, r.Sources["jobs"] = cli.Jobs, SourceCLI
	case os.Getenv("PKGCMP_JOBS") != "":
		n, err := strconv.Atoi(os.Getenv("PKGCMP_JOBS"))
		if err != nil {
			return nil, fmt.Errorf("PKGCMP_JOBS: %w", err)
		}
		r.Jobs, r.Sources["jobs"] = n, SourceEnv
	}

	r.NoColor = r.resolveBool("no_color", base, r.NoColor, cli.NoColor, cli.NoColorSet, "PKGCMP_NO_COLOR")
	if !cli.NoColorSet && os.Getenv("NO_COLOR") != "" {
		// https://no-color.org: any non-empty value disables color.
		r.NoColor, r.Sources["no_color"] = true, SourceEnv
	}
	r.DumpPreprocessed = r.resolveBool("dump_preprocessed", base, r.DumpPreprocessed,
		cli.DumpPreprocessed, cli.DumpPreprocessedSet, "PKGCMP_DUMP_PREPROCESSED")
	r.NoReport = r.resolveBool("no_report", base, r.NoReport, cli.NoReport, cli.NoReportSet, "PKGCMP_NO_REPORT")

	if err := validateResolvedConfig(r); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return r, nil
}

func (r *ResolvedConfig) resolveString(name, base, current, cli, envKey string) string {
	if cli != "" {
		r.Sources[name] = SourceCLI
		return cli
	}
	if v := os.Getenv(envKey); v != "" {
		r.Sources[name] = SourceEnv
		return v
	}
	r.Sources[name] = base
	return current
}

func (r *ResolvedConfig) resolveBool(name, base string, current, cli, cliSet bool, envKey string) bool {
	if cliSet {
		r.Sources[name] = SourceCLI
		return cli
	}
	if b := getEnvBool(envKey); b != nil {
		r.Sources[name] = SourceEnv
		return *b
	}
	r.Sources[name] = base
	return current
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set to a valid boolean.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func validateResolvedConfig(cfg *ResolvedConfig) error {
	switch cfg.Format {
	case "auto", "terminal", "llm", "json":
	default:
		return fmt.Errorf("invalid format %q (must be: auto, terminal, llm, json)", cfg.Format)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (must be: debug, info, warn, error)", cfg.LogLevel)
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got: %d", cfg.Jobs)
	}
	return nil
}
