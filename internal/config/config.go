package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the settings read from .pkgcmp.yaml.
type AppConfig struct {
	FilterFile       string   `yaml:"filter_file"`
	RefRoot          string   `yaml:"ref_root"`
	CandRoot         string   `yaml:"cand_root"`
	Jobs             int      `yaml:"jobs"` // 0 uses the number of CPUs
	Engines          []string `yaml:"engines"`
	StartMarker      string   `yaml:"start_marker"`
	EndMarker        string   `yaml:"end_marker"`
	Prompt           string   `yaml:"prompt"`
	DumpPreprocessed bool     `yaml:"dump_preprocessed"`
	NoReport         bool     `yaml:"no_report"`
	Format           string   `yaml:"format"`
	Theme            string   `yaml:"theme"`
	LogLevel         string   `yaml:"log_level"`
	NoColor          bool     `yaml:"no_color"`
}

// Constants for default values.
const (
	ConfigFileName  = ".pkgcmp.yaml"
	DefaultRefRoot  = "test.gnur"
	DefaultCandRoot = "test.fastr"
	DefaultFormat   = "auto"
	DefaultTheme    = "default"
	DefaultLogLevel = "info"
)

// Defaults returns the configuration used when nothing else is set.
// Empty anchors and engines mean the comparator and filter defaults.
func Defaults() *AppConfig {
	return &AppConfig{
		RefRoot:  DefaultRefRoot,
		CandRoot: DefaultCandRoot,
		Format:   DefaultFormat,
		Theme:    DefaultTheme,
		LogLevel: DefaultLogLevel,
	}
}

// LoadConfig reads the configuration file at path over the defaults. An
// empty path looks for .pkgcmp.yaml in the working directory and then in
// the user config directory; finding neither is not an error. The path
// actually read is returned, or "" when defaults were used.
func LoadConfig(path string) (*AppConfig, string, error) {
	cfg := Defaults()
	if path == "" {
		path = getConfigPath()
		if path == "" {
			return cfg, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, path, nil
}

// getConfigPath finds .pkgcmp.yaml: the working directory first, then
// <UserConfigDir>/pkgcmp.
func getConfigPath() string {
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "pkgcmp", ConfigFileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
