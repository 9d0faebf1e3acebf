package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Embedded default configuration
//
//go:embed default_config.toml
var embeddedConfigData []byte

// Config holds the extraction configuration.
type Config struct {
	Dependencies DependencyConfig `toml:"dependencies"`
	Calls        CallConfig       `toml:"calls"`
}

// DependencyConfig holds vendored/external code classification patterns.
type DependencyConfig struct {
	ExcludedDirs []string `toml:"excluded_dirs"`
}

// CallConfig holds call filtering rules.
type CallConfig struct {
	BuiltinStatements []string `toml:"builtin_statements"`
	CustomErrorPrefix string   `toml:"custom_error_prefix"`
}

// DefaultConfig returns the embedded configuration, replaced wholesale by a
// local config.toml when one is present in the working directory.
func DefaultConfig() (*Config, error) {
	var config Config
	if err := toml.Unmarshal(embeddedConfigData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}

	localConfigPaths := []string{
		"config.toml",
		"../config.toml",
		"../../config.toml",
	}

	for _, path := range localConfigPaths {
		if _, err := os.Stat(path); err == nil {
			localConfig, err := LoadFromFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load local config %s: %v\n", path, err)
				break
			}
			return localConfig, nil
		}
	}

	return &config, nil
}

// LoadFromFile loads configuration from a TOML file.
func LoadFromFile(filepath string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(filepath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", filepath, err)
	}
	return &config, nil
}

// IsExcludedDir reports whether a single path segment marks vendored code.
func (c *Config) IsExcludedDir(segment string) bool {
	for _, dir := range c.Dependencies.ExcludedDirs {
		if segment == dir {
			return true
		}
	}
	return false
}

// IsBuiltinStatement reports whether a call target name denotes a built-in
// control-flow statement. Names may carry a parameter-signature suffix, e.g.
// "require(bool,string)"; matching uses the base name only.
func (c *Config) IsBuiltinStatement(name string) bool {
	base := name
	if i := strings.Index(base, "("); i >= 0 {
		base = base[:i]
	}
	for _, stmt := range c.Calls.BuiltinStatements {
		if base == stmt {
			return true
		}
	}
	return false
}

// IsCustomError reports whether a call target name denotes a custom-error
// revert rather than a genuine call.
func (c *Config) IsCustomError(name string) bool {
	return c.Calls.CustomErrorPrefix != "" && strings.HasPrefix(name, c.Calls.CustomErrorPrefix)
}
