package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the default configuration filename.
	DefaultConfigFile = "executor-config.json"
)

// Load reads and parses a configuration file from the given path.
// If path is empty, it looks for executor-config.json in the current directory.
// A missing file is not an error: the defaults are returned instead.
// The document is JSON, which yaml.v3 decodes as a YAML subset.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	// Make path absolute if relative
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Resolve relative paths
	cfg.resolvePaths(filepath.Dir(path))

	return cfg, nil
}

// LoadFromBytes parses configuration from JSON or YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Write saves the configuration as indented JSON. It refuses to overwrite
// an existing file.
func (c *Config) Write(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// resolvePaths converts relative paths to absolute paths based on config directory.
func (c *Config) resolvePaths(configDir string) {
	if c.Logging.Path != "" && !filepath.IsAbs(c.Logging.Path) {
		c.Logging.Path = filepath.Join(configDir, c.Logging.Path)
	}
}

// ToolTimeout returns the timeout applied to every stk invocation except dev.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Tool.TimeoutSeconds) * time.Second
}

// DevTimeout returns the ceiling for the dev server invocation.
func (c *Config) DevTimeout() time.Duration {
	return time.Duration(c.Tool.DevTimeoutSeconds) * time.Second
}

// VersionTimeout returns the timeout of the version probe.
func (c *Config) VersionTimeout() time.Duration {
	return time.Duration(c.Tool.VersionTimeoutSeconds) * time.Second
}

// SettleDelay returns how long to wait before confirming the dev server bound its port.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Server.SettleSeconds) * time.Second
}

// PollInterval returns the wait-loop interval for the given platform options.
// Battery saver mode polls five times less often.
func (c *Config) PollInterval(opts PlatformOptions) time.Duration {
	d := time.Duration(c.Server.PollSeconds) * time.Second
	if opts.BatterySaver {
		d *= 5
	}
	return d
}
