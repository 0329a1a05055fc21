// Package config provides configuration loading and validation for stk-executor.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config represents the optional executor-config.json document.
// Keys not listed here are ignored when the file is decoded.
type Config struct {
	Termux      PlatformOptions `yaml:"termux" json:"termux"`
	Generic     PlatformOptions `yaml:"generic" json:"generic"`
	Tool        Tool            `yaml:"tool" json:"tool"`
	Server      Server          `yaml:"server" json:"server"`
	ExamplesDir string          `yaml:"examples_dir" json:"examples_dir"`
	Backup      Backup          `yaml:"backup" json:"backup"`
	Logging     Logging         `yaml:"logging" json:"logging"`
}

// PlatformOptions is the flat toggle record of one platform variant.
type PlatformOptions struct {
	UseTermuxOpen     bool `yaml:"use_termux_open" json:"use_termux_open"`
	OptimizeForMobile bool `yaml:"optimize_for_mobile" json:"optimize_for_mobile"`
	BatterySaver      bool `yaml:"battery_saver" json:"battery_saver"`
	TouchGestures     bool `yaml:"touch_gestures" json:"touch_gestures"`
	MobileFriendly    bool `yaml:"mobile_friendly" json:"mobile_friendly"`
	AutoOpenBrowser   bool `yaml:"auto_open_browser" json:"auto_open_browser"`
}

// Tool describes how the external stk binary is invoked.
type Tool struct {
	Binary                string `yaml:"binary" json:"binary"`
	TimeoutSeconds        int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	DevTimeoutSeconds     int    `yaml:"dev_timeout_seconds" json:"dev_timeout_seconds"`
	VersionTimeoutSeconds int    `yaml:"version_timeout_seconds" json:"version_timeout_seconds"`
}

// Server holds the dev server port settings.
type Server struct {
	Port          int `yaml:"port" json:"port"`
	FallbackPort  int `yaml:"fallback_port" json:"fallback_port"`
	SettleSeconds int `yaml:"settle_seconds" json:"settle_seconds"`
	PollSeconds   int `yaml:"poll_seconds" json:"poll_seconds"`
}

// Backup defines where project backups are written.
type Backup struct {
	Dir    string `yaml:"dir" json:"dir"`
	Prefix string `yaml:"prefix" json:"prefix"`
	Format string `yaml:"format" json:"format"`
	Level  int    `yaml:"level" json:"level"`
}

// Logging defines logging configuration.
type Logging struct {
	Path  string `yaml:"path" json:"path"`
	Level string `yaml:"level" json:"level"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Termux: PlatformOptions{
			UseTermuxOpen:     true,
			OptimizeForMobile: true,
			BatterySaver:      true,
			TouchGestures:     true,
			MobileFriendly:    true,
			AutoOpenBrowser:   false,
		},
		Generic: PlatformOptions{
			AutoOpenBrowser: true,
		},
		Tool: Tool{
			Binary:                "stk",
			TimeoutSeconds:        30,
			DevTimeoutSeconds:     3600,
			VersionTimeoutSeconds: 5,
		},
		Server: Server{
			Port:          3000,
			FallbackPort:  3001,
			SettleSeconds: 3,
			PollSeconds:   1,
		},
		ExamplesDir: "examples",
		Backup: Backup{
			Dir:    "~/stack-backups",
			Prefix: "stack-extension",
			Format: "gzip",
			Level:  6,
		},
		Logging: Logging{
			Path:  "",
			Level: "error",
		},
	}
}

// Options returns the toggle record for the named platform variant.
func (c *Config) Options(variant string) PlatformOptions {
	if variant == "termux" {
		return c.Termux
	}
	return c.Generic
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetBackupDir returns the backup directory with ~ expanded.
func (c *Config) GetBackupDir() string {
	return ExpandHome(c.Backup.Dir)
}
