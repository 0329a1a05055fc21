package config

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinPort and MaxPort bound every port accepted from a user or a file.
	MinPort = 1
	MaxPort = 65535
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds the result of configuration validation.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []string
}

// ValidatePort checks that port lies in [MinPort, MaxPort].
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return ValidationError{
			Field:   "port",
			Message: fmt.Sprintf("%d is out of range (%d-%d)", port, MinPort, MaxPort),
		}
	}
	return nil
}

// ParsePort parses user input as a port number and validates its range.
func ParsePort(input string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, ValidationError{Field: "port", Message: fmt.Sprintf("%q is not a number", input)}
	}
	if err := ValidatePort(port); err != nil {
		return 0, err
	}
	return port, nil
}

// Validate checks the configuration for errors and warnings.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	if strings.TrimSpace(c.Tool.Binary) == "" {
		result.addError("tool.binary", "tool binary is required")
	}
	if c.Tool.TimeoutSeconds < 1 {
		result.addError("tool.timeout_seconds", "timeout must be at least 1 second")
	}
	if c.Tool.DevTimeoutSeconds < 1 {
		result.addError("tool.dev_timeout_seconds", "dev timeout must be at least 1 second")
	}
	if c.Tool.VersionTimeoutSeconds < 1 {
		result.addError("tool.version_timeout_seconds", "version timeout must be at least 1 second")
	}

	if err := ValidatePort(c.Server.Port); err != nil {
		result.addError("server.port", err.(ValidationError).Message)
	}
	// 0 means "port + 1"
	if c.Server.FallbackPort != 0 {
		if err := ValidatePort(c.Server.FallbackPort); err != nil {
			result.addError("server.fallback_port", err.(ValidationError).Message)
		} else if c.Server.FallbackPort == c.Server.Port {
			result.addWarning("server.fallback_port equals server.port; fallback will never succeed")
		}
	}
	if c.Server.SettleSeconds < 0 {
		result.addError("server.settle_seconds", "settle delay cannot be negative")
	}
	if c.Server.PollSeconds < 1 {
		result.addError("server.poll_seconds", "poll interval must be at least 1 second")
	}

	switch strings.ToLower(c.Backup.Format) {
	case "gzip", "gz", "zstd", "zst":
	default:
		result.addError("backup.format", fmt.Sprintf("unknown format %q; use gzip or zstd", c.Backup.Format))
	}
	if strings.TrimSpace(c.Backup.Prefix) == "" {
		result.addError("backup.prefix", "backup prefix is required")
	}
	if strings.TrimSpace(c.Backup.Dir) == "" {
		result.addError("backup.dir", "backup directory is required")
	}

	if strings.TrimSpace(c.ExamplesDir) == "" {
		result.addWarning("examples_dir is empty; the examples menu will look in the working directory")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		result.addWarning(fmt.Sprintf("unrecognized log level '%s'; using info", c.Logging.Level))
	}

	return result
}

// addError adds an error and marks the result as invalid.
func (r *ValidationResult) addError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// addWarning adds a warning without invalidating the result.
func (r *ValidationResult) addWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// String returns a human-readable validation summary.
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString("Configuration is valid\n")
	} else {
		sb.WriteString("Configuration has errors:\n")
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  ✗ %s: %s\n", err.Field, err.Message))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", warn))
		}
	}

	return sb.String()
}

// MustValidate validates the config and returns an error if invalid.
func (c *Config) MustValidate() error {
	result := c.Validate()
	if !result.Valid {
		var errMsgs []string
		for _, e := range result.Errors {
			errMsgs = append(errMsgs, e.Error())
		}
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errMsgs, "; "))
	}
	return nil
}
