// Package app provides application-level metadata for stk-executor.
package app

import (
	"fmt"
	"runtime"
)

var (
	// Version is the application version (set at build time).
	Version = "1.0.0"
	// Commit is the git commit hash (set at build time).
	Commit = "unknown"
	// Date is the build date (set at build time).
	Date = "unknown"
)

const (
	// Name is the product name shown in banners and titles.
	Name = "Stack Extension Executor"
	// Tagline is printed under the banner title.
	Tagline = "A bilingual programming language, one menu away"
)

// GetVersionInfo returns detailed version information.
func GetVersionInfo() string {
	return fmt.Sprintf(`%s v%s
Commit: %s
Built:  %s
Go:     %s
OS:     %s/%s`,
		Name, Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
