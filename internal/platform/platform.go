// Package platform describes what the host can do beyond running stk:
// opening URLs, sharing files and where backups live. The shell receives one
// Platform record at startup instead of branching on the variant everywhere.
package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/browser"

	"github.com/kannan/stk-executor/internal/logger"
)

// Variant names a platform flavour of the shell.
type Variant string

const (
	Generic Variant = "generic"
	Termux  Variant = "termux"
)

// termuxVersionFile exists on every Termux installation.
const termuxVersionFile = "/etc/termux_version"

// ErrUnsupported is returned by capabilities the platform does not have.
var ErrUnsupported = errors.New("not supported on this platform")

// Platform is the capability record handed to the interactive shell.
type Platform struct {
	Variant Variant
	// Label is shown in the banner, e.g. "Termux Edition".
	Label string
	// Extras enables the platform-specific menu entries (a-c).
	Extras bool
	// Version is the host platform version, if known.
	Version string
	// BackupDir is where project backups are written.
	BackupDir string

	// OpenURL opens url in the platform browser.
	OpenURL func(ctx context.Context, url string) error
	// Share hands a file to the platform share sheet.
	Share func(ctx context.Context, path string) error
	// OpenHint is the manual command a user can run when OpenURL fails.
	OpenHint func(url string) string
}

// ParseVariant parses a --platform value. "auto" and "" detect the host.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Detect(), nil
	case string(Generic):
		return Generic, nil
	case string(Termux), "android":
		return Termux, nil
	default:
		return "", fmt.Errorf("unknown platform %q (use auto, generic or termux)", s)
	}
}

// Detect reports Termux when running inside a Termux environment.
func Detect() Variant {
	if IsTermux() {
		return Termux
	}
	return Generic
}

// IsTermux checks the markers a Termux installation leaves behind.
func IsTermux() bool {
	if _, err := os.Stat(termuxVersionFile); err == nil {
		return true
	}
	if os.Getenv("TERMUX_VERSION") != "" {
		return true
	}
	return strings.Contains(os.Getenv("PREFIX"), "com.termux")
}

// New returns the capability record for v, writing backups under backupDir.
func New(v Variant, backupDir string) *Platform {
	p := NewGeneric()
	if v == Termux {
		p = NewTermux()
	}
	p.BackupDir = backupDir
	return p
}

// NewGeneric returns the desktop platform: system browser, no share sheet.
func NewGeneric() *Platform {
	return &Platform{
		Variant: Generic,
		Label:   "Desktop",
		OpenURL: func(_ context.Context, url string) error {
			return browser.OpenURL(url)
		},
		Share: func(context.Context, string) error {
			return ErrUnsupported
		},
		OpenHint: func(url string) string {
			return "open " + url + " in your browser"
		},
	}
}

// NewTermux returns the Android platform backed by the termux-api commands.
func NewTermux() *Platform {
	return &Platform{
		Variant: Termux,
		Label:   "Termux Edition",
		Extras:  true,
		Version: termuxVersion(),
		OpenURL: func(ctx context.Context, url string) error {
			return runIntent(ctx, "termux-open", url)
		},
		Share: func(ctx context.Context, path string) error {
			return runIntent(ctx, "termux-share", path)
		},
		OpenHint: func(url string) string {
			return "termux-open " + url
		},
	}
}

// ErrMissingTermuxAPI is returned when the termux-api package is not installed.
var ErrMissingTermuxAPI = errors.New("termux-api commands not found; install them with: pkg install termux-api")

func init() {
	// The browser launcher's chatter would tear through the menu.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

func runIntent(ctx context.Context, name string, arg string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s: %w", name, ErrMissingTermuxAPI)
	}
	out, err := exec.CommandContext(ctx, name, arg).CombinedOutput()
	if err != nil {
		logger.Warn("intent command failed", "command", name, "error", err, "output", string(out))
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func termuxVersion() string {
	data, err := os.ReadFile(termuxVersionFile)
	if err != nil {
		if v := os.Getenv("TERMUX_VERSION"); v != "" {
			return v
		}
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}
