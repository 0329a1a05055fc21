package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kannan/stk-executor/internal/logger"
)

// ErrNoPackageJSON is returned by Install outside of the stk project directory.
var ErrNoPackageJSON = errors.New("package.json not found; run from the stack-extension project directory")

// Install installs the stk tool from the project in the runner's directory:
// npm install followed by npm install -g .
func (r *Runner) Install(ctx context.Context) error {
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err != nil {
		return ErrNoPackageJSON
	}

	steps := []struct {
		name string
		args []string
	}{
		{"install dependencies", []string{"install"}},
		{"install globally", []string{"install", "-g", "."}},
	}

	for _, s := range steps {
		logger.Info("installer step", "step", s.name)
		cmd := exec.CommandContext(ctx, "npm", s.args...)
		cmd.Dir = r.Dir
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	return nil
}
