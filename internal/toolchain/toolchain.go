// Package toolchain invokes the external stk command-line tool.
// Every invocation is bounded by a timeout and reported as a tagged Result
// so callers never have to inspect exec errors themselves.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kannan/stk-executor/internal/logger"
)

// DefaultBinary is the name of the external tool looked up on PATH.
const DefaultBinary = "stk"

// waitDelay bounds how long Wait blocks on output pipes after a kill.
const waitDelay = 500 * time.Millisecond

// ErrNotFound is returned when a binary is not on the executable search path.
var ErrNotFound = errors.New("not found in PATH")

// Status classifies the outcome of an invocation.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusNotFound
	StatusTimeout
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusNotFound:
		return "not found"
	case StatusTimeout:
		return "timeout"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single tool invocation.
// Stdout and Stderr are empty unless the process completed.
type Result struct {
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// OK reports whether the tool exited with status 0.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Runner runs the external tool from a working directory.
type Runner struct {
	// Binary is the tool name or path, "stk" by default.
	Binary string
	// Dir is the working directory of every invocation; empty means the current one.
	Dir string
	// Stdout and Stderr receive the output of streaming invocations (Serve, Install).
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Runner for binary executed from dir.
func New(binary, dir string) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runner{Binary: binary, Dir: dir}
}

// Run invokes the tool with args, capturing its output and enforcing timeout.
func (r *Runner) Run(ctx context.Context, timeout time.Duration, args ...string) Result {
	return r.run(ctx, timeout, r.Binary, args)
}

func (r *Runner) run(ctx context.Context, timeout time.Duration, name string, args []string) Result {
	start := time.Now()
	log := logger.With("tool", name, "args", strings.Join(args, " "))

	path, err := exec.LookPath(name)
	if err != nil {
		log.Warn("tool lookup failed", "error", err)
		if errors.Is(err, exec.ErrNotFound) {
			return Result{Status: StatusNotFound, ExitCode: -1}
		}
		return Result{Status: StatusFailed, ExitCode: -1, Stderr: err.Error()}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.Dir = r.Dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	result := Result{Duration: time.Since(start), Status: classify(err, ctx.Err(), runCtx.Err())}

	switch result.Status {
	case StatusSuccess:
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
	case StatusCanceled, StatusTimeout:
		// whatever the process printed is incomplete
		result.ExitCode = -1
	default:
		result.ExitCode = -1
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else if result.Stderr == "" {
			result.Stderr = err.Error()
		}
	}

	log.Debug("tool finished",
		"status", result.Status.String(),
		"exit_code", result.ExitCode,
		"duration", result.Duration.Round(time.Millisecond))
	return result
}

// classify maps a finished run to its status. A process that exited cleanly
// is a success even if a context expired while it was being reaped.
func classify(runErr, callerErr, deadlineErr error) Status {
	switch {
	case runErr == nil:
		return StatusSuccess
	case callerErr != nil:
		return StatusCanceled
	case errors.Is(deadlineErr, context.DeadlineExceeded):
		return StatusTimeout
	}
	return StatusFailed
}

// Version probes the installed tool version. It tries "stk --version" first
// and falls back to "npx stack-extension --version".
func (r *Runner) Version(ctx context.Context, timeout time.Duration) (string, error) {
	res := r.Run(ctx, timeout, "--version")
	if res.OK() {
		return strings.TrimSpace(res.Stdout), nil
	}

	res = r.run(ctx, timeout, "npx", []string{"stack-extension", "--version"})
	if res.OK() {
		return strings.TrimSpace(res.Stdout), nil
	}

	return "", fmt.Errorf("%s --version: %s", r.Binary, res.Status)
}

// Serve runs "stk dev <file> --port <port>" until it exits, ctx is cancelled
// or timeout elapses. Output is streamed to the runner's writers.
// Cancellation and the timeout ceiling are normal ways for the server to stop
// and return nil.
func (r *Runner) Serve(ctx context.Context, timeout time.Duration, file string, port int) error {
	path, err := exec.LookPath(r.Binary)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%s: %w", r.Binary, ErrNotFound)
		}
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, "dev", file, "--port", strconv.Itoa(port))
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.WaitDelay = waitDelay

	logger.Info("starting dev server", "file", file, "port", port)
	err = cmd.Run()
	if runCtx.Err() != nil {
		logger.Info("dev server stopped", "port", port, "reason", runCtx.Err())
		return nil
	}
	if err != nil {
		return fmt.Errorf("dev server exited: %w", err)
	}
	return nil
}
