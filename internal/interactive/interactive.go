// Package interactive implements the text menu of the executor: it reads one
// selection per line, dispatches it to an action and loops until the user
// quits, input ends or the process is interrupted.
package interactive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kannan/stk-executor/internal/app"
	"github.com/kannan/stk-executor/internal/config"
	"github.com/kannan/stk-executor/internal/console"
	"github.com/kannan/stk-executor/internal/devserver"
	"github.com/kannan/stk-executor/internal/logger"
	"github.com/kannan/stk-executor/internal/platform"
	"github.com/kannan/stk-executor/internal/styles"
	"github.com/kannan/stk-executor/internal/toolchain"
)

// errInterrupted is returned by prompts and tool runs cut short by an interrupt.
var errInterrupted = errors.New("interrupted")

const (
	defaultWidth = 60
	mobileWidth  = 40
)

// State is the mutable session state. It lives for one Run.
type State struct {
	// CurrentFile is the last successfully selected .stk file, empty if none.
	CurrentFile string
	ServerPort  int
	Platform    platform.Variant
	Options     config.PlatformOptions
}

// Options configures a Shell. Config, Platform, In and Out are required.
type Options struct {
	Config   *config.Config
	Platform *platform.Platform
	// Dir is the project directory; empty means the current one.
	Dir string
	In  io.Reader
	Out io.Writer
	// Interrupts delivers SIGINT; nil disables interrupt handling.
	Interrupts <-chan os.Signal
	// Launcher overrides how the dev server is started.
	Launcher *devserver.Launcher
}

// Shell is the interactive menu.
type Shell struct {
	cfg        *config.Config
	platform   *platform.Platform
	runner     *toolchain.Runner
	launcher   *devserver.Launcher
	dir        string
	in         io.Reader
	out        io.Writer
	interrupts <-chan os.Signal
	items      []menuItem
	width      int
	now        func() time.Time

	state State
	lines chan string
	quit  chan struct{}
}

// New creates a Shell from opts.
func New(opts Options) *Shell {
	cfg := opts.Config
	variant := opts.Platform.Variant

	runner := toolchain.New(cfg.Tool.Binary, opts.Dir)
	runner.Stdout = opts.Out
	runner.Stderr = opts.Out

	launcher := opts.Launcher
	if launcher == nil {
		launcher = &devserver.Launcher{
			Serve: func(ctx context.Context, file string, port int) error {
				return runner.Serve(ctx, cfg.DevTimeout(), file, port)
			},
			Settle:   cfg.SettleDelay(),
			Fallback: cfg.Server.FallbackPort,
		}
	}

	s := &Shell{
		cfg:        cfg,
		platform:   opts.Platform,
		runner:     runner,
		launcher:   launcher,
		dir:        opts.Dir,
		in:         opts.In,
		out:        opts.Out,
		interrupts: opts.Interrupts,
		now:        time.Now,
		state: State{
			ServerPort: cfg.Server.Port,
			Platform:   variant,
			Options:    cfg.Options(string(variant)),
		},
	}

	maxWidth := defaultWidth
	if s.state.Options.MobileFriendly {
		maxWidth = mobileWidth
	}
	s.width = console.Width(opts.Out, maxWidth)
	s.items = s.menu()
	return s
}

// State returns a copy of the session state.
func (s *Shell) State() State {
	return s.state
}

// Run drives the menu loop until the user exits, input ends, ctx is
// cancelled or an interrupt arrives outside the server wait loop.
func (s *Shell) Run(ctx context.Context) error {
	s.startReader()
	defer close(s.quit)

	console.SetTitle(s.out, app.Name)
	logger.Info("shell started", "platform", s.state.Platform, "port", s.state.ServerPort)

	for {
		console.ClearScreen(s.out)
		s.printBanner()
		s.printMenu()

		choice, err := s.prompt(ctx, s.choicePrompt())
		if err != nil {
			return s.exit(err)
		}

		key := strings.ToLower(choice)
		if key == "0" {
			s.goodbye()
			return nil
		}

		item, ok := s.lookup(key)
		if !ok {
			s.println()
			s.println(styles.Warning("Invalid choice! " + s.choiceHint()))
		} else if err := s.dispatch(ctx, item); err != nil {
			if isExit(err) {
				return s.exit(err)
			}
			logger.Error("action failed", "action", item.label, "error", err)
			s.println()
			s.println(styles.Error("Unexpected error: " + err.Error()))
		}

		if err := s.pause(ctx); err != nil {
			return s.exit(err)
		}
	}
}

// dispatch runs one action, turning a panic into an error so the loop survives.
func (s *Shell) dispatch(ctx context.Context, item menuItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("action panicked", "action", item.label, "panic", r)
			err = fmt.Errorf("%v", r)
		}
	}()

	logger.Debug("dispatching", "key", item.key, "action", item.label)
	return item.action(ctx)
}

func isExit(err error) bool {
	return errors.Is(err, errInterrupted) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled)
}

func (s *Shell) exit(err error) error {
	switch {
	case errors.Is(err, errInterrupted):
		s.println()
		s.println(styles.Warning("Exiting..."))
	case errors.Is(err, io.EOF):
		s.println()
		s.goodbye()
	}
	logger.Info("shell stopped", "reason", err)
	return nil
}

func (s *Shell) goodbye() {
	s.println(styles.Success("Thank you for using " + app.Name + "!"))
}

// startReader feeds stdin lines to a channel so prompts can also wait on
// interrupts.
func (s *Shell) startReader() {
	s.lines = make(chan string)
	s.quit = make(chan struct{})

	go func(lines chan<- string, quit <-chan struct{}) {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-quit:
				return
			}
		}
	}(s.lines, s.quit)
}

// prompt prints label and waits for one line of input.
func (s *Shell) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(s.out, styles.PromptStyle.Render(label))

	select {
	case line, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	case <-s.interrupts:
		return "", errInterrupted
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Shell) pause(ctx context.Context) error {
	s.println()
	_, err := s.prompt(ctx, "Press Enter to continue...")
	return err
}

// confirm asks a yes/no question. Portuguese "s" is accepted too.
func (s *Shell) confirm(ctx context.Context, question string) (bool, error) {
	answer, err := s.prompt(ctx, question+" (y/n): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "sim":
		return true, nil
	}
	return false, nil
}

// interruptible returns a context cancelled by the next interrupt. The
// returned stop func releases the watcher and reports whether it fired.
func (s *Shell) interruptible(parent context.Context) (context.Context, func() bool) {
	ctx, cancel := context.WithCancel(parent)
	var fired atomic.Bool
	done := make(chan struct{})

	go func() {
		defer close(done)
		select {
		case <-s.interrupts:
			fired.Store(true)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() bool {
		cancel()
		<-done
		return fired.Load()
	}
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

// section prints a title followed by a separator.
func (s *Shell) section(title string) {
	s.println()
	s.println(styles.TitleStyle.Render(strings.ToUpper(title)))
	s.println(styles.Separator(s.width))
}

func (s *Shell) field(label, value string) {
	s.println(styles.Field(label, value))
}

func (s *Shell) timestamp() string {
	return s.now().Format("2006-01-02 15:04:05")
}
