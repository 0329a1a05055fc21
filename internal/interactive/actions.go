package interactive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kannan/stk-executor/internal/devserver"
	"github.com/kannan/stk-executor/internal/platform"
	"github.com/kannan/stk-executor/internal/styles"
	"github.com/kannan/stk-executor/internal/toolchain"
)

// runTool invokes stk with the regular timeout. An interrupt cancels the
// process and is reported as errInterrupted.
func (s *Shell) runTool(ctx context.Context, args ...string) (toolchain.Result, error) {
	tctx, stop := s.interruptible(ctx)
	res := s.runner.Run(tctx, s.cfg.ToolTimeout(), args...)
	if stop() {
		return res, errInterrupted
	}
	return res, nil
}

// report prints the outcome of an invocation.
func (s *Shell) report(res toolchain.Result, okMsg, failMsg string) {
	s.println()
	switch res.Status {
	case toolchain.StatusSuccess:
		s.println(styles.Success(okMsg))
		if out := strings.TrimRight(res.Stdout, "\n"); out != "" {
			s.println()
			s.println(styles.TitleStyle.Render("OUTPUT:"))
			s.println(styles.OutputStyle.Render(out))
		}
	case toolchain.StatusFailed:
		s.println(styles.Error(fmt.Sprintf("%s (exit code %d)", failMsg, res.ExitCode)))
		if msg := strings.TrimRight(res.Stderr, "\n"); msg != "" {
			s.println()
			s.println(styles.ErrorStyle.Render("ERROR:"))
			s.println(styles.OutputStyle.Render(msg))
		}
	case toolchain.StatusTimeout:
		s.println(styles.Error(fmt.Sprintf("Timed out after %s", s.cfg.ToolTimeout())))
	case toolchain.StatusNotFound:
		s.println(styles.Error(s.notFoundMessage()))
	case toolchain.StatusCanceled:
		s.println(styles.Warning("Canceled"))
	}
}

func (s *Shell) notFoundMessage() string {
	return fmt.Sprintf("Command '%s' not found!", s.runner.Binary)
}

func (s *Shell) runFile(ctx context.Context) error {
	file, err := s.selectFile(ctx)
	if err != nil || file == "" {
		return err
	}
	return s.execute(ctx, file, true)
}

// execute runs file. When stk is missing, Termux shows the file instead and
// the desktop variant installs the tool once and tries again.
func (s *Shell) execute(ctx context.Context, file string, install bool) error {
	s.section("Running file")
	s.field("File", file)
	s.field("Date", s.timestamp())
	s.field("Platform", string(s.state.Platform))
	s.println(styles.Separator(s.width))

	res, err := s.runTool(ctx, "run", file)
	if err != nil {
		return err
	}

	if res.Status != toolchain.StatusNotFound {
		s.report(res, "Execution succeeded!", "Execution failed!")
		return nil
	}

	s.println()
	s.println(styles.Error(s.notFoundMessage()))

	if s.state.Platform == platform.Termux {
		s.println(styles.Warning("Showing the file directly..."))
		return s.showContent(file)
	}
	if !install {
		return nil
	}

	s.println(styles.Warning("Trying to install Stack Extension..."))
	installed, err := s.install(ctx)
	if err != nil || !installed {
		return err
	}
	return s.execute(ctx, file, false)
}

func (s *Shell) showContent(file string) error {
	data, err := os.ReadFile(s.path(file))
	if err != nil {
		s.println(styles.Error("Could not read file: " + err.Error()))
		return nil
	}
	s.println()
	s.println(styles.TitleStyle.Render("FILE CONTENT:"))
	s.println(string(data))
	return nil
}

// install runs the npm installer. Install failures are reported here; only
// an interrupt comes back as an error.
func (s *Shell) install(ctx context.Context) (bool, error) {
	s.println()
	s.println(styles.Info("Installing Stack Extension..."))

	ictx, stop := s.interruptible(ctx)
	err := s.runner.Install(ictx)
	if stop() {
		return false, errInterrupted
	}

	switch {
	case errors.Is(err, toolchain.ErrNoPackageJSON):
		s.println(styles.Error(err.Error()))
		return false, nil
	case err != nil:
		s.println(styles.Error("Install failed: " + err.Error()))
		return false, nil
	}

	s.println(styles.Success("Stack Extension installed!"))
	return true, nil
}

func (s *Shell) serve(ctx context.Context) error {
	file, err := s.selectFile(ctx)
	if err != nil || file == "" {
		return err
	}

	s.section("Starting web server")
	s.field("File", file)
	s.field("Port", fmt.Sprint(s.state.ServerPort))
	s.field("Platform", string(s.state.Platform))
	s.println(styles.Separator(s.width))
	s.println(styles.Info("Waiting for the server to start..."))

	lctx, stop := s.interruptible(ctx)
	srv, err := s.launcher.Launch(lctx, file, s.state.ServerPort)
	if stop() {
		s.println(styles.Warning("Server startup interrupted"))
		return nil
	}
	if err != nil {
		s.println()
		switch {
		case errors.Is(err, devserver.ErrPortsBusy):
			s.println(styles.Error("Server ports are busy: " + err.Error()))
		default:
			s.println(styles.Error("Failed to start server: " + err.Error()))
		}
		return nil
	}

	if srv.FellBack {
		s.println(styles.Warning(fmt.Sprintf("Port %d in use, switched to port %d", s.state.ServerPort, srv.Port)))
		s.state.ServerPort = srv.Port
	}

	s.println()
	s.println(styles.Success("Server started!"))
	s.section("Open your project")
	s.println(styles.SuccessStyle.Render(srv.URL))
	s.println(styles.Separator(s.width))
	s.openURL(ctx, srv.URL)

	s.println()
	s.println(styles.Warning("Press Ctrl+C to stop the server"))

	wctx, stop := s.interruptible(ctx)
	waitErr := srv.Wait(wctx, s.cfg.PollInterval(s.state.Options))
	interrupted := stop()

	s.println()
	s.println(styles.Warning("Stopping server..."))
	if err := srv.Stop(); err != nil && !interrupted {
		s.println(styles.Error("Server exited: " + err.Error()))
	} else if waitErr != nil && !interrupted {
		s.println(styles.Error("Server exited: " + waitErr.Error()))
	}
	return nil
}

// openURL opens url when the platform toggles allow it, else prints a hint.
func (s *Shell) openURL(ctx context.Context, url string) {
	open := s.state.Options.AutoOpenBrowser
	if s.state.Platform == platform.Termux {
		open = s.state.Options.UseTermuxOpen
	}
	if !open {
		s.println(styles.Info("Open manually: " + s.platform.OpenHint(url)))
		return
	}

	if err := s.platform.OpenURL(ctx, url); err != nil {
		s.println(styles.Warning("Could not open the browser: " + err.Error()))
		s.println(styles.Info("Open manually: " + s.platform.OpenHint(url)))
		return
	}
	s.println(styles.Success("Opening in browser..."))
}

func (s *Shell) compile(target, name string) action {
	return func(ctx context.Context) error {
		file, err := s.selectFile(ctx)
		if err != nil || file == "" {
			return err
		}

		s.section("Compiling to " + name)
		s.field("File", file)
		s.field("Target", target)
		s.println(styles.Separator(s.width))

		res, err := s.runTool(ctx, "compile", file, "--target", target)
		if err != nil {
			return err
		}
		s.report(res, "Compiled to "+name+"!", "Compilation failed!")
		return nil
	}
}

func (s *Shell) analyze(ctx context.Context) error {
	file, err := s.selectFile(ctx)
	if err != nil || file == "" {
		return err
	}

	s.section("Analyzing code")
	s.field("File", file)
	s.println(styles.Separator(s.width))

	res, err := s.runTool(ctx, "analyze", file)
	if err != nil {
		return err
	}
	s.report(res, "Analysis complete!", "Analysis failed!")
	return nil
}

func (s *Shell) translate(ctx context.Context) error {
	file, err := s.selectFile(ctx)
	if err != nil || file == "" {
		return err
	}

	s.section("Translating code")
	s.field("File", file)
	s.println()
	s.println("Translate to:")
	s.println(styles.MenuItem("1", "Portuguese"))
	s.println(styles.MenuItem("2", "English"))

	choice, err := s.prompt(ctx, "\nEnter your choice (1-2): ")
	if err != nil {
		return err
	}
	lang := "english"
	if choice == "1" {
		lang = "portuguese"
	}

	res, err := s.runTool(ctx, "translate", file, "--to", lang)
	if err != nil {
		return err
	}
	s.report(res, "Translated to "+lang+"!", "Translation failed!")
	return nil
}
