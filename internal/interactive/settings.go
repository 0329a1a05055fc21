package interactive

import (
	"context"
	"fmt"

	"github.com/kannan/stk-executor/internal/app"
	"github.com/kannan/stk-executor/internal/config"
	"github.com/kannan/stk-executor/internal/platform"
	"github.com/kannan/stk-executor/internal/styles"
)

func (s *Shell) settings(ctx context.Context) error {
	s.section("Settings")

	current := s.state.CurrentFile
	if current == "" {
		current = "none"
	}

	s.println()
	s.field("Version", app.Version)
	s.field("Platform", fmt.Sprintf("%s (%s)", s.state.Platform, s.platform.Label))
	s.field("Server port", fmt.Sprint(s.state.ServerPort))
	s.field("Current file", current)
	if s.platform.Version != "" {
		s.field("Termux", s.platform.Version)
	}

	vctx, stop := s.interruptible(ctx)
	version, err := s.runner.Version(vctx, s.cfg.VersionTimeout())
	if stop() {
		return errInterrupted
	}
	if err != nil {
		version = styles.WarningStyle.Render("not installed")
	}
	s.field("Stack Extension", version)

	opts := s.state.Options
	s.println()
	s.field("Open with platform intent", styles.Toggle(opts.UseTermuxOpen))
	s.field("Optimize for mobile", styles.Toggle(opts.OptimizeForMobile))
	s.field("Battery saver", styles.Toggle(opts.BatterySaver))
	s.field("Touch gestures", styles.Toggle(opts.TouchGestures))
	s.field("Mobile friendly", styles.Toggle(opts.MobileFriendly))
	s.field("Auto open browser", styles.Toggle(opts.AutoOpenBrowser))

	s.println()
	change, err := s.confirm(ctx, "Change the server port?")
	if err != nil || !change {
		return err
	}

	input, err := s.prompt(ctx, "New port: ")
	if err != nil {
		return err
	}
	port, err := config.ParsePort(input)
	if err != nil {
		s.println(styles.Error("Invalid port! " + err.Error()))
		return nil
	}

	s.state.ServerPort = port
	s.println(styles.Success(fmt.Sprintf("Port changed to %d", port)))
	return nil
}

func (s *Shell) help(context.Context) error {
	s.section("Help - " + app.Name)

	s.println()
	s.println(styles.TitleStyle.Render("What is Stack Extension?"))
	s.println("A programming language that mixes the best of JavaScript and Python:")
	for _, line := range []string{
		"Bilingual code: write in Portuguese or English",
		"Portuguese operators such as 'mais', 'vezes' and 'dividido'",
		"Built-in analysis and completion",
		"A web editor for working in the browser",
	} {
		s.println("  • " + line)
	}

	s.println()
	s.println(styles.TitleStyle.Render("How to use this executor"))
	s.println("  1. Pick an option from the menu")
	s.println("  2. Enter the path of a .stk file (the extension is optional)")
	s.println("  3. The executor calls stk and shows the result")

	s.println()
	s.println(styles.TitleStyle.Render("Commands"))
	for _, item := range s.visible() {
		s.println(styles.MenuItem(item.key, item.label))
	}
	s.println(styles.MenuItem("0", "Exit"))

	s.println()
	s.println(styles.TitleStyle.Render("Tips"))
	for _, tip := range s.tips() {
		s.println("  • " + tip)
	}
	return nil
}

func (s *Shell) tips() []string {
	if s.state.Platform == platform.Termux {
		return []string{
			"Use 'termux-open' to open files and URLs",
			"Use 'termux-share' to share files",
			"Run 'termux-setup-storage' to grant storage access",
			"Run 'pkg update' to keep packages current",
			"Install the termux-api package for the a and b options",
		}
	}
	return []string{
		"Install the stk tool with 'npm install -g .' from the project directory",
		"Put example programs in the " + s.cfg.ExamplesDir + "/ directory",
		"Press Ctrl+C while the web server runs to stop it",
	}
}
