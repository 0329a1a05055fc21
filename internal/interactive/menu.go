package interactive

import (
	"context"

	"github.com/kannan/stk-executor/internal/app"
	"github.com/kannan/stk-executor/internal/styles"
)

type action func(ctx context.Context) error

type menuItem struct {
	key    string
	label  string
	action action
	// extra items only show on platforms with Extras (Termux).
	extra bool
}

func (s *Shell) menu() []menuItem {
	return []menuItem{
		{key: "1", label: "Run .stk file", action: s.runFile},
		{key: "2", label: "Start web server", action: s.serve},
		{key: "3", label: "Compile to JavaScript", action: s.compile("javascript", "JavaScript")},
		{key: "4", label: "Compile to Python", action: s.compile("python", "Python")},
		{key: "5", label: "Analyze code", action: s.analyze},
		{key: "6", label: "Translate code", action: s.translate},
		{key: "7", label: "Browse examples", action: s.examples},
		{key: "8", label: "Settings", action: s.settings},
		{key: "9", label: "Help", action: s.help},
		{key: "a", label: "Open in Android browser", action: s.openBrowser, extra: true},
		{key: "b", label: "Share project", action: s.share, extra: true},
		{key: "c", label: "Back up project", action: s.backup, extra: true},
	}
}

func (s *Shell) visible() []menuItem {
	var out []menuItem
	for _, item := range s.items {
		if item.extra && !s.platform.Extras {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Shell) lookup(key string) (menuItem, bool) {
	for _, item := range s.visible() {
		if item.key == key {
			return item, true
		}
	}
	return menuItem{}, false
}

func (s *Shell) printBanner() {
	title := app.Name
	if s.platform.Label != "" {
		title += " - " + s.platform.Label
	}
	s.println(styles.Banner(s.width, title, app.Tagline))
	s.println()
	s.field("Version", app.Version)
	s.field("Platform", string(s.state.Platform))
	s.field("Date", s.timestamp())
	if s.platform.Version != "" {
		s.field("Termux", s.platform.Version)
	}
}

func (s *Shell) printMenu() {
	s.section("Main menu")
	s.println()
	for _, item := range s.visible() {
		s.println(styles.MenuItem(item.key, item.label))
	}
	s.println(styles.MenuItem("0", "Exit"))
	s.println()
	s.println(styles.Separator(s.width))
}

func (s *Shell) choicePrompt() string {
	if s.platform.Extras {
		return "\nEnter your choice (0-9, a-c): "
	}
	return "\nEnter your choice (0-9): "
}

func (s *Shell) choiceHint() string {
	if s.platform.Extras {
		return "Enter a number from 0 to 9 or a letter from a to c."
	}
	return "Enter a number from 0 to 9."
}
