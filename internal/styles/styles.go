// Package styles provides the Lipgloss styling of the executor menu.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	Primary      = lipgloss.AdaptiveColor{Light: "#0077B6", Dark: "#00BFFF"}
	Accent       = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD700"}
	Danger       = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6347"}
	Muted        = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#808080"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#00FF7F"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FFA500"}

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 2)

	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Menu
	MenuKeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Primary)

	PromptStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Status
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Primary)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(Muted)

	OutputStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

// Banner renders the title block inside a rounded box of the given width.
func Banner(width int, title string, lines ...string) string {
	body := BannerStyle.Render(title)
	for _, l := range lines {
		body += "\n" + SubtitleStyle.Render(l)
	}
	// the box adds two border columns
	return BoxStyle.Width(max(width-2, 1)).Render(body)
}

// Separator returns a horizontal rule of the given width.
func Separator(width int) string {
	if width <= 0 {
		width = 1
	}
	return SeparatorStyle.Render(strings.Repeat("=", width))
}

// MenuItem renders "[key] label".
func MenuItem(key, label string) string {
	return MenuItemStyle.Render(MenuKeyStyle.Render("["+key+"]") + " " + label)
}

// Field renders a "label: value" line for info blocks.
func Field(label, value string) string {
	return LabelStyle.Render(label+":") + " " + value
}

// Toggle renders a boolean setting as on/off.
func Toggle(on bool) string {
	if on {
		return SuccessStyle.Render("on")
	}
	return lipgloss.NewStyle().Foreground(Muted).Render("off")
}

// Success, Error, Warning and Info prefix a status line with its marker.
func Success(msg string) string { return SuccessStyle.Render("✓ " + msg) }
func Error(msg string) string   { return ErrorStyle.Render("✗ " + msg) }
func Warning(msg string) string { return WarningStyle.Render("! " + msg) }
func Info(msg string) string    { return InfoStyle.Render("› " + msg) }
