// Package console provides cross-platform console utilities.
package console

import (
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
)

// DefaultWidth is used when the terminal size cannot be read.
const DefaultWidth = 60

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// ClearScreen clears the terminal behind w. It does nothing when w is not
// a terminal, so piped and captured output stays readable.
func ClearScreen(w io.Writer) {
	if !IsTerminal(w) {
		return
	}
	clearScreen(w)
}

// SetTitle sets the console window title.
func SetTitle(w io.Writer, title string) {
	if !IsTerminal(w) {
		return
	}
	setTitle(w, title)
}

// Width returns the column count of the terminal behind w, capped at max.
func Width(w io.Writer, max int) int {
	width := DefaultWidth
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(f.Fd()); err == nil && cols > 0 {
			width = cols
		}
	}
	if max > 0 && width > max {
		width = max
	}
	return width
}

// writeClear erases the screen and homes the cursor.
func writeClear(w io.Writer) {
	io.WriteString(w, ansi.EraseEntireScreen+ansi.CursorHomePosition)
}

func writeTitle(w io.Writer, title string) {
	io.WriteString(w, ansi.SetWindowTitle(title))
}
