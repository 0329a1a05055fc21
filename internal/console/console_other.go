//go:build !windows

package console

import "io"

func clearScreen(w io.Writer) {
	writeClear(w)
}

// setTitle uses the xterm OSC 2 sequence, which Termux and most emulators honour.
func setTitle(w io.Writer, title string) {
	writeTitle(w, title)
}
