//go:build windows

package console

import (
	"io"
	"os"
	"os/exec"

	"golang.org/x/sys/windows"
)

// enableVT switches the console behind w to ANSI escape processing. It
// reports false on consoles that predate Windows 10.
func enableVT(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	h := windows.Handle(f.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}

func clearScreen(w io.Writer) {
	if enableVT(w) {
		writeClear(w)
		return
	}
	cmd := exec.Command("cmd", "/c", "cls")
	cmd.Stdout = w
	_ = cmd.Run()
}

func setTitle(w io.Writer, title string) {
	if enableVT(w) {
		writeTitle(w, title)
		return
	}
	_ = exec.Command("cmd", "/c", "title", title).Run()
}
