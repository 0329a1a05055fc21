package interactive

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kannan/stk-executor/internal/config"
	"github.com/kannan/stk-executor/internal/devserver"
	"github.com/kannan/stk-executor/internal/platform"
)

// fakeStk answers the subcommands the shell uses.
const fakeStk = `case "$1" in
--version) echo "stk 2.0.0" ;;
run) [ "$2" = "demo.stk" ] && echo "hello" && exit 0; echo "cannot run $2" >&2; exit 3 ;;
compile) echo "compiled $2 to $4" ;;
analyze) echo "no issues in $2" ;;
translate) echo "translated $2 to $4" ;;
*) echo "unknown command $1" >&2; exit 1 ;;
esac
`

type harness struct {
	shell      *Shell
	out        *bytes.Buffer
	dir        string
	interrupts chan os.Signal
}

type harnessOpts struct {
	variant  platform.Variant
	input    io.Reader
	script   string
	binary   string
	cfg      func(*config.Config)
	launcher *devserver.Launcher
}

func newHarness(t *testing.T, o harnessOpts) *harness {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}

	cfg := config.DefaultConfig()
	cfg.Generic.AutoOpenBrowser = false
	cfg.Termux.UseTermuxOpen = false

	switch {
	case o.binary != "":
		cfg.Tool.Binary = o.binary
	default:
		script := o.script
		if script == "" {
			script = fakeStk
		}
		bin := filepath.Join(t.TempDir(), "stk")
		require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0o755))
		cfg.Tool.Binary = bin
	}
	if o.cfg != nil {
		o.cfg(cfg)
	}

	variant := o.variant
	if variant == "" {
		variant = platform.Generic
	}

	h := &harness{
		out:        &bytes.Buffer{},
		dir:        t.TempDir(),
		interrupts: make(chan os.Signal, 1),
	}
	h.shell = New(Options{
		Config:     cfg,
		Platform:   platform.New(variant, filepath.Join(t.TempDir(), "backups")),
		Dir:        h.dir,
		In:         o.input,
		Out:        h.out,
		Interrupts: h.interrupts,
		Launcher:   o.launcher,
	})
	return h
}

func (h *harness) write(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(h.dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (h *harness) run(t *testing.T) string {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- h.shell.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("shell did not exit")
	}
	return ansi.Strip(h.out.String())
}

func input(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestRunFileAppendsSuffix(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("1", "demo", "", "0")})
	h.write(t, "demo.stk", `print("hello")`)

	out := h.run(t)

	assert.Contains(t, out, "File found: demo.stk")
	assert.Contains(t, out, "Execution succeeded!")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "Thank you for using")
	assert.Equal(t, "demo.stk", h.shell.State().CurrentFile)
}

func TestRunFileFailureShowsStderr(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("1", "other.stk", "", "0")})
	h.write(t, "other.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "Execution failed! (exit code 3)")
	assert.Contains(t, out, "cannot run other.stk")
}

func TestRunFileTimeout(t *testing.T) {
	h := newHarness(t, harnessOpts{
		input:  input("1", "demo", "", "0"),
		script: "echo partial\nexec sleep 10\n",
		cfg:    func(c *config.Config) { c.Tool.TimeoutSeconds = 1 },
	})
	h.write(t, "demo.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "Timed out after 1s")
	assert.NotContains(t, out, "partial")
}

func TestSelectFileAbandon(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("1", "", "missing", "n", "", "0")})

	out := h.run(t)

	assert.Contains(t, out, "Path cannot be empty!")
	assert.Contains(t, out, "File not found: missing.stk")
	assert.NotContains(t, out, "missing.stk.stk")
	assert.Empty(t, h.shell.State().CurrentFile)
}

func TestSelectFileRetry(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("5", "nope", "y", "demo.stk", "", "0")})
	h.write(t, "demo.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "File not found: nope.stk")
	assert.Contains(t, out, "no issues in demo.stk")
	assert.Equal(t, "demo.stk", h.shell.State().CurrentFile)
}

func TestWithStkSuffix(t *testing.T) {
	assert.Equal(t, "demo.stk", withStkSuffix("demo"))
	assert.Equal(t, "demo.stk", withStkSuffix("demo.stk"))
	assert.Equal(t, "demo.stk", withStkSuffix(withStkSuffix("demo")))
	assert.Equal(t, "dir/app.stk", withStkSuffix("dir/app"))
}

func TestCompileAndTranslate(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input(
		"3", "demo", "",
		"4", "demo", "",
		"6", "demo", "1", "",
		"6", "demo", "2", "",
		"0",
	)})
	h.write(t, "demo.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "compiled demo.stk to javascript")
	assert.Contains(t, out, "compiled demo.stk to python")
	assert.Contains(t, out, "translated demo.stk to portuguese")
	assert.Contains(t, out, "translated demo.stk to english")
}

func TestSettingsPortValidation(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input(
		"8", "y", "70000", "",
		"8", "y", "0", "",
		"8", "y", "abc", "",
	)})

	out := h.run(t)

	assert.Contains(t, out, "Stack Extension: stk 2.0.0")
	assert.Contains(t, out, "70000 is out of range (1-65535)")
	assert.Contains(t, out, "port: 0 is out of range (1-65535)")
	assert.Contains(t, out, `"abc" is not a number`)
	assert.NotContains(t, out, "Port changed")
	assert.Equal(t, 3000, h.shell.State().ServerPort)
}

func TestSettingsPortChange(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("8", "y", "8080", "", "0")})

	out := h.run(t)

	assert.Contains(t, out, "Port changed to 8080")
	assert.Equal(t, 8080, h.shell.State().ServerPort)
}

func TestInvalidChoice(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("x", "", "", "", "a", "", "0")})

	out := h.run(t)

	// "a" is a Termux-only entry
	assert.Equal(t, 3, strings.Count(out, "Invalid choice!"))
	assert.NotContains(t, out, "Open in Android browser")
}

func TestEndOfInputExits(t *testing.T) {
	h := newHarness(t, harnessOpts{input: strings.NewReader("")})

	out := h.run(t)

	assert.Contains(t, out, "Thank you for using")
}

func TestInterruptAtMenuExits(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	h := newHarness(t, harnessOpts{input: r})
	h.interrupts <- os.Interrupt

	out := h.run(t)

	assert.Contains(t, out, "Exiting...")
	assert.NotContains(t, out, "Thank you for using")
}

func TestInterruptDuringRunExits(t *testing.T) {
	h := newHarness(t, harnessOpts{
		input:  input("1", "demo", "", "0"),
		script: "exec sleep 10\n",
	})
	h.write(t, "demo.stk", "")
	time.AfterFunc(500*time.Millisecond, func() { h.interrupts <- os.Interrupt })

	start := time.Now()
	out := h.run(t)

	assert.Contains(t, out, "Exiting...")
	assert.Less(t, time.Since(start), 8*time.Second)
}

func TestActionPanicIsRecovered(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("p", "", "0")})
	h.shell.items = append(h.shell.items, menuItem{
		key:   "p",
		label: "Panic",
		action: func(context.Context) error {
			panic("boom")
		},
	})

	out := h.run(t)

	assert.Contains(t, out, "Unexpected error: boom")
	assert.Contains(t, out, "Thank you for using")
}

func TestGenericNotFoundWithoutPackageJSON(t *testing.T) {
	h := newHarness(t, harnessOpts{
		input:  input("1", "demo", "", "0"),
		binary: "stk-not-installed-anywhere",
	})
	h.write(t, "demo.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "Command 'stk-not-installed-anywhere' not found!")
	assert.Contains(t, out, "Trying to install Stack Extension...")
	assert.Contains(t, out, "package.json not found")
	assert.NotContains(t, out, "Unexpected error")
}

// fakeNpm puts an npm on PATH whose global install copies staged into
// binDir/name. An empty staged installs nothing.
func fakeNpm(t *testing.T, name, staged string) {
	t.Helper()
	binDir := t.TempDir()
	script := "#!/bin/sh\necho \"npm $*\"\n"
	if staged != "" {
		dst := filepath.Join(binDir, name)
		script += "[ \"$2\" = \"-g\" ] && cp " + staged + " " + dst + " && chmod +x " + dst + "\n"
	}
	script += "exit 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "npm"), []byte(script), 0o755))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestGenericNotFoundInstallsAndRetries(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "stk")
	require.NoError(t, os.WriteFile(staged, []byte("#!/bin/sh\n"+fakeStk), 0o755))
	fakeNpm(t, "stk-fresh-install", staged)

	h := newHarness(t, harnessOpts{
		input:  input("1", "demo", "", "0"),
		binary: "stk-fresh-install",
	})
	h.write(t, "demo.stk", "")
	h.write(t, "package.json", "{}")

	out := h.run(t)

	assert.Equal(t, 1, strings.Count(out, "Command 'stk-fresh-install' not found!"))
	assert.Contains(t, out, "npm install -g .")
	assert.Contains(t, out, "Stack Extension installed!")
	assert.Contains(t, out, "Execution succeeded!")
	assert.Contains(t, out, "hello")
}

func TestGenericNotFoundRetriesOnce(t *testing.T) {
	fakeNpm(t, "stk-missing-after-install", "")

	h := newHarness(t, harnessOpts{
		input:  input("1", "demo", "", "0"),
		binary: "stk-missing-after-install",
	})
	h.write(t, "demo.stk", "")
	h.write(t, "package.json", "{}")

	out := h.run(t)

	assert.Contains(t, out, "Stack Extension installed!")
	assert.Equal(t, 2, strings.Count(out, "Command 'stk-missing-after-install' not found!"))
	assert.Equal(t, 1, strings.Count(out, "Trying to install Stack Extension..."))
	assert.NotContains(t, out, "Execution succeeded!")
	assert.Contains(t, out, "Thank you for using")
}

func TestTermuxNotFoundPrintsContent(t *testing.T) {
	h := newHarness(t, harnessOpts{
		variant: platform.Termux,
		input:   input("1", "1", "", "0"),
		binary:  "stk-not-installed-anywhere",
	})
	h.write(t, "demo.stk", "mostre('ola mundo')\n")

	out := h.run(t)

	assert.Contains(t, out, "[1] demo.stk")
	assert.Contains(t, out, "File selected: demo.stk")
	assert.Contains(t, out, "FILE CONTENT:")
	assert.Contains(t, out, "mostre('ola mundo')")
	assert.NotContains(t, out, "Installing")
}

func TestTermuxPickerListsNestedFiles(t *testing.T) {
	h := newHarness(t, harnessOpts{variant: platform.Termux, input: input("5", "2", "", "0")})
	h.write(t, "app.stk", "")
	h.write(t, "examples/hello.stk", "")
	h.write(t, "node_modules/pkg/skip.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "[2] examples/hello.stk")
	assert.NotContains(t, out, "skip.stk")
	assert.Contains(t, out, "no issues in examples/hello.stk")
}

func TestExamples(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("7", "2", "", "7", "9", "", "0")})
	h.write(t, "examples/b.stk", "")
	h.write(t, "examples/a.stk", "")
	h.write(t, "examples/notes.txt", "")

	out := h.run(t)

	assert.Contains(t, out, "[1] a.stk")
	assert.Contains(t, out, "[2] b.stk")
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, out, "Running: b.stk")
	assert.Contains(t, out, "cannot run examples/b.stk")
	assert.Contains(t, out, "Invalid choice!")
}

func TestExamplesMissingDirectory(t *testing.T) {
	h := newHarness(t, harnessOpts{input: input("7", "", "0")})

	out := h.run(t)

	assert.Contains(t, out, "Directory examples/ not found")
}

func TestHelpListsPlatformEntries(t *testing.T) {
	h := newHarness(t, harnessOpts{variant: platform.Termux, input: input("9", "", "0")})

	out := h.run(t)

	assert.Contains(t, out, "[b] Share project")
	assert.Contains(t, out, "termux-share")
}

func listenServe(ctx context.Context, _ string, port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return err
	}
	<-ctx.Done()
	return ln.Close()
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServeFallsBackAndStopsOnInterrupt(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()
	busy := occupied.Addr().(*net.TCPAddr).Port
	fallback := freePort(t)

	h := newHarness(t, harnessOpts{
		input:    input("2", "demo", "", "0"),
		cfg:      func(c *config.Config) { c.Server.Port = busy },
		launcher: &devserver.Launcher{Serve: listenServe, Settle: 50 * time.Millisecond, Fallback: fallback},
	})
	h.write(t, "demo.stk", "")
	time.AfterFunc(time.Second, func() { h.interrupts <- os.Interrupt })

	out := h.run(t)

	assert.Contains(t, out, "Server started!")
	assert.Contains(t, out, "http://localhost:"+strconv.Itoa(fallback))
	assert.Contains(t, out, "Open manually: open http://localhost:"+strconv.Itoa(fallback))
	assert.Contains(t, out, "Stopping server...")
	assert.Contains(t, out, "Thank you for using")
	assert.Equal(t, fallback, h.shell.State().ServerPort)
	assert.False(t, devserver.IsPortBound(fallback))
}

func TestServeReportsBusyPorts(t *testing.T) {
	started := false
	h := newHarness(t, harnessOpts{
		input: input("2", "demo", "", "0"),
		launcher: &devserver.Launcher{
			Serve: func(context.Context, string, int) error { started = true; return nil },
			Probe: func(int) bool { return true },
		},
	})
	h.write(t, "demo.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "Server ports are busy")
	assert.False(t, started)
	assert.Equal(t, 3000, h.shell.State().ServerPort)
}

func TestTermuxBackup(t *testing.T) {
	h := newHarness(t, harnessOpts{variant: platform.Termux, input: input("c", "", "0")})
	h.write(t, "demo.stk", "mostre(1)\n")
	h.shell.now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) }

	out := h.run(t)

	want := filepath.Join(h.shell.platform.BackupDir, "stack-extension_20240501_083000.tar.gz")
	assert.Contains(t, out, "Backup created: "+want)
	assert.FileExists(t, want)
}

func TestTermuxShare(t *testing.T) {
	bin := t.TempDir()
	log := filepath.Join(t.TempDir(), "shared")
	script := "#!/bin/sh\necho \"$1\" > " + log + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "termux-share"), []byte(script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	h := newHarness(t, harnessOpts{variant: platform.Termux, input: input("b", "myproj", "", "0")})
	h.write(t, "demo.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "Project shared: myproj.tar.gz")
	shared, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.dir, "myproj.tar.gz"), strings.TrimSpace(string(shared)))
	assert.FileExists(t, filepath.Join(h.dir, "myproj.tar.gz"))
}

func TestTermuxShareFailureRemovesArchive(t *testing.T) {
	bin := t.TempDir()
	script := "#!/bin/sh\necho 'no activity found' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(bin, "termux-share"), []byte(script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	h := newHarness(t, harnessOpts{variant: platform.Termux, input: input("b", "", "", "0")})
	h.write(t, "demo.stk", "")

	out := h.run(t)

	assert.Contains(t, out, "Could not share project")
	assert.NotContains(t, out, "Project shared")
	assert.NoFileExists(t, filepath.Join(h.dir, "stack-project.tar.gz"))
}
