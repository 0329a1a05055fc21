package interactive

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kannan/stk-executor/internal/platform"
	"github.com/kannan/stk-executor/internal/styles"
)

const stkExt = ".stk"

// withStkSuffix appends .stk unless path already ends with it.
func withStkSuffix(path string) string {
	if strings.HasSuffix(path, stkExt) {
		return path
	}
	return path + stkExt
}

// path resolves a user supplied path against the project directory.
func (s *Shell) path(p string) string {
	if filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

func (s *Shell) exists(p string) bool {
	_, err := os.Stat(s.path(p))
	return err == nil
}

// selectFile asks for a .stk file and records it as the current file. It
// returns "" when the user gives up.
func (s *Shell) selectFile(ctx context.Context) (string, error) {
	s.section("Select file")

	if s.state.Platform == platform.Termux {
		file, err := s.pickFile(ctx)
		if err != nil || file != "" {
			return file, err
		}
	}

	for {
		input, err := s.prompt(ctx, "\nEnter the .stk file path: ")
		if err != nil {
			return "", err
		}
		if input == "" {
			s.println(styles.Error("Path cannot be empty!"))
			continue
		}

		file := withStkSuffix(input)
		if s.exists(file) {
			s.state.CurrentFile = file
			s.println(styles.Success("File found: " + file))
			return file, nil
		}

		s.println(styles.Error("File not found: " + file))
		retry, err := s.confirm(ctx, "Try again?")
		if err != nil || !retry {
			return "", err
		}
	}
}

// pickFile lists the project's .stk files by number. It returns "" when
// the user wants to type a path instead.
func (s *Shell) pickFile(ctx context.Context) (string, error) {
	files := s.findStkFiles()
	if len(files) == 0 {
		return "", nil
	}

	s.println()
	s.println(styles.SuccessStyle.Render(".stk files found:"))
	for i, f := range files {
		s.println(styles.MenuItem(strconv.Itoa(i+1), f))
	}
	s.println(styles.MenuItem("0", "Type a path manually"))

	choice, err := s.prompt(ctx, "\nChoose a file (0 to type a path): ")
	if err != nil {
		return "", err
	}

	n, err := strconv.Atoi(choice)
	switch {
	case err != nil:
		s.println(styles.Error("Enter a valid number!"))
	case n >= 1 && n <= len(files):
		file := files[n-1]
		s.state.CurrentFile = file
		s.println(styles.Success("File selected: " + file))
		return file, nil
	case n != 0:
		s.println(styles.Error("Invalid choice!"))
	}
	return "", nil
}

// findStkFiles returns every .stk file below the project directory, relative
// to it. Hidden directories and node_modules are not searched.
func (s *Shell) findStkFiles() []string {
	root := s.dir
	if root == "" {
		root = "."
	}

	var files []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == stkExt {
			if rel, err := filepath.Rel(root, path); err == nil {
				files = append(files, filepath.ToSlash(rel))
			}
		}
		return nil
	})

	sort.Strings(files)
	return files
}

func (s *Shell) examples(ctx context.Context) error {
	s.section("Available examples")

	dir := s.cfg.ExamplesDir
	entries, err := os.ReadDir(s.path(dir))
	if err != nil {
		s.println(styles.Warning("Directory " + dir + "/ not found"))
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == stkExt {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		s.println(styles.Warning("No .stk files found in " + dir + "/"))
		return nil
	}

	s.println()
	s.println(styles.SuccessStyle.Render(".stk files found:"))
	for i, name := range names {
		s.println(styles.MenuItem(strconv.Itoa(i+1), name))
	}

	choice, err := s.prompt(ctx, "\nEnter the example number to run (0 to go back): ")
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(choice)
	switch {
	case err != nil:
		s.println(styles.Error("Enter a valid number!"))
	case n == 0:
	case n >= 1 && n <= len(names):
		s.println()
		s.println(styles.Info("Running: " + names[n-1]))
		return s.execute(ctx, filepath.Join(dir, names[n-1]), true)
	default:
		s.println(styles.Error("Invalid choice!"))
	}
	return nil
}
