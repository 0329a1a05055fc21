// Package archive packs a project directory into a compressed tarball for
// sharing and backups.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DataDog/zstd"

	"github.com/kannan/stk-executor/internal/logger"
)

// Format is the compression applied to the tar stream.
type Format string

const (
	Gzip Format = "gzip"
	Zstd Format = "zstd"
)

// ParseFormat accepts the names and extensions used in the config file.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "gzip", "gz", "tar.gz":
		return Gzip, nil
	case "zstd", "zst", "tar.zst":
		return Zstd, nil
	default:
		return "", fmt.Errorf("unknown archive format %q", s)
	}
}

// Extension returns the file suffix for f, including the leading dot.
func (f Format) Extension() string {
	if f == Zstd {
		return ".tar.zst"
	}
	return ".tar.gz"
}

// Options controls what Create puts into the archive.
type Options struct {
	// Root is the directory to pack.
	Root string
	// Prefix is the top-level directory name inside the archive.
	Prefix string
	Format Format
	// Level is the compression level; 0 uses the codec default.
	Level int
	// Exclude holds glob patterns matched against names and relative paths.
	Exclude []string
}

// Result holds the outcome of Create.
type Result struct {
	Path           string
	FilesProcessed int
	OriginalSize   int64
	CompressedSize int64
	Errors         []string
}

// Ratio returns the compressed size as a percentage of the original.
func (r *Result) Ratio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.CompressedSize) / float64(r.OriginalSize) * 100
}

// Create writes the archive of opts.Root to dst. The destination file itself
// is never added, even when it lives under Root. Unreadable files are
// recorded in Result.Errors and skipped.
func Create(dst string, opts Options) (*Result, error) {
	if opts.Format == "" {
		opts.Format = Gzip
	}
	if opts.Prefix == "" {
		opts.Prefix = filepath.Base(opts.Root)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	cw, err := newCompressor(out, opts.Format, opts.Level)
	if err != nil {
		return nil, err
	}

	absDst, _ := filepath.Abs(dst)
	result := &Result{Path: dst, Errors: []string{}}
	tw := tar.NewWriter(cw)

	walkErr := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("error accessing path", "path", path, "error", err)
			result.Errors = append(result.Errors, err.Error())
			return nil
		}

		rel, err := filepath.Rel(opts.Root, path)
		if err != nil {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absDst {
			return nil
		}
		if rel != "." && excluded(d.Name(), rel, opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := opts.Prefix
		if rel != "." {
			name = opts.Prefix + "/" + filepath.ToSlash(rel)
		}
		if err := addEntry(tw, path, name, d, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			logger.Warn("failed to add file to archive", "file", rel, "error", err)
		}
		return nil
	})

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := cw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compression: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}
	if walkErr != nil {
		return nil, fmt.Errorf("walk error: %w", walkErr)
	}

	if stat, err := os.Stat(dst); err == nil {
		result.CompressedSize = stat.Size()
	}

	logger.Info("archive created",
		"path", dst,
		"files", result.FilesProcessed,
		"size", FormatSize(result.CompressedSize))
	return result, nil
}

func newCompressor(w io.Writer, format Format, level int) (io.WriteCloser, error) {
	switch format {
	case Zstd:
		if level == 0 {
			level = zstd.DefaultCompression
		}
		return zstd.NewWriterLevel(w, level), nil
	case Gzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		gz, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return gz, nil
	default:
		return nil, fmt.Errorf("unknown archive format %q", format)
	}
}

func addEntry(tw *tar.Writer, path, name string, d fs.DirEntry, result *Result) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() && !info.IsDir() {
		// sockets, devices and symlinks are left out
		return nil
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	written, err := io.Copy(tw, src)
	if err != nil {
		return err
	}

	result.OriginalSize += written
	result.FilesProcessed++
	return nil
}

func excluded(name, rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if matchPattern(name, pattern) || matchPattern(rel, pattern) {
			return true
		}
	}
	return false
}

// matchPattern matches a name against a glob pattern; ** behaves like *.
func matchPattern(name, pattern string) bool {
	if strings.Contains(pattern, "**") {
		pattern = strings.ReplaceAll(pattern, "**", "*")
	}
	matched, _ := filepath.Match(pattern, name)
	return matched
}

// BackupName returns "<prefix>_YYYYMMDD_HHMMSS" plus the format extension.
func BackupName(prefix string, t time.Time, format Format) string {
	return prefix + "_" + t.Format("20060102_150405") + format.Extension()
}

// FormatSize formats bytes as a human-readable string.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
