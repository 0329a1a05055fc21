package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/DataDog/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.stk":            "print \"ola\"\n",
		"examples/hello.stk":  "print \"hello\"\n",
		"node_modules/x/a.js": "module.exports = 1\n",
		"docs/readme.md":      "# project\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func readEntries(t *testing.T, path string, format Format) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var r io.Reader
	switch format {
	case Zstd:
		zr := zstd.NewReader(f)
		defer zr.Close()
		r = zr
	default:
		gz, err := gzip.NewReader(f)
		require.NoError(t, err)
		defer gz.Close()
		r = gz
	}

	entries := map[string]string{}
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[h.Name] = string(data)
	}
	return entries
}

func names(entries map[string]string) []string {
	out := make([]string, 0, len(entries))
	for n := range entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func TestCreateGzip(t *testing.T) {
	root := writeProject(t)
	dst := filepath.Join(root, "stack-project.tar.gz")

	res, err := Create(dst, Options{Root: root, Prefix: "stack-project", Exclude: []string{"node_modules"}})
	require.NoError(t, err)

	assert.Equal(t, 3, res.FilesProcessed)
	assert.Empty(t, res.Errors)
	assert.Positive(t, res.CompressedSize)

	entries := readEntries(t, dst, Gzip)
	assert.Equal(t, []string{
		"stack-project/",
		"stack-project/docs/",
		"stack-project/docs/readme.md",
		"stack-project/examples/",
		"stack-project/examples/hello.stk",
		"stack-project/main.stk",
	}, names(entries))
	assert.Equal(t, "print \"ola\"\n", entries["stack-project/main.stk"])
}

func TestCreateSkipsDestinationInsideRoot(t *testing.T) {
	root := writeProject(t)
	dst := filepath.Join(root, "out.tar.gz")

	_, err := Create(dst, Options{Root: root, Prefix: "p"})
	require.NoError(t, err)

	entries := readEntries(t, dst, Gzip)
	assert.NotContains(t, entries, "p/out.tar.gz")
	assert.Contains(t, entries, "p/node_modules/x/a.js")
}

func TestCreateZstd(t *testing.T) {
	root := writeProject(t)
	dst := filepath.Join(t.TempDir(), "backups", BackupName("stack-extension", time.Now(), Zstd))

	res, err := Create(dst, Options{Root: root, Prefix: "stack-extension", Format: Zstd, Level: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, res.FilesProcessed)

	entries := readEntries(t, dst, Zstd)
	assert.Equal(t, "print \"hello\"\n", entries["stack-extension/examples/hello.stk"])
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Gzip, "gz": Gzip, "GZIP": Gzip, "zst": Zstd, "zstd": Zstd} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("7z")
	assert.Error(t, err)
}

func TestBackupName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "stack-extension_20240309_140507.tar.gz", BackupName("stack-extension", ts, Gzip))
	assert.Equal(t, "p_20240309_140507.tar.zst", BackupName("p", ts, Zstd))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2*1024*1024))
}

func TestResultRatio(t *testing.T) {
	assert.Zero(t, (&Result{}).Ratio())
	assert.InDelta(t, 25.0, (&Result{OriginalSize: 400, CompressedSize: 100}).Ratio(), 0.001)
}
