package interactive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kannan/stk-executor/internal/archive"
	"github.com/kannan/stk-executor/internal/devserver"
	"github.com/kannan/stk-executor/internal/logger"
	"github.com/kannan/stk-executor/internal/platform"
	"github.com/kannan/stk-executor/internal/styles"
)

const defaultProjectName = "stack-project"

func (s *Shell) openBrowser(ctx context.Context) error {
	s.section("Opening in Android browser")

	url := devserver.URL(s.state.ServerPort)
	if err := s.platform.OpenURL(ctx, url); err != nil {
		s.println(styles.Error("Could not open the browser: " + err.Error()))
		if !errors.Is(err, platform.ErrMissingTermuxAPI) {
			s.println(styles.Info("Run manually: " + s.platform.OpenHint(url)))
		}
		return nil
	}

	s.println(styles.Success("Opening in Android browser..."))
	s.field("URL", url)
	return nil
}

func (s *Shell) share(ctx context.Context) error {
	s.section("Share project")

	name, err := s.prompt(ctx, "Project name: ")
	if err != nil {
		return err
	}
	if name == "" {
		name = defaultProjectName
	}

	root := s.root()
	dst := filepath.Join(root, name+archive.Gzip.Extension())
	if _, err := archive.Create(dst, archive.Options{Root: root, Prefix: name, Format: archive.Gzip}); err != nil {
		s.println(styles.Error("Could not create archive: " + err.Error()))
		return nil
	}

	// The receiving app reads the archive after the intent returns, so it is
	// only removed when nothing was handed over.
	if err := s.platform.Share(ctx, dst); err != nil {
		s.println(styles.Error("Could not share project: " + err.Error()))
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove shared archive", "path", dst, "error", err)
		}
		return nil
	}

	s.println(styles.Success("Project shared: " + filepath.Base(dst)))
	return nil
}

func (s *Shell) backup(context.Context) error {
	s.section("Back up project")

	format, err := archive.ParseFormat(s.cfg.Backup.Format)
	if err != nil {
		s.println(styles.Error(err.Error()))
		return nil
	}

	dst := filepath.Join(s.platform.BackupDir, archive.BackupName(s.cfg.Backup.Prefix, s.now(), format))
	res, err := archive.Create(dst, archive.Options{
		Root:   s.root(),
		Prefix: s.cfg.Backup.Prefix,
		Format: format,
		Level:  s.cfg.Backup.Level,
	})
	if err != nil {
		s.println(styles.Error("Could not create backup: " + err.Error()))
		return nil
	}

	s.println(styles.Success("Backup created: " + res.Path))
	s.field("Files", fmt.Sprint(res.FilesProcessed))
	s.field("Size", fmt.Sprintf("%s (%d bytes)", archive.FormatSize(res.CompressedSize), res.CompressedSize))
	s.field("Ratio", fmt.Sprintf("%.1f%%", res.Ratio()))
	for _, e := range res.Errors {
		s.println(styles.Warning(e))
	}
	return nil
}

func (s *Shell) root() string {
	if s.dir == "" {
		return "."
	}
	return s.dir
}
