package installer

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/sirupsen/logrus"

	"github.com/samhoang/copm/internal/logger"
)

// replaceDir replaces dst wholesale with a copy of src (a directory or a
// single file). An existing dst is moved aside so rollback can restore it.
func replaceDir(src, dst string, rb *Rollback) error {
	if _, err := os.Lstat(dst); err == nil {
		backup := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".copm-old")
		if err := os.RemoveAll(backup); err != nil {
			return err
		}
		if err := os.Rename(dst, backup); err != nil {
			return err
		}
		rb.AddReplaced(dst, backup)
	} else if os.IsNotExist(err) {
		rb.AddDir(dst)
	} else {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return copyDir(src, dst)
	}
	return copyFileItem(src, filepath.Join(dst, filepath.Base(src)))
}

// copyArtifactFile copies one file over dst, recording new files for rollback
// and logging a diff when existing content changes
func copyArtifactFile(ctx context.Context, src, dst string, rb *Rollback) error {
	old, err := os.ReadFile(dst)
	existed := err == nil

	log := logger.G(ctx)
	if existed && log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		updated, err := os.ReadFile(src)
		if err == nil && !bytes.Equal(old, updated) {
			log.WithField("path", dst).Debugf("overwriting\n%s",
				udiff.Unified(dst, src, string(old), string(updated)))
		}
	}

	if err := copyFileItem(src, dst); err != nil {
		return err
	}
	if !existed {
		rb.AddFile(dst)
	}
	return nil
}

func copyDir(src, dst string) error {
	return copyTree(src, dst, make(map[string]bool))
}

// copyTree copies src into dst following symlinks. A directory whose real
// path is already being copied further up is skipped, as are dangling links.
func copyTree(src, dst string, active map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if active[resolved] {
		return nil
	}
	active[resolved] = true
	defer delete(active, resolved)

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Stat(srcPath)
		if err != nil {
			if entry.Type()&os.ModeSymlink != 0 {
				continue
			}
			return err
		}

		if info.IsDir() {
			if err := copyTree(srcPath, dstPath, active); err != nil {
				return err
			}
		} else if info.Mode().IsRegular() {
			if err := copyFileItem(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func copyFileItem(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
