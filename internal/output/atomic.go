// Package output places the finished dictionary file on disk all-or-nothing.
package output

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// WriteAtomic renders the file with write into a unique per-run
// subdirectory of tempDir and moves it to finalPath only after write
// succeeded and the data was synced. On any failure, or when ctx is
// cancelled first, finalPath is left untouched.
//
// When tempDir and finalPath are on different filesystems the file is
// copied to a hidden sibling of finalPath and renamed from there.
//
// Errors are *domain.OutputWriteError carrying finalPath.
func WriteAtomic(ctx context.Context, fs afero.Fs, finalPath, tempDir string, write func(io.Writer) error) error {
	if err := writeAtomic(ctx, fs, finalPath, tempDir, write); err != nil {
		return &domain.OutputWriteError{Path: finalPath, Err: err}
	}
	return nil
}

func writeAtomic(ctx context.Context, fs afero.Fs, finalPath, tempDir string, write func(io.Writer) error) error {
	runDir := filepath.Join(tempDir, "wpbd-"+uuid.NewString())
	if err := fs.MkdirAll(runDir, 0o700); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = fs.RemoveAll(runDir) }()

	tmpPath := filepath.Join(runDir, filepath.Base(finalPath))
	if err := writeFile(fs, tmpPath, write); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(finalPath)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	err := fs.Rename(tmpPath, finalPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("rename: %w", err)
	}
	return copyThenRename(fs, tmpPath, finalPath)
}

func writeFile(fs afero.Fs, path string, write func(io.Writer) error) error {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// copyThenRename moves src across filesystems through a sibling of dst so
// that the final step is still a same-directory rename.
func copyThenRename(fs afero.Fs, src, dst string) error {
	sibling := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-"+uuid.NewString())

	err := writeFile(fs, sibling, func(w io.Writer) error {
		in, err := fs.Open(src)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		_ = fs.Remove(sibling)
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := fs.Rename(sibling, dst); err != nil {
		_ = fs.Remove(sibling)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
