// Package atomicfile provides crash-safe file writing using temporary files
// and atomic renames. Rendered artifacts and saved configs both go through
// here so readers never observe a half-written PNG, GIF, or TOML file.

package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File is one entry of a [WriteSet] batch.
type File struct {
	Path string
	Data []byte
}

// Write atomically writes data to path. The data lands in a temp file in the
// same directory, is synced and chmod'ed, and is then renamed over path.
func Write(path string, data []byte, perm os.FileMode) error {
	tmp, err := stage(path, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WriteSet writes every file in files or none of them. All temp files are
// staged before the first rename; if any rename fails, targets renamed so
// far are removed. Split renders use this so a consumer never sees tile 3 of
// 5 without the others.
func WriteSet(files []File, perm os.FileMode) error {
	tmps := make([]string, 0, len(files))
	cleanup := func() {
		for _, t := range tmps {
			os.Remove(t)
		}
	}

	for _, f := range files {
		tmp, err := stage(f.Path, f.Data, perm)
		if err != nil {
			cleanup()
			return fmt.Errorf("stage %s: %w", filepath.Base(f.Path), err)
		}
		tmps = append(tmps, tmp)
	}

	for i, f := range files {
		if err := os.Rename(tmps[i], f.Path); err != nil {
			errs := []error{fmt.Errorf("rename %s: %w", filepath.Base(f.Path), err)}
			for _, done := range files[:i] {
				if rerr := os.Remove(done.Path); rerr != nil {
					errs = append(errs, rerr)
				}
			}
			for _, t := range tmps[i:] {
				os.Remove(t)
			}
			return errors.Join(errs...)
		}
	}
	return nil
}

// stage writes data to a temp file beside path and returns the temp name.
// The temp file is removed on any failure.
func stage(path string, data []byte, perm os.FileMode) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := f.Name()
	var success bool
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	success = true
	return tmpName, nil
}
