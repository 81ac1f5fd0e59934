package state

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic rewrites path by streaming content into a scratch file in
// the same directory and renaming it over the original. The rename is the
// sole mutating step: a crash before it leaves the original untouched, and
// the stray scratch file is discarded by CleanScratch on the next start.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".rewrite-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create scratch file in %s: %w", dir, err)
	}
	name := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("failed to sync scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("failed to move scratch file into place: %w", err)
	}
	_ = os.Chmod(path, 0o600)
	return nil
}
