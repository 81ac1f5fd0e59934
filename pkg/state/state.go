package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bbs/pkg/logger"
)

// Paths is the canonical runtime folder layout under the board data dir.
type Paths struct {
	Records string // record shard files
	Summary string // the all-summaries partition
	State   string // pool file, metrics snapshots
}

// Layout returns the canonical paths for a data dir without creating them.
func Layout(dataDir string) Paths {
	return Paths{
		Records: filepath.Join(dataDir, "store", "records"),
		Summary: filepath.Join(dataDir, "store", "summary"),
		State:   filepath.Join(dataDir, "state"),
	}
}

// EnsureStateDirs ensures the canonical runtime folder layout exists under
// the provided data dir. It verifies paths are not symlinks, have
// restrictive permissions, and are writable by the process.
func EnsureStateDirs(dataDir string) (Paths, error) {
	p := Layout(dataDir)

	for _, dir := range []string{p.Records, p.Summary, p.State} {
		// ensure parent exists
		if err := os.MkdirAll(filepath.Dir(dir), 0o700); err != nil {
			return p, fmt.Errorf("cannot create parent for %s: %w", dir, err)
		}

		// if path exists, reject symlinks and non-directories
		if fi, err := os.Lstat(dir); err == nil {
			if fi.Mode()&os.ModeSymlink != 0 {
				return p, fmt.Errorf("path is a symlink: %s", dir)
			}
			if !fi.IsDir() {
				return p, fmt.Errorf("path exists and is not a directory: %s", dir)
			}
		}

		if err := os.MkdirAll(dir, 0o700); err != nil {
			return p, fmt.Errorf("cannot create path %s: %w", dir, err)
		}

		// writability check: create and remove a temp file
		tmp, err := os.CreateTemp(dir, ".validate-*")
		if err != nil {
			return p, fmt.Errorf("path not writable: %s: %w", dir, err)
		}
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	return p, nil
}

// CleanScratch removes stray rewrite scratch files left behind by a crash
// mid-rewrite. The originals they were meant to replace are intact, so the
// scratch files are safe to discard. Returns the number of files removed.
func CleanScratch(dataDir string) int {
	p := Layout(dataDir)
	removed := 0
	for _, dir := range []string{p.Records, p.Summary, p.State} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if strings.HasPrefix(name, ".rewrite-") && strings.HasSuffix(name, ".tmp") {
				full := filepath.Join(dir, name)
				if err := os.Remove(full); err == nil {
					logger.Info("removed_stray_scratch_file", "path", full)
					removed++
				}
			}
		}
	}
	return removed
}

// Reset deletes all persisted board state under the data dir and recreates
// the canonical layout. Used for a clean system bring-up and by tests.
func Reset(dataDir string) (Paths, error) {
	if err := os.RemoveAll(filepath.Join(dataDir, "store")); err != nil {
		return Paths{}, fmt.Errorf("cannot reset store: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(dataDir, "state")); err != nil {
		return Paths{}, fmt.Errorf("cannot reset state: %w", err)
	}
	return EnsureStateDirs(dataDir)
}
