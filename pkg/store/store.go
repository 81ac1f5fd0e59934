// Package store is the durable, range-partitioned shard store. Full message
// records live in per-range record shard files; a condensed author+subject
// view of every live message lives in a single summary partition. Both are
// framed text files: appends add blocks, deletion rewrites the owning file
// through a scratch file and an atomic rename.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bbs/pkg/logger"
	"bbs/pkg/models"
	"bbs/pkg/state"
)

// ErrNotFound signals a point lookup for an ID with no live record. It
// covers both "never existed" and "deleted".
var ErrNotFound = errors.New("message not found")

// DefaultShardSize is the number of IDs per record shard file.
const DefaultShardSize = 10

// Store reads and writes the shard files under a fixed directory layout.
// Not safe for concurrent use; one session runs at a time by design.
type Store struct {
	recordsDir  string
	summaryPath string
	shardSize   int
}

// Open returns a Store over the given layout. Directories must already
// exist (state.EnsureStateDirs creates them).
func Open(paths state.Paths, shardSize int) (*Store, error) {
	if shardSize <= 0 {
		shardSize = DefaultShardSize
	}
	for _, dir := range []string{paths.Records, paths.Summary} {
		fi, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("store layout missing: %w", err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("store path is not a directory: %s", dir)
		}
	}
	return &Store{
		recordsDir:  paths.Records,
		summaryPath: filepath.Join(paths.Summary, "summary.txt"),
		shardSize:   shardSize,
	}, nil
}

// shardOf maps a 1-based message ID to its 0-based shard index.
func (s *Store) shardOf(id int) int { return (id - 1) / s.shardSize }

func (s *Store) shardPath(id int) string {
	return filepath.Join(s.recordsDir, fmt.Sprintf("shard-%d.txt", s.shardOf(id)))
}

// WriteRecord appends the full record to the owning record shard and the
// condensed entry to the summary partition. Append-only; callers guarantee
// the ID is not already live.
func (s *Store) WriteRecord(m models.Message) error {
	if err := appendFrame(s.shardPath(m.ID), func(w io.Writer) error {
		return WriteMessageFrame(w, m)
	}); err != nil {
		return fmt.Errorf("failed to append record for id %d: %w", m.ID, err)
	}
	if err := appendFrame(s.summaryPath, func(w io.Writer) error {
		return WriteSummaryFrame(w, models.Summary{ID: m.ID, Author: m.Author, Subject: m.Subject})
	}); err != nil {
		return fmt.Errorf("failed to append summary for id %d: %w", m.ID, err)
	}
	logger.Debug("record_written", "id", m.ID, "shard", s.shardOf(m.ID))
	return nil
}

// ReadRecord scans the owning record shard for id and returns the full
// message, or ErrNotFound.
func (s *Store) ReadRecord(id int) (models.Message, error) {
	f, err := os.Open(s.shardPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return models.Message{}, ErrNotFound
		}
		return models.Message{}, err
	}
	defer f.Close()

	var found models.Message
	ok := false
	if err := scanMessages(f, func(m models.Message) error {
		if m.ID == id {
			found = m
			ok = true
		}
		return nil
	}); err != nil {
		return models.Message{}, err
	}
	if !ok {
		return models.Message{}, ErrNotFound
	}
	return found, nil
}

// DeleteRecord removes id from its record shard and from the summary
// partition by rewriting each file without the entry. Deleting an absent ID
// is a no-op; the bool reports whether a record was actually removed.
func (s *Store) DeleteRecord(id int) (bool, error) {
	removed, err := s.rewriteShard(id)
	if err != nil {
		return false, err
	}
	if err := s.rewriteSummary(id); err != nil {
		return removed, err
	}
	if removed {
		logger.Debug("record_deleted", "id", id, "shard", s.shardOf(id))
	}
	return removed, nil
}

// ScanSummaries iterates the summary partition in storage order and returns
// the entries whose author or subject contains term. The empty term matches
// everything. Order is append order of the surviving entries, not ID order.
func (s *Store) ScanSummaries(match func(author, subject string) bool) ([]models.Summary, error) {
	f, err := os.Open(s.summaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []models.Summary
	if err := scanSummaryEntries(f, func(e models.Summary) error {
		if match == nil || match(e.Author, e.Subject) {
			out = append(out, e)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) rewriteShard(id int) (bool, error) {
	path := s.shardPath(id)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	var kept []models.Message
	removed := false
	scanErr := scanMessages(f, func(m models.Message) error {
		if m.ID == id {
			removed = true
			return nil
		}
		kept = append(kept, m)
		return nil
	})
	f.Close()
	if scanErr != nil {
		return false, scanErr
	}
	if !removed {
		return false, nil
	}
	err = state.WriteFileAtomic(path, func(w io.Writer) error {
		for _, m := range kept {
			if err := WriteMessageFrame(w, m); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}

func (s *Store) rewriteSummary(id int) error {
	f, err := os.Open(s.summaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var kept []models.Summary
	removed := false
	scanErr := scanSummaryEntries(f, func(e models.Summary) error {
		if e.ID == id {
			removed = true
			return nil
		}
		kept = append(kept, e)
		return nil
	})
	f.Close()
	if scanErr != nil {
		return scanErr
	}
	if !removed {
		return nil
	}
	return state.WriteFileAtomic(s.summaryPath, func(w io.Writer) error {
		for _, e := range kept {
			if err := WriteSummaryFrame(w, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// appendFrame appends one framed block to path, creating the file when
// missing, and fsyncs so a completed post is durable.
func appendFrame(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
