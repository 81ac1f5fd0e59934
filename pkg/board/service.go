// Package board is the operations layer over the identifier pool and the
// shard store. It is the only place that enforces the cross-cutting
// invariants: field validation, the live-message capacity bound, and
// authorship attribution from the active session.
package board

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bbs/pkg/logger"
	"bbs/pkg/metrics"
	"bbs/pkg/models"
	"bbs/pkg/pool"
	"bbs/pkg/session"
	"bbs/pkg/state"
	"bbs/pkg/store"
	"bbs/pkg/validation"
)

// DefaultMaxMessages bounds the number of simultaneously live messages.
const DefaultMaxMessages = 200

// Options configure a Service. Zero values fall back to defaults.
type Options struct {
	DataDir     string
	MaxMessages int
	ShardSize   int
	// MetricsSnapshot writes a prometheus text snapshot to the state dir
	// when a session ends.
	MetricsSnapshot bool
}

// Service composes the session, the identifier pool and the shard store.
// One operation runs at a time; there is no internal locking by design.
type Service struct {
	opts Options
	sess *session.Session

	pool  *pool.Pool
	store *store.Store
	live  int
}

// New returns an unconnected Service. No disk I/O happens until Connect.
func New(opts Options, sess *session.Session) *Service {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = DefaultMaxMessages
	}
	if opts.ShardSize <= 0 {
		opts.ShardSize = store.DefaultShardSize
	}
	return &Service{opts: opts, sess: sess}
}

// Connect establishes username as the active author. With fresh=true all
// persisted state is wiped and the identifier pool is reseeded to the full
// 1..MaxMessages range; otherwise the persisted pool is loaded and the
// board resumes where the data left off. Stray scratch files from a crash
// mid-rewrite are discarded first.
func (s *Service) Connect(username string, fresh bool) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}
	if strings.Contains(username, "/") {
		// the summary partition joins fields with '/'
		return fmt.Errorf("%w: username must not contain '/'", ErrInvalidArgument)
	}
	var paths state.Paths
	var err error
	if fresh {
		// a reseeded pool over surviving shards would reissue IDs that
		// still have live records, so the shards go with it
		paths, err = state.Reset(s.opts.DataDir)
	} else {
		paths, err = state.EnsureStateDirs(s.opts.DataDir)
	}
	if err != nil {
		return err
	}
	state.CleanScratch(s.opts.DataDir)

	poolPath := filepath.Join(paths.State, "pool.txt")
	if fresh {
		s.pool, err = pool.Seed(poolPath, s.opts.MaxMessages)
	} else {
		s.pool, err = pool.Open(poolPath)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare id pool (reconnect with fresh=true for a clean bring-up): %w", err)
	}

	s.store, err = store.Open(paths, s.opts.ShardSize)
	if err != nil {
		return err
	}

	// The live count is derivable: every ID missing from the pool is
	// assigned to a live message.
	s.live = s.opts.MaxMessages - s.pool.Len()
	metrics.LiveMessages.Set(float64(s.live))

	s.sess.Begin(username)
	logger.Info("board_connected", "user", username, "fresh", fresh, "live", s.live)
	return nil
}

// Disconnect clears the active author ahead of process exit. All on-disk
// state is preserved for a later reconnect.
func (s *Service) Disconnect() {
	s.snapshotMetrics()
	s.sess.End()
}

// SoftDisconnect clears the active author while the process keeps running,
// so another user can connect to the same state.
func (s *Service) SoftDisconnect() {
	s.snapshotMetrics()
	s.sess.End()
}

// Connected reports whether a user is currently attached to the board.
func (s *Service) Connected() bool { return s.sess.Active() }

// Live returns the number of outstanding (posted, not deleted) messages.
func (s *Service) Live() int { return s.live }

// Post validates and stores a new message attributed to the connected user
// and returns its assigned ID.
func (s *Service) Post(subject, body string) (int, error) {
	if !s.sess.Active() {
		metrics.OpErrors.WithLabelValues("post", "no_session").Inc()
		return 0, fmt.Errorf("%w: no user connected", ErrInvalidArgument)
	}
	if err := validation.ValidateMessage(subject, body); err != nil {
		metrics.OpErrors.WithLabelValues("post", "invalid_argument").Inc()
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if s.live >= s.opts.MaxMessages {
		metrics.OpErrors.WithLabelValues("post", "capacity_exceeded").Inc()
		return 0, fmt.Errorf("%w: %d live messages", ErrCapacityExceeded, s.live)
	}
	id, err := s.pool.Acquire()
	if err != nil {
		metrics.OpErrors.WithLabelValues("post", "pool_exhausted").Inc()
		return 0, err
	}
	m := models.Message{ID: id, Author: s.sess.Current(), Subject: subject, Body: body}
	if err := s.store.WriteRecord(m); err != nil {
		// hand the ID back so the pool matches the shards
		if rerr := s.pool.Release(id); rerr != nil {
			logger.Error("pool_release_after_failed_write", "id", id, "error", rerr)
		}
		metrics.OpErrors.WithLabelValues("post", "io").Inc()
		return 0, err
	}
	s.live++
	metrics.Posts.Inc()
	metrics.LiveMessages.Set(float64(s.live))
	logger.Info("message_posted", "id", id, "user", m.Author, "session", s.sess.ID())
	return id, nil
}

// Delete removes the message with the given ID from both shards, releases
// the ID for reuse and decrements the live count. Deleting an ID that is
// not live leaves all state untouched and reports ErrNotFound.
func (s *Service) Delete(id int) error {
	removed, err := s.store.DeleteRecord(id)
	if err != nil {
		metrics.OpErrors.WithLabelValues("delete", "io").Inc()
		return err
	}
	if !removed {
		metrics.OpErrors.WithLabelValues("delete", "not_found").Inc()
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	// release before touching the counter so live stays derivable from
	// the pool even when the release fails to persist
	if err := s.pool.Release(id); err != nil {
		metrics.OpErrors.WithLabelValues("delete", "io").Inc()
		return err
	}
	s.live--
	metrics.Deletes.Inc()
	metrics.LiveMessages.Set(float64(s.live))
	logger.Info("message_deleted", "id", id, "session", s.sess.ID())
	return nil
}

// View returns the full human-readable rendering of one message.
func (s *Service) View(id int) (string, error) {
	m, err := s.store.ReadRecord(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.OpErrors.WithLabelValues("view", "not_found").Inc()
			return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		metrics.OpErrors.WithLabelValues("view", "io").Inc()
		return "", err
	}
	var b strings.Builder
	if err := store.WriteMessageFrame(&b, m); err != nil {
		return "", err
	}
	metrics.Views.Inc()
	return b.String(), nil
}

// Summarize returns one labeled block per live message whose author or
// subject contains term (case-sensitive). The empty term matches every
// message. Output order is storage order, not ID order.
func (s *Service) Summarize(term string) (string, error) {
	entries, err := s.store.ScanSummaries(func(author, subject string) bool {
		return strings.Contains(author, term) || strings.Contains(subject, term)
	})
	if err != nil {
		metrics.OpErrors.WithLabelValues("summarize", "io").Inc()
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		if err := store.WriteSummaryLabeled(&b, e); err != nil {
			return "", err
		}
	}
	metrics.Summaries.Inc()
	return b.String(), nil
}

// Reset wipes all persisted board state and reseeds the pool. Any active
// session stays connected. Used for a clean bring-up and by tests.
func (s *Service) Reset() error {
	paths, err := state.Reset(s.opts.DataDir)
	if err != nil {
		return err
	}
	s.pool, err = pool.Seed(filepath.Join(paths.State, "pool.txt"), s.opts.MaxMessages)
	if err != nil {
		return err
	}
	s.store, err = store.Open(paths, s.opts.ShardSize)
	if err != nil {
		return err
	}
	s.live = 0
	metrics.LiveMessages.Set(0)
	logger.Info("board_reset", "data_dir", s.opts.DataDir, "capacity", s.opts.MaxMessages)
	return nil
}

func (s *Service) snapshotMetrics() {
	if !s.opts.MetricsSnapshot || s.opts.DataDir == "" {
		return
	}
	path := filepath.Join(state.Layout(s.opts.DataDir).State, "metrics.prom")
	if err := metrics.WriteSnapshot(path); err != nil {
		logger.Warn("metrics_snapshot_failed", "path", path, "error", err)
	}
}
