// Package session tracks the single active user. Exactly one session is
// live at a time; new posts are attributed to its username.
package session

import (
	"github.com/google/uuid"

	"bbs/pkg/logger"
)

// Session is the mutable connection state: the connected username and an
// opaque id used to correlate log lines. A zero Session is disconnected.
type Session struct {
	id   string
	user string
}

// Begin connects username, assigning a fresh session id. Reconnecting
// replaces the previous author.
func (s *Session) Begin(username string) {
	s.id = uuid.NewString()
	s.user = username
	logger.Info("session_started", "session", s.id, "user", username)
}

// End clears the active author. On-disk state is untouched, so a later
// Begin resumes exactly where the data left off.
func (s *Session) End() {
	if s.id != "" {
		logger.Info("session_ended", "session", s.id, "user", s.user)
	}
	s.id = ""
	s.user = ""
}

// Active reports whether a user is currently connected.
func (s *Session) Active() bool { return s.user != "" }

// Current returns the connected username, or "" when disconnected.
func (s *Session) Current() string { return s.user }

// ID returns the opaque session id, or "" when disconnected.
func (s *Session) ID() string { return s.id }
