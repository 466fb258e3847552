// Package session holds in-flight disambiguation state per user. Sessions
// live only between presenting an ambiguous candidate list and consuming
// the user's numeric reply; they never survive a restart.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cinemareddy/postbot/internal/domain"
	"github.com/cinemareddy/postbot/internal/logger"
)

// Store is a concurrency-safe map from user id to a pending session.
// Put/Get/Take on the same key are mutually exclusive, so a reply can
// consume a session exactly once even under concurrent delivery.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
	maxAge   time.Duration
	now      func() time.Time
}

// NewStore builds a Store whose sessions expire after maxAge.
func NewStore(maxAge time.Duration) *Store {
	return &Store{
		sessions: make(map[int64]*domain.Session),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Put stores a session for its user, unconditionally replacing any pending
// one (last writer wins; a fresh submission invalidates the old choice).
func (s *Store) Put(sess *domain.Session) {
	if sess == nil {
		return
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
}

// Get returns the pending session for a user without consuming it.
// Expired sessions are treated as absent and dropped on the way.
func (s *Store) Get(userID int64) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		delete(s.sessions, userID)
		return nil, false
	}
	return sess, true
}

// Take atomically removes and returns the pending session for a user.
// A second concurrent Take sees no session.
func (s *Store) Take(userID int64) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, userID)
	if s.expired(sess) {
		return nil, false
	}
	return sess, true
}

// SweepExpired drops all sessions older than the configured max age and
// reports how many were removed.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps expired sessions on a periodic tick until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.SweepExpired(); removed > 0 {
				logger.Debug(ctx, "session", "sweep",
					slog.String("status", "ok"),
					slog.Int("sessions", removed),
				)
			}
		}
	}
}

func (s *Store) expired(sess *domain.Session) bool {
	if s.maxAge <= 0 {
		return false
	}
	return s.now().Sub(sess.CreatedAt) > s.maxAge
}
