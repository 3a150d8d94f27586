// Package session maps browser sessions to their dashboard state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medipredict/forecast-dashboard/internal/pipeline"
	"github.com/medipredict/forecast-dashboard/internal/tabs"
	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"go.uber.org/zap"
)

// Dashboard tabs.
const (
	TabUpload    = "upload"
	TabForecasts = "forecasts"
)

// Tabs lists the dashboard tab buttons in display order.
var Tabs = []string{TabUpload, TabForecasts}

// Session is the state of one page session.
type Session struct {
	ID       string
	Pipeline *pipeline.Pipeline
	Tabs     *tabs.Controller

	lastSeen time.Time
}

// PipelineFactory creates the pipeline of a new session.
type PipelineFactory func() *pipeline.Pipeline

// Store holds the live sessions and expires idle ones.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  PipelineFactory
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore creates an empty store. Sessions idle for longer than ttl are
// removed by Sweep.
func NewStore(ttl time.Duration, factory PipelineFactory, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		logger:   logger,
		now:      time.Now,
	}
}

// Acquire returns the session with the given id, creating a new one with a
// fresh id when id is unknown or empty. created reports whether a new session
// was made.
func (s *Store) Acquire(id string) (sess *Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		return sess, false
	}

	panels := make([]string, 0, len(Tabs))
	for _, t := range Tabs {
		panels = append(panels, tabs.PanelID(t))
	}
	sess = &Session{
		ID:       uuid.NewString(),
		Pipeline: s.factory(),
		Tabs:     tabs.New(Tabs, panels, TabUpload),
		lastSeen: s.now(),
	}
	s.sessions[sess.ID] = sess

	s.logger.Debug("session created",
		zap.String("op", "session.Acquire"),
		zap.String("session", sess.ID),
		zap.Int("sessions", len(s.sessions)),
	)
	return sess, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and releases their
// charts. It returns the number of sessions removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.ttl)
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Pipeline.Close()
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle sessions",
			zap.String("op", "session.Sweep"),
			zap.Int("expired", len(expired)),
		)
	}
	return len(expired)
}

// Run sweeps the store every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 4
	}
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
			s.Sweep()
		}
	}
}

// Close releases every session.
func (s *Store) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Pipeline.Close()
	}
}
