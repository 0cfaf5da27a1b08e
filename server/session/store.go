// Package session keeps one board per browser session. Sessions are keyed
// by a random UUID carried in a cookie, are created by the first form
// submission and are evicted once idle.
package session

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nomis52/signup/board"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "signup_session"

	DefaultIdleTimeout = 30 * time.Minute
	minSweepInterval   = 10 * time.Second
)

// Factory creates the board for a new session.
type Factory func() *board.Board

type entry struct {
	board    *board.Board
	lastSeen time.Time
}

// Store maps session IDs to boards. It is safe for concurrent use.
type Store struct {
	newBoard    Factory
	idleTimeout time.Duration
	secure      bool
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	stop chan struct{}
	once sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithIdleTimeout sets how long a session may go unused before eviction.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.idleTimeout = d
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store and starts its sweeper. Call Close to stop it.
func New(newBoard Factory, opts ...Option) *Store {
	s := &Store{
		newBoard:    newBoard,
		idleTimeout: DefaultIdleTimeout,
		logger:      slog.Default(),
		now:         time.Now,
		sessions:    make(map[string]*entry),
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()
	return s
}

// Board returns the board for the request's session, creating a session
// and setting its cookie when the request has none or an unknown one.
// Only actions call it, so visitors that never submit a form hold no
// session.
func (s *Store) Board(w http.ResponseWriter, r *http.Request) *board.Board {
	if c, err := r.Cookie(CookieName); err == nil {
		if b, ok := s.Lookup(c.Value); ok {
			return b
		}
	}

	id := uuid.NewString()
	b := s.newBoard()

	s.mu.Lock()
	s.sessions[id] = &entry{board: b, lastSeen: s.now()}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("session created", "session", id)
	return b
}

// Existing returns the board of the request's session without creating
// one.
func (s *Store) Existing(r *http.Request) (*board.Board, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return s.Lookup(c.Value)
}

// Transient returns a board that belongs to no session. The caller closes
// it once the page is rendered.
func (s *Store) Transient() *board.Board {
	return s.newBoard()
}

// Lookup returns the board for id and marks the session as used.
func (s *Store) Lookup(id string) (*board.Board, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.board, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(max(s.idleTimeout/4, minSweepInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep evicts idle sessions and stops their banner timers.
func (s *Store) sweep() {
	threshold := s.now().Add(-s.idleTimeout)

	var evicted []*board.Board
	s.mu.Lock()
	for id, e := range s.sessions {
		if e.lastSeen.Before(threshold) {
			evicted = append(evicted, e.board)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, b := range evicted {
		b.Close()
	}
	if len(evicted) > 0 {
		s.logger.Debug("evicted idle sessions", "count", len(evicted))
	}
}

// Close stops the sweeper and releases every session.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.stop)

		s.mu.Lock()
		sessions := s.sessions
		s.sessions = make(map[string]*entry)
		s.mu.Unlock()

		for _, e := range sessions {
			e.board.Close()
		}
	})
}
