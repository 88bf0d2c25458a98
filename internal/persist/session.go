package persist

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/twinlab/twin/internal/domain"
)

// Session owns the in-memory aggregate for the active user. There is
// one writer (the local session); each Apply replaces the aggregate
// wholesale, all-or-nothing, then kicks the debounced saver.
type Session struct {
	svc   *Service
	saver *Saver

	mu       sync.Mutex
	username string
	state    domain.UserState
	active   bool
}

// NewSession creates the session holder with its debounced saver.
// debounce <= 0 uses DefaultDebounce.
func NewSession(svc *Service, debounce time.Duration) *Session {
	s := &Session{svc: svc}
	s.saver = NewSaver(debounce, s.persist)
	return s
}

// Start installs the aggregate for a logged-in user.
func (s *Session) Start(username string, st domain.UserState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.state = st
	s.active = true
}

// State returns a copy of the current aggregate.
func (s *Session) State() (domain.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return domain.UserState{}, domain.ErrNotAuthenticated
	}
	return s.state.Clone(), nil
}

// Apply runs a transition against the current aggregate. On success
// the new value replaces the old one and the save timer restarts; on
// error nothing changes.
func (s *Session) Apply(fn func(domain.UserState) (domain.UserState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return domain.ErrNotAuthenticated
	}
	next, err := fn(s.state)
	if err != nil {
		return err
	}
	s.state = next
	s.saver.Kick()
	return nil
}

// Flush persists immediately, bypassing the debounce window.
func (s *Session) Flush() {
	s.saver.Flush()
}

// End flushes, clears the in-memory state and the stored session.
// The durable copy remains in the persistence service.
func (s *Session) End() error {
	s.saver.Flush()
	s.mu.Lock()
	s.username = ""
	s.state = domain.UserState{}
	s.active = false
	s.mu.Unlock()
	return s.svc.Logout()
}

// persist is the saver callback: snapshot under lock, write outside it.
func (s *Session) persist() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	username := s.username
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if err := s.svc.SaveUserData(context.Background(), username, snapshot); err != nil {
		log.Printf("[session] save failed: %v", err)
	}
}
