package persist

import (
	"sync"
	"time"
)

// DefaultDebounce is the window that coalesces rapid edits into one
// persistence call. A crash loses at most this much recent work.
const DefaultDebounce = 2 * time.Second

// Saver is a trailing-edge debouncer: every Kick restarts the timer,
// and only a timer that fires without being superseded runs the save
// function.
type Saver struct {
	delay time.Duration
	save  func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewSaver creates a debounced saver. delay <= 0 uses DefaultDebounce.
func NewSaver(delay time.Duration, save func()) *Saver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Saver{delay: delay, save: save}
}

// Kick (re)starts the debounce window.
func (s *Saver) Kick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.save)
}

// Flush cancels any pending timer and saves immediately. Used on
// shutdown and logout so the debounce window is not a loss window.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.save()
}

// Stop cancels any pending save without running it.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
