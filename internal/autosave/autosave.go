// Package autosave coalesces bursts of state changes into a single save.
package autosave

import (
	"log"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last change before saving.
const DefaultDelay = 500 * time.Millisecond

type Saver struct {
	delay time.Duration
	save  func() error

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	stopped bool

	saveMu sync.Mutex
}

func New(delay time.Duration, save func() error) *Saver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Saver{delay: delay, save: save}
}

// Schedule restarts the debounce window. Errors from the eventual save are
// logged, never returned to the caller that changed the state.
func (s *Saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = true
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// fire ignores timers superseded by a later Schedule.
func (s *Saver) fire(gen uint64) {
	s.mu.Lock()
	if !s.pending || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	if err := s.run(); err != nil {
		log.Printf("[autosave] save failed: %v", err)
	}
}

func (s *Saver) run() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.save()
}

// Pending reports a change that has not been written yet.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Flush saves now if a save is pending and waits for one already running.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	pending := s.pending
	s.pending = false
	s.mu.Unlock()

	if !pending {
		s.saveMu.Lock()
		s.saveMu.Unlock()
		return nil
	}
	return s.run()
}

// Stop ignores every later Schedule, including ones that land while the
// final flush runs, then flushes.
func (s *Saver) Stop() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	return s.Flush()
}
