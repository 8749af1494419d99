package timer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoTimer is returned when an operation references a draft key with no
// timer.
var ErrNoTimer = errors.New("no timer for draft key")

// Store keeps one timer per draft key and persists the whole map to a JSON
// file after every mutation, so an accidental restart loses nothing: a timer
// rehydrated as running recomputes elapsed time from its stored StartedAt.
type Store struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	timers map[string]State
}

// OpenStore loads (or initializes) the timer file at path.
func OpenStore(path string) (*Store, error) {
	s := &Store{
		path:   path,
		now:    time.Now,
		timers: map[string]State{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading timer store: %w", err)
	}
	if err := json.Unmarshal(data, &s.timers); err != nil {
		return nil, fmt.Errorf("decoding timer store: %w", err)
	}
	return s, nil
}

// Start creates or resumes the timer for key. Idempotent while running.
func (s *Store) Start(key string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.timers[key].Start(s.now())
	s.timers[key] = next
	return next, s.save()
}

// Stop halts the timer and returns the stopped state together with the
// hours to credit to the owning draft's client hours. Stopping a timer that
// is not running credits nothing: the hours were already reported by the
// Stop that halted it.
func (s *Store) Stop(key string) (State, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.timers[key]
	if !ok {
		return State{}, 0, ErrNoTimer
	}
	if !current.Running {
		return current, 0, nil
	}
	next := current.Stop(s.now())
	s.timers[key] = next
	return next, next.Hours(), s.save()
}

// Reset discards all timer state for key. Called when the owning draft is
// saved, cancelled with discard, or deleted.
func (s *Store) Reset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[key]; !ok {
		return nil
	}
	delete(s.timers, key)
	return s.save()
}

// Get returns the timer for key, if any.
func (s *Store) Get(key string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.timers[key]
	return state, ok
}

// Elapsed recomputes accrued seconds for key as of now.
func (s *Store) Elapsed(key string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.timers[key]
	if !ok {
		return 0, false
	}
	return state.Elapsed(s.now()), true
}

// Tick invokes fn once a second with the recomputed elapsed seconds of
// every running timer, until ctx is done. It only reads state and performs
// no I/O; it exists so a display can re-render while a timer runs.
func (s *Store) Tick(ctx context.Context, fn func(key string, elapsedSeconds int64)) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, state := range s.timers {
				if state.Running {
					fn(key, state.Elapsed(now))
				}
			}
			s.mu.Unlock()
		}
	}
}

// save writes the timer map to disk. Caller holds the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.timers, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding timer store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating timer store dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing timer store: %w", err)
	}
	return nil
}
