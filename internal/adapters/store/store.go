// Package store provides the observable state container shared by UI
// components. A Store is constructed explicitly and passed to whoever needs
// it; there is no package-level instance.
package store

import (
	"DeskShell/internal/core/ports"
	"fmt"
	"sync"
	"sync/atomic"
)

type subscriber[T any] struct {
	callback func(T)
	active   atomic.Bool
}

// Store holds one snapshot of T. Snapshots are replaced, never mutated, so
// T should be a value type or treated as immutable by callers.
//
// Every commit notifies all subscribers, even when the new value equals the
// old one. Notifications are delivered synchronously and in commit order:
// the goroutine that commits delivers its own notification before SetState
// returns, unless another goroutine is already delivering. In that case the
// delivering goroutine picks it up, which is also what happens when a
// subscriber calls SetState.
type Store[T any] struct {
	stateMu sync.RWMutex
	state   T

	writeMu    sync.Mutex // serializes compute-and-commit
	subs       []*subscriber[T]
	pending    []T
	delivering bool
}

var _ ports.Store[int] = (*Store[int])(nil)

// New creates a store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{state: initial}
}

// State returns the most recently committed snapshot.
func (s *Store[T]) State() T {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// SetState computes the next snapshot from the current one and commits it.
// If updater fails or panics the state is left unchanged, nobody is
// notified, and the error is returned.
func (s *Store[T]) SetState(updater func(current T) (T, error)) error {
	s.writeMu.Lock()

	next, err := apply(updater, s.State())
	if err != nil {
		s.writeMu.Unlock()
		return err
	}

	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()

	s.pending = append(s.pending, next)
	if s.delivering {
		s.writeMu.Unlock()
		return nil
	}
	s.delivering = true
	s.deliverLocked()
	return nil
}

// Update is SetState for updaters that cannot fail.
func (s *Store[T]) Update(updater func(current T) T) {
	_ = s.SetState(func(current T) (T, error) {
		return updater(current), nil
	})
}

// Replace commits next regardless of the current state.
func (s *Store[T]) Replace(next T) {
	s.Update(func(T) T { return next })
}

// Subscribe registers callback for every future commit.
func (s *Store[T]) Subscribe(callback func(state T)) ports.Unsubscribe {
	sub := &subscriber[T]{callback: callback}
	sub.active.Store(true)

	s.writeMu.Lock()
	s.subs = append(s.subs, sub)
	s.writeMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(sub) })
	}
}

func (s *Store[T]) unsubscribe(target *subscriber[T]) {
	target.active.Store(false)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	kept := make([]*subscriber[T], 0, len(s.subs))
	for _, sub := range s.subs {
		if sub != target {
			kept = append(kept, sub)
		}
	}
	s.subs = kept
}

// deliverLocked drains pending notifications. It is entered with writeMu
// held and returns with it released; the lock is dropped around callbacks
// so subscribers may read, subscribe, unsubscribe or commit.
func (s *Store[T]) deliverLocked() {
	defer func() {
		// A panicking subscriber must not leave the store stuck with
		// nobody delivering; the next commit resumes the queue.
		if r := recover(); r != nil {
			s.writeMu.Lock()
			s.delivering = false
			s.writeMu.Unlock()
			panic(r)
		}
	}()

	for len(s.pending) > 0 {
		state := s.pending[0]
		s.pending = s.pending[1:]
		subs := s.subs
		s.writeMu.Unlock()

		s.notify(subs, state)

		s.writeMu.Lock()
	}
	s.pending = nil
	s.delivering = false
	s.writeMu.Unlock()
}

func (s *Store[T]) notify(subs []*subscriber[T], state T) {
	for _, sub := range subs {
		if sub.active.Load() {
			sub.callback(state)
		}
	}
}

func apply[T any](updater func(T) (T, error), current T) (next T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("state updater panicked: %v", r)
		}
	}()
	return updater(current)
}
