// Package persist debounces whole-state writes.
package persist

import (
	"context"
	"io"
	"log"
	"sync"
	"time"
)

// SaveFunc writes one snapshot.
type SaveFunc[T any] func(ctx context.Context, v T) error

// Scheduler holds the newest snapshot and writes it once no further
// snapshot has arrived for the configured delay.
type Scheduler[T any] struct {
	delay  time.Duration
	save   SaveFunc[T]
	logger *log.Logger

	// writeMu orders saves so a newer snapshot is never overwritten by an
	// older one still in flight.
	writeMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	value   T
	pending bool
	closed  bool
}

// Option configures a Scheduler.
type Option func(*schedulerOptions)

type schedulerOptions struct {
	logger *log.Logger
}

// WithLogger sets where failed saves are reported. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *schedulerOptions) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		o.logger = l
	}
}

// New returns a scheduler that calls save delay after the last Schedule.
func New[T any](delay time.Duration, save SaveFunc[T], opts ...Option) *Scheduler[T] {
	o := schedulerOptions{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if delay < 0 {
		delay = 0
	}
	return &Scheduler[T]{delay: delay, save: save, logger: o.logger}
}

// Schedule replaces the pending snapshot and restarts the delay. It is a
// no-op after Close.
func (s *Scheduler[T]) Schedule(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	s.value = v
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	token := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(token) })
}

// Pending reports whether a snapshot is waiting to be written.
func (s *Scheduler[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Cancel drops the pending snapshot without writing it.
func (s *Scheduler[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.pending = false
	var zero T
	s.value = zero
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler[T]) fire(token uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	v, ok := s.take(token, false)
	if !ok {
		return
	}
	if err := s.save(context.Background(), v); err != nil {
		s.logger.Printf("persist: save failed: %v", err)
	}
}

// take claims the pending value. A timer whose token is stale gets nothing.
func (s *Scheduler[T]) take(token uint64, force bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.pending || (!force && token != s.gen) {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return v, true
}

// Flush writes the pending snapshot now, if there is one.
func (s *Scheduler[T]) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	v, ok := s.take(0, true)
	if !ok {
		return nil
	}
	if err := s.save(ctx, v); err != nil {
		s.logger.Printf("persist: flush failed: %v", err)
		return err
	}
	return nil
}

// Close flushes and stops accepting snapshots.
func (s *Scheduler[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(ctx)
}
