// Package app owns the live task plan. Every mutation goes through
// Controller.Dispatch, which runs the pure reducer and schedules a write.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ramanasai/amal/internal/notify"
	"github.com/ramanasai/amal/internal/persist"
	"github.com/ramanasai/amal/internal/tracker"
)

type Controller struct {
	mu    sync.Mutex
	state tracker.Store

	saver    *persist.Scheduler[tracker.Store]
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string
	length   time.Duration
	streak   tracker.StreakOptions
	logger   *log.Logger

	closed bool
}

type Option func(*Controller)

// WithSaver schedules a write of every new state.
func WithSaver(s *persist.Scheduler[tracker.Store]) Option {
	return func(c *Controller) { c.saver = s }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

func WithSessionLength(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.length = d
		}
	}
}

func WithStreakOptions(o tracker.StreakOptions) Option {
	return func(c *Controller) { c.streak = o }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		c.logger = l
	}
}

// New takes ownership of a copy of initial.
func New(initial tracker.Store, opts ...Option) *Controller {
	if initial == nil {
		initial = tracker.Store{}
	}
	c := &Controller{
		state:    initial.Clone(),
		notifier: notify.Discard{},
		now:      time.Now,
		length:   tracker.DefaultSessionLength,
		streak:   tracker.DefaultStreakOptions(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) env(now time.Time) tracker.Env {
	return tracker.Env{Now: now, NewID: c.newID, SessionLength: c.length}
}

// Now is the controller's clock.
func (c *Controller) Now() time.Time { return c.now() }

// SessionLength is the configured focus interval.
func (c *Controller) SessionLength() time.Duration { return c.length }

// Dispatch settles finished sessions and then applies a. On error the state
// is unchanged and nothing is written.
func (c *Controller) Dispatch(a tracker.Action) (tracker.Store, error) {
	c.mu.Lock()
	settled := c.settleLocked(c.now())
	env := c.env(c.now())
	next, err := tracker.Reduce(c.state, a, env)
	if err == nil {
		c.state = next
	}
	if err == nil || len(settled) > 0 {
		c.scheduleLocked()
	}
	out := c.state.Clone()
	c.mu.Unlock()

	c.announce(settled)
	return out, err
}

// State returns a copy of the whole plan.
func (c *Controller) State() tracker.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Day returns a copy of one day's tasks, never nil.
func (c *Controller) Day(day string) []tracker.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks := tracker.Store{day: c.state[day]}.Clone()[day]
	if tasks == nil {
		return []tracker.Task{}
	}
	return tasks
}

// Active returns the running task, if any.
func (c *Controller) Active() (string, tracker.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tracker.Active(c.state, c.now(), c.length)
}

// Tick settles every session that has reached its length at now and
// raises a notification for each.
func (c *Controller) Tick(now time.Time) []tracker.Settled {
	c.mu.Lock()
	settled := c.settleLocked(now)
	if len(settled) > 0 {
		c.scheduleLocked()
	}
	c.mu.Unlock()

	c.announce(settled)
	return settled
}

func (c *Controller) settleLocked(now time.Time) []tracker.Settled {
	next, settled := tracker.Settle(c.state, c.env(now))
	c.state = next
	return settled
}

func (c *Controller) scheduleLocked() {
	if c.saver != nil && !c.closed {
		c.saver.Schedule(c.state.Clone())
	}
}

func (c *Controller) announce(settled []tracker.Settled) {
	for _, s := range settled {
		if err := c.notifier.SessionComplete(s.Task.Title); err != nil {
			c.logger.Printf("notify: %v", err)
		}
	}
}

// Run ticks once a second until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			c.Tick(c.now())
		}
	}
}

// Import validates data and merges it into the plan. Either the whole
// payload is applied or nothing is.
func (c *Controller) Import(data []byte) error {
	imp, err := tracker.ParseImport(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	merged := tracker.Merge(c.state, imp)
	if n := runningTasks(merged, c.now(), c.length); n > 1 {
		return fmt.Errorf("%w: import would leave %d sessions running", tracker.ErrInvalidImport, n)
	}
	c.state = merged
	c.scheduleLocked()
	return nil
}

// Discard drops the write scheduled for the current plan. The in-memory
// plan is kept.
func (c *Controller) Discard() {
	if c.saver != nil {
		c.saver.Cancel()
	}
}

func runningTasks(s tracker.Store, now time.Time, length time.Duration) int {
	n := 0
	for _, tasks := range s {
		for _, t := range tasks {
			if tracker.Running(t, now, length) {
				n++
			}
		}
	}
	return n
}

func (c *Controller) Export() ([]byte, error) {
	return tracker.Export(c.State())
}

func (c *Controller) ExportYAML() ([]byte, error) {
	return tracker.ExportYAML(c.State())
}

// Summary derives one day's statistics.
func (c *Controller) Summary(day string) tracker.DaySummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tracker.Summarize(day, c.state[day], c.now(), c.length)
}

// History summarizes every recorded day, oldest first.
func (c *Controller) History() []tracker.DaySummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tracker.SummarizeAll(c.state, c.now(), c.length)
}

func (c *Controller) Streak() tracker.Streak {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tracker.ComputeStreak(c.state, c.streak)
}

// Close flushes the pending write. Later dispatches still update memory but
// are no longer persisted.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	if c.saver == nil {
		return nil
	}
	if err := c.saver.Close(ctx); err != nil {
		return errors.Join(errors.New("flush on close"), err)
	}
	return nil
}
