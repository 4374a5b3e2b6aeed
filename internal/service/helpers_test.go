package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeSleeper advances the clock instead of waiting and remembers each delay.
type fakeSleeper struct {
	mu     sync.Mutex
	clock  *fakeClock
	delays []time.Duration
}

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	s.clock.Advance(d)
	return nil
}

func (s *fakeSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// fakeTriggers stands in for the cron scheduler; tests fire callbacks directly.
type fakeTriggers struct {
	mu        sync.Mutex
	next      int
	callbacks map[int]func()
	specs     map[int]string
	failSpec  string
}

func newFakeTriggers() *fakeTriggers {
	return &fakeTriggers{callbacks: make(map[int]func()), specs: make(map[int]string)}
}

func (f *fakeTriggers) Register(spec string, fn func()) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if spec == f.failSpec {
		return 0, errors.New("bad spec")
	}
	f.next++
	f.callbacks[f.next] = fn
	f.specs[f.next] = spec
	return f.next, nil
}

func (f *fakeTriggers) Cancel(handle int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.callbacks, handle)
	delete(f.specs, handle)
}

// Fire runs the callback registered for spec and reports whether one existed.
func (f *fakeTriggers) Fire(spec string) bool {
	f.mu.Lock()
	var fn func()
	for id, s := range f.specs {
		if s == spec {
			fn = f.callbacks[id]
		}
	}
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (f *fakeTriggers) Registered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks)
}
