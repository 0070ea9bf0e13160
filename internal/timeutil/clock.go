// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package timeutil provides a testable abstraction over the two timed waits
// of the animation loop and a timeout wrapper for blocking device calls.
package timeutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned by Call when the wrapped function did not return
// within its deadline.
var ErrTimeout = errors.New("operation timed out")

// ErrBusy is returned by CallExclusive while an earlier call on the same
// Lane has not returned yet.
var ErrBusy = errors.New("previous call still pending")

// Clock provides an abstraction over time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After waits for the duration to elapse and then sends the current time.
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// After waits for the duration to elapse and then sends the current time.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Sleep blocks for d on clock c, returning early with ctx.Err() if the
// context is cancelled first.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}

// Call runs fn on its own goroutine and waits at most d for it to return.
// A zero or negative d waits without a deadline (but still honours ctx).
// On timeout the goroutine is abandoned; its eventual result is discarded.
func Call[T any](ctx context.Context, d time.Duration, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v: v, err: err}
	}()

	var deadline <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		deadline = timer.C
	}

	var zero T
	select {
	case r := <-done:
		return r.v, r.err
	case <-deadline:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Lane admits one call at a time to a collaborator. A call abandoned by a
// timeout keeps the lane until it really returns.
type Lane struct {
	sem *semaphore.Weighted
}

// NewLane returns an idle lane.
func NewLane() *Lane {
	return &Lane{sem: semaphore.NewWeighted(1)}
}

// Busy reports whether a call is still running on the lane.
func (l *Lane) Busy() bool {
	if !l.sem.TryAcquire(1) {
		return true
	}
	l.sem.Release(1)
	return false
}

// CallExclusive is Call restricted to lane l. While the previous call is
// still running it returns ErrBusy without starting fn.
func CallExclusive[T any](ctx context.Context, l *Lane, d time.Duration, fn func() (T, error)) (T, error) {
	if !l.sem.TryAcquire(1) {
		var zero T
		return zero, ErrBusy
	}
	return Call(ctx, d, func() (T, error) {
		defer l.sem.Release(1)
		return fn()
	})
}

// MockClock is a manually controlled clock for testing. After never blocks:
// it records the requested duration, advances the mock time and returns a
// channel that has already fired.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewMockClock creates a new MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After records d, advances the clock and fires immediately.
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Sleeps returns all recorded wait durations.
func (c *MockClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]time.Duration, len(c.sleeps))
	copy(result, c.sleeps)
	return result
}
