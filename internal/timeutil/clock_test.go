// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package timeutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClockRecordsWaits(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	require.NoError(t, Sleep(context.Background(), c, 20*time.Millisecond))
	require.NoError(t, Sleep(context.Background(), c, 200*time.Millisecond))

	assert.Equal(t, []time.Duration{20 * time.Millisecond, 200 * time.Millisecond}, c.Sleeps())
	assert.Equal(t, start.Add(220*time.Millisecond), c.Now())
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, RealClock{}, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepZeroDuration(t *testing.T) {
	c := NewMockClock(time.Time{})
	require.NoError(t, Sleep(context.Background(), c, 0))
	assert.Empty(t, c.Sleeps())
}

func TestCall(t *testing.T) {
	t.Run("returns value", func(t *testing.T) {
		v, err := Call(context.Background(), time.Second, func() (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("propagates error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Call(context.Background(), time.Second, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("times out", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		_, err := Call(context.Background(), 10*time.Millisecond, func() (int, error) {
			<-release
			return 1, nil
		})
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("no deadline", func(t *testing.T) {
		v, err := Call(context.Background(), 0, func() (string, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})
}

func TestCallExclusive(t *testing.T) {
	lane := NewLane()
	release := make(chan struct{})
	var calls atomic.Int32

	_, err := CallExclusive(context.Background(), lane, 5*time.Millisecond, func() (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, lane.Busy())

	_, err = CallExclusive(context.Background(), lane, time.Second, func() (int, error) {
		calls.Add(1)
		return 2, nil
	})
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.Eventually(t, func() bool { return !lane.Busy() }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	v, err := CallExclusive(context.Background(), lane, time.Second, func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.False(t, lane.Busy())
}
