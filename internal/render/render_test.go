// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"context"
	"errors"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/tilt_matrix/internal/timeutil"
)

var red = color.RGBA{R: 0xFF, A: 0xFF}

type slowDisplay struct{ delay time.Duration }

func (s slowDisplay) WriteFrame([]color.RGBA) error {
	time.Sleep(s.delay)
	return nil
}

// stuckDisplay blocks every write until release is closed.
type stuckDisplay struct {
	release chan struct{}
	calls   atomic.Int32
	active  atomic.Int32
	peak    atomic.Int32
}

func (s *stuckDisplay) WriteFrame([]color.RGBA) error {
	s.calls.Add(1)
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-s.release
	return nil
}

func TestRenderWritesAndWaits(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	mem := &Memory{}
	r := New(mem, clock, 200*time.Millisecond, time.Second)

	px := []color.RGBA{red, red, red, red}
	require.NoError(t, r.Render(context.Background(), px))

	px[0] = color.RGBA{}
	require.Len(t, mem.Frames, 1)
	assert.Equal(t, red, mem.Last()[0], "frame must not alias the caller's slice")
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, clock.Sleeps())
}

func TestRenderWrapsDisplayError(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	boom := errors.New("spi write failed")
	r := New(&Memory{Err: boom}, clock, 100*time.Millisecond, time.Second)

	err := r.Render(context.Background(), []color.RGBA{red})
	var de *DisplayError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "memory", de.Display)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, clock.Sleeps(), 1, "frame delay still applies after a failure")
}

func TestRenderTimesOut(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	r := New(slowDisplay{delay: 200 * time.Millisecond}, clock, 0, 10*time.Millisecond)

	err := r.Render(context.Background(), []color.RGBA{red})
	assert.ErrorIs(t, err, timeutil.ErrTimeout)
}

func TestRenderSkipsWhileWritePending(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	disp := &stuckDisplay{release: make(chan struct{})}
	r := New(disp, clock, 0, 5*time.Millisecond)

	err := r.Render(context.Background(), []color.RGBA{red})
	assert.ErrorIs(t, err, timeutil.ErrTimeout)

	for i := 0; i < 4; i++ {
		err := r.Render(context.Background(), []color.RGBA{red})
		var de *DisplayError
		require.ErrorAs(t, err, &de)
		assert.ErrorIs(t, err, timeutil.ErrBusy)
	}
	assert.Equal(t, int32(1), disp.calls.Load(), "no new write while the first is stuck")
	assert.Equal(t, int32(1), disp.peak.Load())

	close(disp.release)
	require.Eventually(t, func() bool { return !r.lane.Busy() }, time.Second, time.Millisecond)
	require.NoError(t, r.Render(context.Background(), []color.RGBA{red}))
	assert.Equal(t, int32(2), disp.calls.Load())
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(&Memory{}, timeutil.RealClock{}, time.Hour, time.Second)
	err := r.Render(ctx, []color.RGBA{red})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMultiFansOut(t *testing.T) {
	a, b := &Memory{}, &Memory{}
	broken := &Memory{Err: errors.New("unplugged")}

	err := Multi{a, broken, b}.WriteFrame([]color.RGBA{red})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unplugged")
	assert.Len(t, a.Frames, 1)
	assert.Len(t, b.Frames, 1, "later displays still receive the frame")

	assert.NoError(t, Multi{a, b}.WriteFrame([]color.RGBA{red}))
	assert.Len(t, a.Frames, 2)
}
