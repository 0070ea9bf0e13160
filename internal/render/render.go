// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package render writes finished frames to one or more pixel displays and
// paces the animation.
package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/relabs-tech/tilt_matrix/internal/timeutil"
)

// Display accepts a full frame in row-major order, top-left origin.
type Display interface {
	WriteFrame(pixels []color.RGBA) error
}

// DisplayError reports a failed frame write.
type DisplayError struct {
	Display string
	Err     error
}

func (e *DisplayError) Error() string {
	return fmt.Sprintf("display %s: %v", e.Display, e.Err)
}

func (e *DisplayError) Unwrap() error { return e.Err }

// Renderer writes one frame per tick and then holds for the frame delay.
// At most one WriteFrame runs at a time; while a timed-out write is still
// stuck in the display, later frames fail with timeutil.ErrBusy.
type Renderer struct {
	display      Display
	clock        timeutil.Clock
	lane         *timeutil.Lane
	frameDelay   time.Duration
	writeTimeout time.Duration
}

// New returns a renderer for display.
func New(display Display, clock timeutil.Clock, frameDelay, writeTimeout time.Duration) *Renderer {
	return &Renderer{
		display:      display,
		clock:        clock,
		lane:         timeutil.NewLane(),
		frameDelay:   frameDelay,
		writeTimeout: writeTimeout,
	}
}

// Render writes pixels and waits for the frame delay. The delay is honoured
// even when the write fails so a broken display does not spin the loop.
func (r *Renderer) Render(ctx context.Context, pixels []color.RGBA) error {
	frame := append([]color.RGBA(nil), pixels...)
	_, werr := timeutil.CallExclusive(ctx, r.lane, r.writeTimeout, func() (struct{}, error) {
		return struct{}{}, r.display.WriteFrame(frame)
	})
	if werr != nil {
		var de *DisplayError
		if !errors.As(werr, &de) {
			werr = &DisplayError{Display: Name(r.display), Err: werr}
		}
	}
	if err := timeutil.Sleep(ctx, r.clock, r.frameDelay); err != nil {
		return errors.Join(werr, err)
	}
	return werr
}

// Name returns a display's name when it implements fmt.Stringer.
func Name(d Display) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", d)
}

// Multi fans each frame out to several displays. Every display gets the
// frame even when an earlier one fails.
type Multi []Display

func (m Multi) WriteFrame(pixels []color.RGBA) error {
	var errs []error
	for _, d := range m {
		if err := d.WriteFrame(pixels); err != nil {
			errs = append(errs, &DisplayError{Display: Name(d), Err: err})
		}
	}
	return errors.Join(errs...)
}

func (m Multi) String() string { return "multi" }

// Memory keeps the last frame written. Used by previews and tests.
type Memory struct {
	Frames [][]color.RGBA
	Err    error
}

func (m *Memory) WriteFrame(pixels []color.RGBA) error {
	if m.Err != nil {
		return m.Err
	}
	m.Frames = append(m.Frames, append([]color.RGBA(nil), pixels...))
	return nil
}

// Last returns the most recent frame or nil.
func (m *Memory) Last() []color.RGBA {
	if len(m.Frames) == 0 {
		return nil
	}
	return m.Frames[len(m.Frames)-1]
}

func (m *Memory) String() string { return "memory" }
