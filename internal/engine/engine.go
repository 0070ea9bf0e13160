// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package engine runs the sample → arbitrate → animate → render loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/relabs-tech/tilt_matrix/internal/arbiter"
	"github.com/relabs-tech/tilt_matrix/internal/grid"
	"github.com/relabs-tech/tilt_matrix/internal/hysteresis"
	"github.com/relabs-tech/tilt_matrix/internal/monitoring"
	"github.com/relabs-tech/tilt_matrix/internal/orientation"
	"github.com/relabs-tech/tilt_matrix/internal/palette"
	"github.com/relabs-tech/tilt_matrix/internal/region"
	"github.com/relabs-tech/tilt_matrix/internal/render"
	"github.com/relabs-tech/tilt_matrix/internal/rings"
	"github.com/relabs-tech/tilt_matrix/internal/sampler"
	"github.com/relabs-tech/tilt_matrix/internal/timeutil"
)

// Report describes what one tick did.
type Report struct {
	Seq            uint64               `json:"seq"`
	Time           time.Time            `json:"time"`
	Reading        sampler.Reading      `json:"reading"`
	Driver         arbiter.Driver       `json:"driver"`
	PitchMagnitude float64              `json:"pitch_magnitude"`
	RollMagnitude  float64              `json:"roll_magnitude"`
	Region         int                  `json:"region"`
	Direction      hysteresis.Direction `json:"direction"`
	Overridden     bool                 `json:"overridden"`
	Counters       hysteresis.Counters  `json:"counters"`
	Color          string               `json:"color"`
	Width          int                  `json:"width"`
	Frame          []color.RGBA         `json:"-"`
}

// Observer receives a report after every tick that produced a frame.
// Observers run on the loop goroutine and must not block.
type Observer interface {
	OnTick(Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Report)

func (f ObserverFunc) OnTick(r Report) { f(r) }

// Engine owns all animation state. It is not safe for concurrent use.
type Engine struct {
	cfg       Config
	clock     timeutil.Clock
	sampler   *sampler.Sampler
	tracker   *hysteresis.Tracker
	grid      *grid.Buffer
	rings     *rings.Animator
	renderer  *render.Renderer
	observers []Observer
	seq       uint64
}

// New wires an engine to a sensor source and a display.
func New(cfg Config, src orientation.Source, display render.Display, clock timeutil.Clock) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	g, err := grid.New(cfg.Width, palette.Blank)
	if err != nil {
		return nil, err
	}
	r, err := rings.New(cfg.Width, cfg.MaxPulse, cfg.Flat)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:   cfg,
		clock: clock,
		sampler: sampler.New(src, clock, sampler.Config{
			NumSamples:  cfg.NumSamples,
			SampleDelay: cfg.SampleDelay,
			ReadTimeout: cfg.ReadTimeout,
			Classifier:  cfg.Classifier,
			PitchLen:    cfg.Pitch.Len(),
			RollLen:     cfg.Roll.Len(),
			YawLen:      cfg.Yaw.Len(),
		}),
		tracker:  hysteresis.New(cfg.MaxRun),
		grid:     g,
		rings:    r,
		renderer: render.New(display, clock, cfg.FrameDelay, cfg.WriteTimeout),
	}, nil
}

// AddObserver registers o for tick reports.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.cfg }

// Grid exposes the trail buffer for inspection.
func (e *Engine) Grid() *grid.Buffer { return e.grid }

// Rings exposes the pulse animator for inspection.
func (e *Engine) Rings() *rings.Animator { return e.rings }

// Counters returns the current run counters.
func (e *Engine) Counters() hysteresis.Counters { return e.tracker.Counters() }

// Step samples the sensor and advances the animation without rendering.
func (e *Engine) Step(ctx context.Context) (Report, error) {
	reading, err := e.sampler.Sample(ctx)
	if err != nil {
		return Report{}, err
	}

	d := arbiter.Decide(reading, e.cfg.FlatThreshold)
	e.seq++
	rep := Report{
		Seq:            e.seq,
		Time:           e.clock.Now(),
		Reading:        reading,
		Driver:         d.Driver,
		PitchMagnitude: d.PitchMagnitude,
		RollMagnitude:  d.RollMagnitude,
		Width:          e.cfg.Width,
	}

	switch d.Driver {
	case arbiter.DriverFlat:
		c := e.rings.Tick(e.tracker.Flat())
		rep.Color = palette.Hex(c)
		rep.Frame = e.rings.Frame()

	case arbiter.DriverPitch:
		n := e.cfg.Pitch.Len()
		out := e.tracker.Pitch(reading.PitchRegion, n)
		c := e.cfg.Pitch.At(out.Region)
		e.grid.ShiftColumns(c, region.InLowerHalf(out.Region, n))
		rep.apply(out, c)
		rep.Frame = e.grid.Pixels()

	case arbiter.DriverRoll:
		n := e.cfg.Roll.Len()
		out := e.tracker.Roll(reading.RollRegion, n)
		c := e.cfg.Roll.At(out.Region)
		e.grid.ShiftRows(c, region.InLowerHalf(out.Region, n))
		rep.apply(out, c)
		rep.Frame = e.grid.Pixels()
	}
	rep.Counters = e.tracker.Counters()
	return rep, nil
}

func (r *Report) apply(out hysteresis.Outcome, c color.RGBA) {
	r.Region = out.Region
	r.Direction = out.Direction
	r.Overridden = out.Overridden
	r.Color = palette.Hex(c)
}

// Tick runs one full iteration: Step, render, notify observers. Observers
// are notified even when the display write fails.
func (e *Engine) Tick(ctx context.Context) (Report, error) {
	rep, err := e.Step(ctx)
	if err != nil {
		return rep, err
	}
	renderErr := e.renderer.Render(ctx, rep.Frame)
	for _, o := range e.observers {
		o.OnTick(rep)
	}
	return rep, renderErr
}

// Run ticks until ctx is cancelled. Sensor and display faults are logged
// and the tick is skipped; any other error stops the loop.
func (e *Engine) Run(ctx context.Context) error {
	monitoring.Logf("engine: starting %dx%d loop (samples=%d, frame delay=%s)",
		e.cfg.Width, e.cfg.Width, e.cfg.NumSamples, e.cfg.FrameDelay)

	for {
		_, err := e.Tick(ctx)
		if ctx.Err() != nil {
			monitoring.Logf("engine: stopping after %d ticks", e.seq)
			return nil
		}
		if err == nil {
			continue
		}

		var sensorErr *orientation.SensorError
		var displayErr *render.DisplayError
		switch {
		case errors.As(err, &sensorErr):
			monitoring.Logf("engine: sensor read failed, skipping tick: %v", err)
			if err := timeutil.Sleep(ctx, e.clock, e.cfg.FrameDelay); err != nil {
				return nil
			}
		case errors.As(err, &displayErr):
			monitoring.Logf("engine: frame write failed: %v", err)
		default:
			return fmt.Errorf("engine: %w", err)
		}
	}
}
