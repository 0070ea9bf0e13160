// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sampler smooths a burst of orientation reads into one Reading by
// taking, per axis, the majority region and the mean angle inside it.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/tilt_matrix/internal/orientation"
	"github.com/relabs-tech/tilt_matrix/internal/region"
	"github.com/relabs-tech/tilt_matrix/internal/timeutil"
)

// Reading is the smoothed result of one burst.
type Reading struct {
	PitchRegion int     `json:"pitch_region"`
	AvgPitch    float64 `json:"avg_pitch"`
	RollRegion  int     `json:"roll_region"`
	AvgRoll     float64 `json:"avg_roll"`
	YawRegion   int     `json:"yaw_region"`
	AvgYaw      float64 `json:"avg_yaw"`
}

// Config controls burst size, pacing and palette lengths per axis.
type Config struct {
	NumSamples  int
	SampleDelay time.Duration
	ReadTimeout time.Duration
	Classifier  region.Classifier
	PitchLen    int
	RollLen     int
	YawLen      int
}

// Sampler reads bursts from a Source. Only one Next runs at a time: a read
// that timed out but has not returned makes later reads fail with
// timeutil.ErrBusy.
type Sampler struct {
	src   orientation.Source
	clock timeutil.Clock
	lane  *timeutil.Lane
	cfg   Config
}

// New returns a Sampler. NumSamples below 1 is raised to 1 so every burst
// has at least one read.
func New(src orientation.Source, clock timeutil.Clock, cfg Config) *Sampler {
	if cfg.NumSamples < 1 {
		cfg.NumSamples = 1
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Sampler{src: src, clock: clock, lane: timeutil.NewLane(), cfg: cfg}
}

// bucket accumulates a count and a sum of raw angles per region index.
type bucket struct {
	counts []int
	sums   []float64
}

func newBucket(n int) bucket {
	return bucket{counts: make([]int, n), sums: make([]float64, n)}
}

func (b bucket) add(r int, angle float64) {
	b.counts[r]++
	b.sums[r] += angle
}

// majority returns the most populated region (lowest index on ties) and
// the mean angle of the reads that fell into it.
func (b bucket) majority() (int, float64) {
	best := 0
	for i, c := range b.counts {
		if c > b.counts[best] {
			best = i
		}
	}
	if b.counts[best] == 0 {
		return best, 0
	}
	return best, b.sums[best] / float64(b.counts[best])
}

// Sample runs one burst. Each read is bounded by ReadTimeout and followed by
// SampleDelay. The first failed read aborts the burst with a *orientation.SensorError.
func (s *Sampler) Sample(ctx context.Context) (Reading, error) {
	pitch := newBucket(s.cfg.PitchLen)
	roll := newBucket(s.cfg.RollLen)
	yaw := newBucket(s.cfg.YawLen)

	for i := 0; i < s.cfg.NumSamples; i++ {
		p, err := timeutil.CallExclusive(ctx, s.lane, s.cfg.ReadTimeout, s.src.Next)
		if err != nil {
			if ctx.Err() != nil {
				return Reading{}, ctx.Err()
			}
			var sensorErr *orientation.SensorError
			if !errors.As(err, &sensorErr) {
				err = &orientation.SensorError{Source: "read", Err: err}
			}
			return Reading{}, fmt.Errorf("sample %d/%d: %w", i+1, s.cfg.NumSamples, err)
		}
		p = p.Wrapped()

		pitch.add(s.cfg.Classifier.Visible(p.Pitch, s.cfg.PitchLen), p.Pitch)
		roll.add(s.cfg.Classifier.Visible(p.Roll, s.cfg.RollLen), p.Roll)
		yaw.add(region.AllVisible(p.Yaw, s.cfg.YawLen), p.Yaw)

		if err := timeutil.Sleep(ctx, s.clock, s.cfg.SampleDelay); err != nil {
			return Reading{}, err
		}
	}

	var r Reading
	r.PitchRegion, r.AvgPitch = pitch.majority()
	r.RollRegion, r.AvgRoll = roll.majority()
	r.YawRegion, r.AvgYaw = yaw.majority()
	return r, nil
}
