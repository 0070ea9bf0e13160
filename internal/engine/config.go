// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package engine

import (
	"fmt"
	"time"

	"github.com/relabs-tech/tilt_matrix/internal/palette"
	"github.com/relabs-tech/tilt_matrix/internal/region"
)

// Config holds every tunable of the animation loop.
type Config struct {
	Width         int
	FlatThreshold float64
	MaxRun        int
	MaxPulse      int
	Classifier    region.Classifier

	Pitch palette.Palette
	Roll  palette.Palette
	Flat  palette.Palette
	Yaw   palette.Palette

	NumSamples   int
	SampleDelay  time.Duration
	FrameDelay   time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns an 8×8 setup with the stock palettes.
func DefaultConfig() Config {
	const width = 8
	return Config{
		Width:         width,
		FlatThreshold: 10,
		MaxRun:        3 * width,
		MaxPulse:      3 * width,
		Classifier:    region.NewClassifier(),
		Pitch:         palette.MustParse("pitch", palette.DefaultPitch, false),
		Roll:          palette.MustParse("roll", palette.DefaultRoll, false),
		Flat:          palette.MustParse("flat", palette.DefaultFlat, true),
		Yaw:           palette.MustParse("yaw", palette.DefaultYaw, true),
		NumSamples:    10,
		SampleDelay:   20 * time.Millisecond,
		FrameDelay:    200 * time.Millisecond,
		ReadTimeout:   500 * time.Millisecond,
		WriteTimeout:  500 * time.Millisecond,
	}
}

// Validate checks the settings that cannot be repaired at runtime.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("engine: width must be positive, got %d", c.Width)
	}
	if c.MaxRun < 0 || c.MaxPulse < 0 {
		return fmt.Errorf("engine: max run and max pulse must not be negative")
	}
	if c.FlatThreshold < 0 || c.FlatThreshold > 180 {
		return fmt.Errorf("engine: flat threshold %.1f outside [0,180]", c.FlatThreshold)
	}
	if c.Classifier.DeadZoneStart <= 0 || c.Classifier.DeadZoneStart > 180 ||
		c.Classifier.DeadZoneEnd < 180 || c.Classifier.DeadZoneEnd >= 360 {
		return fmt.Errorf("engine: dead zone %.1f/%.1f must satisfy 0 < start <= 180 <= end < 360",
			c.Classifier.DeadZoneStart, c.Classifier.DeadZoneEnd)
	}
	for _, p := range []struct {
		name string
		pal  palette.Palette
		min  int
	}{
		{"pitch", c.Pitch, 4},
		{"roll", c.Roll, 4},
		{"flat", c.Flat, 1},
		{"yaw", c.Yaw, 1},
	} {
		if p.pal.Len() < p.min {
			return &palette.ConfigError{Palette: p.name, Reason: "not configured"}
		}
	}
	return nil
}
