// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package arbiter picks which animation drives the current tick.
package arbiter

import (
	"math"

	"github.com/relabs-tech/tilt_matrix/internal/sampler"
)

// Driver is the animation selected for a tick.
type Driver int

const (
	DriverFlat Driver = iota
	DriverPitch
	DriverRoll
)

func (d Driver) String() string {
	switch d {
	case DriverFlat:
		return "flat"
	case DriverPitch:
		return "pitch"
	case DriverRoll:
		return "roll"
	default:
		return "unknown"
	}
}

// MarshalText encodes the driver by name in JSON reports.
func (d Driver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Decision carries the chosen driver and the tilt magnitudes it was based on.
type Decision struct {
	Driver         Driver
	PitchMagnitude float64
	RollMagnitude  float64
}

// Magnitude folds an angle in [0,360) into a tilt in [0,180].
func Magnitude(angle float64) float64 {
	if angle >= 180 {
		return math.Abs(angle - 360)
	}
	return angle
}

// Decide returns DriverFlat when both tilts are under flatThreshold,
// DriverPitch when pitch tilt is strictly larger, and DriverRoll otherwise.
func Decide(r sampler.Reading, flatThreshold float64) Decision {
	d := Decision{
		PitchMagnitude: Magnitude(r.AvgPitch),
		RollMagnitude:  Magnitude(r.AvgRoll),
	}
	switch {
	case d.PitchMagnitude < flatThreshold && d.RollMagnitude < flatThreshold:
		d.Driver = DriverFlat
	case d.PitchMagnitude > d.RollMagnitude:
		d.Driver = DriverPitch
	default:
		d.Driver = DriverRoll
	}
	return d
}
