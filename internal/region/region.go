// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package region maps angles in degrees onto palette indices.
//
// A directional palette of length n has n-2 visible entries split into two
// halves of Half(n) entries each, with the two blank entries in between:
//
//	[0 .. Half-1]   lower visible half (0° side, soft colours last)
//	Half, Half+1    blank dead-zone entries
//	[Half+2 .. n-1] upper visible half (360° side)
package region

import "math"

// Default dead-zone split angles.
const (
	DefaultDeadZoneStart = 90.0
	DefaultDeadZoneEnd   = 270.0
)

// Classifier holds the dead-zone split angles.
// Angles in [DeadZoneStart, 180) map to the first blank,
// angles in [180, DeadZoneEnd) to the second.
type Classifier struct {
	DeadZoneStart float64
	DeadZoneEnd   float64
}

// NewClassifier returns a Classifier with the default 90°/270° split.
func NewClassifier() Classifier {
	return Classifier{DeadZoneStart: DefaultDeadZoneStart, DeadZoneEnd: DefaultDeadZoneEnd}
}

// Half returns the number of entries in one visible half.
func Half(n int) int { return (n - 2) / 2 }

// FirstBlank returns the blank index adjacent to the lower half.
func FirstBlank(n int) int { return Half(n) }

// SecondBlank returns the blank index adjacent to the upper half.
func SecondBlank(n int) int { return Half(n) + 1 }

// IsBlank reports whether r is one of the two dead-zone entries.
func IsBlank(r, n int) bool { return r == FirstBlank(n) || r == SecondBlank(n) }

// InLowerHalf reports whether r moves the trail toward the lower edge.
// The first blank counts as lower so that a blank override keeps the
// direction of the run it ended.
func InLowerHalf(r, n int) bool { return r <= FirstBlank(n) }

// Visible classifies angle for a directional palette of length n (n >= 4).
// Angles exactly on a threshold belong to the higher region.
func (c Classifier) Visible(angle float64, n int) int {
	half := Half(n)
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return FirstBlank(n)
	}
	angle = wrap(angle)
	seg := c.DeadZoneStart / float64(half)

	switch {
	case angle < c.DeadZoneStart:
		r := int(math.Floor(angle / seg))
		return min(r, half-1)
	case angle < 180:
		return FirstBlank(n)
	case angle < c.DeadZoneEnd:
		return SecondBlank(n)
	default:
		steps := int(math.Floor((360 - angle) / seg))
		return max(n-1-steps, SecondBlank(n))
	}
}

// AllVisible splits [0,360) into n equal buckets with no dead zone.
func AllVisible(angle float64, n int) int {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0
	}
	r := int(math.Floor(wrap(angle) / (360 / float64(n))))
	return min(max(r, 0), n-1)
}

func wrap(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}
