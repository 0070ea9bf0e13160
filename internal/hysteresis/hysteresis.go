// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package hysteresis tracks how long one tilt direction has been held and
// blanks the trail once the run exceeds a ceiling.
//
// Only one direction family can be active at a time, so the state is a
// single tagged value rather than five independent counters.
package hysteresis

import "github.com/relabs-tech/tilt_matrix/internal/region"

// Family is the kind of tick that last ran.
type Family int

const (
	FamilyNone Family = iota
	FamilyFlat
	FamilyPitch
	FamilyRoll
)

// Direction is the active run direction within a family.
type Direction int

const (
	DirNone Direction = iota
	DirLeft
	DirRight
	DirToward
	DirAway
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirToward:
		return "toward"
	case DirAway:
		return "away"
	default:
		return "none"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Counters is the flat view of the run state. At most one field is non-zero.
type Counters struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Toward int `json:"toward"`
	Away   int `json:"away"`
	Flat   int `json:"flat"`
}

// Outcome is the region to render after the ceiling has been applied.
type Outcome struct {
	Region     int
	Direction  Direction
	Run        int
	Overridden bool
}

// Tracker holds the run state. MaxRun is the number of consecutive
// same-direction ticks that still emit colour; tick MaxRun+1 is blanked.
type Tracker struct {
	MaxRun int

	family Family
	dir    Direction
	run    int
}

// New returns a Tracker with the given ceiling.
func New(maxRun int) *Tracker {
	return &Tracker{MaxRun: maxRun}
}

// Flat records a flat tick and returns the flat run length, which drives
// the ring pulse.
func (t *Tracker) Flat() int {
	if t.family != FamilyFlat {
		t.family, t.dir, t.run = FamilyFlat, DirNone, 0
	}
	t.run++
	return t.run
}

// Pitch records a pitch tick for region r of an n-entry palette.
// The lower half runs left, the upper half runs right.
func (t *Tracker) Pitch(r, n int) Outcome {
	return t.directional(FamilyPitch, DirLeft, DirRight, r, n)
}

// Roll records a roll tick for region r of an n-entry palette.
// The lower half runs toward, the upper half runs away.
func (t *Tracker) Roll(r, n int) Outcome {
	return t.directional(FamilyRoll, DirToward, DirAway, r, n)
}

func (t *Tracker) directional(f Family, lower, upper Direction, r, n int) Outcome {
	var dir Direction
	switch {
	case region.IsBlank(r, n):
		dir = DirNone
	case region.InLowerHalf(r, n):
		dir = lower
	default:
		dir = upper
	}

	// Blank regions are a transition, not a run.
	if dir == DirNone {
		t.family, t.dir, t.run = f, DirNone, 0
		return Outcome{Region: r, Direction: DirNone}
	}

	if t.family == f && t.dir == dir {
		t.run++
	} else {
		t.family, t.dir, t.run = f, dir, 1
	}

	out := Outcome{Region: r, Direction: dir, Run: t.run}
	if t.run > t.MaxRun {
		out.Overridden = true
		if dir == lower {
			out.Region = region.FirstBlank(n)
		} else {
			out.Region = region.SecondBlank(n)
		}
	}
	return out
}

// Counters returns the current run state as counters.
func (t *Tracker) Counters() Counters {
	var c Counters
	switch {
	case t.family == FamilyFlat:
		c.Flat = t.run
	case t.dir == DirLeft:
		c.Left = t.run
	case t.dir == DirRight:
		c.Right = t.run
	case t.dir == DirToward:
		c.Toward = t.run
	case t.dir == DirAway:
		c.Away = t.run
	}
	return c
}

// Family returns the family of the last tick.
func (t *Tracker) Family() Family { return t.family }
