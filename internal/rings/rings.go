// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package rings renders the concentric-square pulse shown while the device
// is held flat.
package rings

import (
	"fmt"
	"image/color"

	"github.com/relabs-tech/tilt_matrix/internal/palette"
)

// Animator keeps one colour per ring, innermost first. Each tick pushes a
// new colour into the centre and the outermost one falls off the edge.
type Animator struct {
	width    int
	maxPulse int
	colors   palette.Palette
	cursor   int
	rings    []color.RGBA
}

// New returns an animator for a width×width grid with ceil(width/2) rings,
// all blank. maxPulse bounds how many flat ticks keep feeding colour.
func New(width, maxPulse int, colors palette.Palette) (*Animator, error) {
	if width <= 0 {
		return nil, fmt.Errorf("rings: invalid width %d", width)
	}
	if colors.Len() == 0 {
		return nil, fmt.Errorf("rings: empty palette")
	}
	a := &Animator{
		width:    width,
		maxPulse: maxPulse,
		colors:   colors,
		rings:    make([]color.RGBA, (width+1)/2),
	}
	for i := range a.rings {
		a.rings[i] = palette.Blank
	}
	return a, nil
}

// Tick advances the pulse by one ring. flat is the current flat run length.
// It returns the colour pushed into the innermost ring.
func (a *Animator) Tick(flat int) color.RGBA {
	next := palette.Blank
	if flat <= a.maxPulse {
		next = a.colors.At(a.cursor)
		a.cursor--
		if a.cursor < 0 {
			a.cursor = a.colors.Len() - 1
		}
	}
	copy(a.rings[1:], a.rings)
	a.rings[0] = next
	return next
}

// Rings returns a copy of the ring colours, innermost first.
func (a *Animator) Rings() []color.RGBA {
	return append([]color.RGBA(nil), a.rings...)
}

// Cursor returns the palette index used by the next coloured ring.
func (a *Animator) Cursor() int { return a.cursor }

// Frame paints every ring as a square border around the grid centre and
// returns the row-major pixels.
func (a *Animator) Frame() []color.RGBA {
	px := make([]color.RGBA, a.width*a.width)
	for y := 0; y < a.width; y++ {
		for x := 0; x < a.width; x++ {
			px[y*a.width+x] = a.rings[a.RingAt(x, y)]
		}
	}
	return px
}

// RingAt returns the ring index covering column x, row y: the Chebyshev
// distance from the centre cell, or the central 2×2 block on even widths.
func (a *Animator) RingAt(x, y int) int {
	return max(axisDistance(x, a.width), axisDistance(y, a.width))
}

func axisDistance(v, width int) int {
	lo, hi := (width-1)/2, width/2
	return max(lo-v, v-hi, 0)
}
