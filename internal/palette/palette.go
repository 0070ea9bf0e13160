// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package palette holds the validated colour tables used by the animations.
package palette

import (
	"fmt"
	"image/color"
	"strings"
)

// ConfigError reports a palette that violates its shape invariant.
type ConfigError struct {
	Palette string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("palette %q: %s", e.Palette, e.Reason)
}

// Palette is an ordered, immutable list of colours for one axis.
type Palette struct {
	name   string
	colors []color.RGBA
}

// New builds a directional palette (pitch or roll). It must have an even
// length of at least 4 with exactly two Blank entries at the middle
// positions; the remaining colours form the two visible halves.
func New(name string, colors []color.RGBA) (Palette, error) {
	n := len(colors)
	if n < 4 {
		return Palette{}, &ConfigError{Palette: name, Reason: fmt.Sprintf("need at least 4 entries, got %d", n)}
	}
	if n%2 != 0 {
		return Palette{}, &ConfigError{Palette: name, Reason: fmt.Sprintf("need an even number of entries, got %d", n)}
	}
	half := (n - 2) / 2
	for i, c := range colors {
		blankSlot := i == half || i == half+1
		switch {
		case blankSlot && c != Blank:
			return Palette{}, &ConfigError{Palette: name, Reason: fmt.Sprintf("entry %d must be blank", i)}
		case !blankSlot && c == Blank:
			return Palette{}, &ConfigError{Palette: name, Reason: fmt.Sprintf("entry %d is blank outside the dead zone", i)}
		}
	}
	return Palette{name: name, colors: append([]color.RGBA(nil), colors...)}, nil
}

// NewCyclic builds a palette with no dead zone (flat pulse, yaw).
func NewCyclic(name string, colors []color.RGBA) (Palette, error) {
	if len(colors) == 0 {
		return Palette{}, &ConfigError{Palette: name, Reason: "need at least 1 entry"}
	}
	return Palette{name: name, colors: append([]color.RGBA(nil), colors...)}, nil
}

// Parse reads a comma separated list of colour names or #RRGGBB values.
func Parse(name, list string, cyclic bool) (Palette, error) {
	var colors []color.RGBA
	for _, field := range strings.Split(list, ",") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		c, err := ParseColor(field)
		if err != nil {
			return Palette{}, &ConfigError{Palette: name, Reason: err.Error()}
		}
		colors = append(colors, c)
	}
	if cyclic {
		return NewCyclic(name, colors)
	}
	return New(name, colors)
}

// MustParse is Parse for the built-in defaults; it panics on error.
func MustParse(name, list string, cyclic bool) Palette {
	p, err := Parse(name, list, cyclic)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the palette name used in error messages.
func (p Palette) Name() string { return p.name }

// Len returns the number of entries.
func (p Palette) Len() int { return len(p.colors) }

// At returns entry i.
func (p Palette) At(i int) color.RGBA { return p.colors[i] }

// Colors returns a copy of the entries.
func (p Palette) Colors() []color.RGBA {
	return append([]color.RGBA(nil), p.colors...)
}

// String renders the palette back into its config form.
func (p Palette) String() string {
	parts := make([]string, len(p.colors))
	for i, c := range p.colors {
		parts[i] = Hex(c)
	}
	return strings.Join(parts, ",")
}
