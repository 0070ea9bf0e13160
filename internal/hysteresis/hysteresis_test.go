// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hysteresis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/tilt_matrix/internal/region"
)

const paletteLen = 8

func TestPitchCeilingBlanksOnRunPlusOne(t *testing.T) {
	const maxRun = 24
	tr := New(maxRun)

	for i := 1; i <= maxRun; i++ {
		out := tr.Pitch(1, paletteLen)
		require.False(t, out.Overridden, "tick %d", i)
		require.Equal(t, 1, out.Region)
		require.Equal(t, i, tr.Counters().Left)
	}

	out := tr.Pitch(1, paletteLen)
	assert.True(t, out.Overridden)
	assert.Equal(t, region.FirstBlank(paletteLen), out.Region)

	// Stays blank while the run continues.
	for i := 0; i < 5; i++ {
		assert.Equal(t, region.FirstBlank(paletteLen), tr.Pitch(2, paletteLen).Region)
	}

	// A reversal starts a fresh run with colour.
	out = tr.Pitch(6, paletteLen)
	assert.False(t, out.Overridden)
	assert.Equal(t, 6, out.Region)
	assert.Equal(t, Counters{Right: 1}, tr.Counters())
}

func TestRightRunUsesSecondBlank(t *testing.T) {
	tr := New(2)
	tr.Pitch(7, paletteLen)
	tr.Pitch(5, paletteLen)
	out := tr.Pitch(6, paletteLen)
	assert.True(t, out.Overridden)
	assert.Equal(t, region.SecondBlank(paletteLen), out.Region)
	assert.Equal(t, DirRight, out.Direction)
}

func TestRollSymmetric(t *testing.T) {
	tr := New(2)

	assert.Equal(t, DirToward, tr.Roll(0, paletteLen).Direction)
	tr.Roll(2, paletteLen)
	out := tr.Roll(1, paletteLen)
	assert.True(t, out.Overridden)
	assert.Equal(t, region.FirstBlank(paletteLen), out.Region)
	assert.Equal(t, Counters{Toward: 3}, tr.Counters())

	out = tr.Roll(5, paletteLen)
	assert.Equal(t, DirAway, out.Direction)
	assert.Equal(t, Counters{Away: 1}, tr.Counters())
}

func TestBlankRegionResetsRun(t *testing.T) {
	tr := New(3)
	tr.Pitch(0, paletteLen)
	tr.Pitch(0, paletteLen)

	out := tr.Pitch(region.FirstBlank(paletteLen), paletteLen)
	assert.Equal(t, DirNone, out.Direction)
	assert.False(t, out.Overridden)
	assert.Equal(t, Counters{}, tr.Counters())

	assert.Equal(t, 1, tr.Pitch(0, paletteLen).Run)
}

func TestFamiliesAreExclusive(t *testing.T) {
	tr := New(10)

	tr.Pitch(0, paletteLen)
	tr.Pitch(0, paletteLen)
	assert.Equal(t, Counters{Left: 2}, tr.Counters())

	tr.Roll(7, paletteLen)
	assert.Equal(t, Counters{Away: 1}, tr.Counters())

	assert.Equal(t, 1, tr.Flat())
	assert.Equal(t, 2, tr.Flat())
	assert.Equal(t, Counters{Flat: 2}, tr.Counters())
	assert.Equal(t, FamilyFlat, tr.Family())

	// Pitch left after flat starts a new run even though left was active before.
	assert.Equal(t, 1, tr.Pitch(0, paletteLen).Run)
	assert.Equal(t, Counters{Left: 1}, tr.Counters())
}

func TestSwitchingAxisRestartsRun(t *testing.T) {
	tr := New(1)
	tr.Pitch(0, paletteLen)
	assert.True(t, tr.Pitch(0, paletteLen).Overridden)

	out := tr.Roll(0, paletteLen)
	assert.False(t, out.Overridden)
	assert.Equal(t, 1, out.Run)
}

func TestSmallPalette(t *testing.T) {
	tr := New(1)
	// 4 entries: [left, blank, blank, right]
	assert.Equal(t, DirLeft, tr.Pitch(0, 4).Direction)
	assert.Equal(t, DirNone, tr.Pitch(1, 4).Direction)
	assert.Equal(t, DirNone, tr.Pitch(2, 4).Direction)
	assert.Equal(t, DirRight, tr.Pitch(3, 4).Direction)
	assert.Equal(t, 2, tr.Pitch(3, 4).Region)
}
