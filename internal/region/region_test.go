// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package region

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibleAlwaysInRange(t *testing.T) {
	classifiers := []Classifier{
		NewClassifier(),
		{DeadZoneStart: 100, DeadZoneEnd: 260},
		{DeadZoneStart: 90, DeadZoneEnd: 260},
	}
	for _, c := range classifiers {
		for n := 4; n <= 14; n += 2 {
			for a := 0.0; a < 360; a += 0.25 {
				r := c.Visible(a, n)
				if r < 0 || r >= n {
					t.Fatalf("Visible(%v, %d) with %+v = %d, out of range", a, n, c, r)
				}
			}
		}
	}
}

func TestVisibleKnownValues(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		angle float64
		want  int
	}{
		{0, 0},
		{29.9, 0},
		{30, 1},
		{40, 1},
		{60, 2},
		{89.99, 2},
		{90, 3},
		{179.9, 3},
		{180, 4},
		{269.9, 4},
		{270, 4},
		{270.5, 5},
		{300, 5},
		{330, 6},
		{331, 7},
		{359, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Visible(tt.angle, 8), "angle %v", tt.angle)
	}
}

func TestVisibleDeadZoneBoundaries(t *testing.T) {
	c := NewClassifier()
	assert.True(t, IsBlank(c.Visible(90, 8), 8))
	assert.True(t, IsBlank(c.Visible(270, 8), 8))
	assert.Equal(t, FirstBlank(8), c.Visible(90, 8))
	assert.Equal(t, SecondBlank(8), c.Visible(180, 8))

	wide := Classifier{DeadZoneStart: 100, DeadZoneEnd: 260}
	assert.Equal(t, 2, wide.Visible(99.9, 8))
	assert.Equal(t, FirstBlank(8), wide.Visible(100, 8))
	assert.Equal(t, SecondBlank(8), wide.Visible(259.9, 8))
	assert.Equal(t, SecondBlank(8), wide.Visible(260, 8))
	assert.Equal(t, 7, wide.Visible(359, 8))
}

func TestVisibleWrapsAndGuards(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, c.Visible(350, 8), c.Visible(-10, 8))
	assert.Equal(t, c.Visible(10, 8), c.Visible(370, 8))
	assert.Equal(t, 0, c.Visible(360, 8))
	assert.Equal(t, FirstBlank(8), c.Visible(math.NaN(), 8))
	assert.Equal(t, FirstBlank(8), c.Visible(math.Inf(1), 8))
}

func TestAllVisiblePartitions(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 6, 8, 9} {
		counts := make([]int, n)
		prev := 0
		for a := 0.0; a < 360; a += 0.5 {
			r := AllVisible(a, n)
			if r < prev {
				t.Fatalf("AllVisible not monotonic at %v for n=%d", a, n)
			}
			prev = r
			counts[r]++
		}
		for i, c := range counts {
			assert.Equal(t, 720/n, c, "bucket %d of %d", i, n)
		}
	}
	assert.Equal(t, 3, AllVisible(359.9999999, 4))
	assert.Equal(t, 0, AllVisible(math.NaN(), 4))
}

func TestHalves(t *testing.T) {
	assert.Equal(t, 3, Half(8))
	assert.True(t, InLowerHalf(0, 8))
	assert.True(t, InLowerHalf(3, 8))
	assert.False(t, InLowerHalf(4, 8))
	assert.False(t, InLowerHalf(7, 8))
	assert.False(t, IsBlank(2, 8))
	assert.True(t, IsBlank(4, 8))
}
