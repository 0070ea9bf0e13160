// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package grid implements the fixed-size pixel buffer behind the trail
// animation. Pixels enter at one edge and everything else moves one cell
// toward the opposite edge ("conveyor" shifts).
package grid

import (
	"fmt"
	"image/color"
)

// Buffer is an N×N row-major matrix of colours. It is never resized.
type Buffer struct {
	width int
	pix   []color.RGBA
}

// New returns a width×width buffer filled with fill.
func New(width int, fill color.RGBA) (*Buffer, error) {
	if width <= 0 {
		return nil, fmt.Errorf("grid: invalid width %d", width)
	}
	b := &Buffer{width: width, pix: make([]color.RGBA, width*width)}
	b.Fill(fill)
	return b, nil
}

// Width returns the side length.
func (b *Buffer) Width() int { return b.width }

// At returns the pixel at column x, row y.
func (b *Buffer) At(x, y int) color.RGBA {
	return b.pix[y*b.width+x]
}

// Set writes the pixel at column x, row y.
func (b *Buffer) Set(x, y int, c color.RGBA) {
	b.pix[y*b.width+x] = c
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c color.RGBA) {
	for i := range b.pix {
		b.pix[i] = c
	}
}

// Row returns a copy of row y.
func (b *Buffer) Row(y int) []color.RGBA {
	return append([]color.RGBA(nil), b.row(y)...)
}

func (b *Buffer) row(y int) []color.RGBA {
	return b.pix[y*b.width : (y+1)*b.width]
}

// Pixels returns a row-major copy, top-left origin.
func (b *Buffer) Pixels() []color.RGBA {
	return append([]color.RGBA(nil), b.pix...)
}

// ShiftColumns moves every row by one pixel. With towardLeft the leftmost
// pixel of each row is dropped and c enters on the right; otherwise the
// rightmost pixel is dropped and c enters on the left.
func (b *Buffer) ShiftColumns(c color.RGBA, towardLeft bool) {
	for y := 0; y < b.width; y++ {
		row := b.row(y)
		if towardLeft {
			copy(row, row[1:])
			row[b.width-1] = c
		} else {
			copy(row[1:], row)
			row[0] = c
		}
	}
}

// ShiftRows moves the whole grid by one row. With towardTop the bottom row
// is dropped and a row of c enters at the top; otherwise the top row is
// dropped and a row of c enters at the bottom.
func (b *Buffer) ShiftRows(c color.RGBA, towardTop bool) {
	w := b.width
	var fresh []color.RGBA
	if towardTop {
		copy(b.pix[w:], b.pix[:len(b.pix)-w])
		fresh = b.row(0)
	} else {
		copy(b.pix, b.pix[w:])
		fresh = b.row(w - 1)
	}
	for i := range fresh {
		fresh[i] = c
	}
}
