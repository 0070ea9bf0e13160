// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"fmt"
	"image/color"

	"github.com/relabs-tech/tilt_matrix/internal/palette"
)

// FrameMessage is the JSON form of a frame used by the websocket stream
// and the MQTT frame topic. Pixels are "#RRGGBB", row-major.
type FrameMessage struct {
	Seq    uint64   `json:"seq"`
	Width  int      `json:"width"`
	Pixels []string `json:"pixels"`
}

// EncodeFrame converts pixels of a width×width frame to a FrameMessage.
func EncodeFrame(seq uint64, width int, pixels []color.RGBA) FrameMessage {
	m := FrameMessage{Seq: seq, Width: width, Pixels: make([]string, len(pixels))}
	for i, p := range pixels {
		m.Pixels[i] = palette.Hex(p)
	}
	return m
}

// Decode parses the pixels back into colours.
func (m FrameMessage) Decode() ([]color.RGBA, error) {
	if m.Width <= 0 || len(m.Pixels) != m.Width*m.Width {
		return nil, fmt.Errorf("frame: %d pixels do not fill a %dx%d grid", len(m.Pixels), m.Width, m.Width)
	}
	px := make([]color.RGBA, len(m.Pixels))
	for i, s := range m.Pixels {
		c, err := palette.ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("frame: pixel %d: %w", i, err)
		}
		px[i] = c
	}
	return px, nil
}
