// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	px := []color.RGBA{
		{R: 0xFF, A: 0xFF}, {G: 0x80, A: 0xFF},
		{B: 0x0A, A: 0xFF}, {A: 0xFF},
	}
	m := EncodeFrame(7, 2, px)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":7,"width":2,"pixels":["#FF0000","#008000","#00000A","#000000"]}`, string(raw))

	back, err := m.Decode()
	require.NoError(t, err)
	assert.Equal(t, px, back)
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	_, err := FrameMessage{Width: 2, Pixels: []string{"#000000"}}.Decode()
	assert.Error(t, err)

	_, err = FrameMessage{Width: 1, Pixels: []string{"nope"}}.Decode()
	assert.Error(t, err)
}
