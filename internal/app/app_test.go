// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/tilt_matrix/internal/arbiter"
	"github.com/relabs-tech/tilt_matrix/internal/config"
	"github.com/relabs-tech/tilt_matrix/internal/engine"
	"github.com/relabs-tech/tilt_matrix/internal/hysteresis"
	"github.com/relabs-tech/tilt_matrix/internal/palette"
	"github.com/relabs-tech/tilt_matrix/internal/render"
	"github.com/relabs-tech/tilt_matrix/internal/sampler"
)

func TestPrintPalettes(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer
	require.NoError(t, PrintPalettes(&out, cfg))

	s := out.String()
	for _, name := range []string{"pitch", "roll", "flat", "yaw"} {
		assert.Contains(t, s, name)
	}
	assert.Contains(t, s, palette.Hex(palette.Named["pink"]))
	assert.Equal(t, 4, strings.Count(s, "dead zone\n"), "two blanks in pitch and roll")
	assert.Contains(t, s, "run ceiling 24")
}

func TestPrintPalettesRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.PitchPalette = "red"
	var ce *palette.ConfigError
	assert.ErrorAs(t, PrintPalettes(&bytes.Buffer{}, cfg), &ce)
}

func TestPrintTickFromPublishedReport(t *testing.T) {
	rep := engine.Report{
		Seq:        12,
		Driver:     arbiter.DriverPitch,
		Direction:  hysteresis.DirLeft,
		Region:     3,
		Overridden: true,
		Counters:   hysteresis.Counters{Left: 25},
		Reading:    sampler.Reading{AvgPitch: 40, AvgRoll: 1.5, AvgYaw: 10},
	}
	payload, err := json.Marshal(rep)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printTick(&out, payload))
	line := out.String()
	assert.Contains(t, line, "[TICK    12] pitch  left")
	assert.Contains(t, line, "run=25")
	assert.Contains(t, line, "(blanked)")
	assert.Contains(t, line, "P= 40.00")

	assert.Equal(t,
		"[TICK     1] flat   run=2   P=  1.00 R=  2.00 Y=  3.00",
		formatTick(tickLine{Seq: 1, Driver: "flat", Counters: hysteresis.Counters{Flat: 2},
			Reading: sampler.Reading{AvgPitch: 1, AvgRoll: 2, AvgYaw: 3}}))

	assert.Error(t, printTick(&out, []byte("{")))
}

func TestPrintFrame(t *testing.T) {
	m := render.EncodeFrame(1, 2, []color.RGBA{{R: 255}, {G: 255}, {B: 255}, {}})
	payload, err := json.Marshal(m)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printFrame(&out, payload))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))

	bad, _ := json.Marshal(render.FrameMessage{Width: 3, Pixels: []string{"#000000"}})
	assert.Error(t, printFrame(&out, bad))
}
