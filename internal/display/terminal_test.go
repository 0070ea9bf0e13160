// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 20)
	return screen
}

func TestTerminalDrawsDoubleWidthPixels(t *testing.T) {
	screen := simScreen(t)
	term := newTerminal(screen, 2)
	defer term.Close()

	px := []color.RGBA{
		{R: 255, A: 255}, {G: 255, A: 255},
		{B: 255, A: 255}, {A: 255},
	}
	require.NoError(t, term.WriteFrame(px))

	check := func(x, y int, want color.RGBA) {
		t.Helper()
		mainc, _, style, _ := screen.GetContent(x, y)
		assert.Equal(t, '█', mainc)
		fg, _, _ := style.Decompose()
		assert.Equal(t, tcell.NewRGBColor(int32(want.R), int32(want.G), int32(want.B)), fg, "cell (%d,%d)", x, y)
	}
	check(0, 0, px[0])
	check(1, 0, px[0])
	check(2, 0, px[1])
	check(3, 1, px[2])
	check(2, 1, px[3])
}

func TestTerminalRejectsWrongSize(t *testing.T) {
	term := newTerminal(simScreen(t), 3)
	defer term.Close()
	assert.Error(t, term.WriteFrame(make([]color.RGBA, 4)))
}

func TestTerminalWatchKeys(t *testing.T) {
	screen := simScreen(t)
	term := newTerminal(screen, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		term.WatchKeys(cancel)
		close(done)
	}()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("q did not cancel the run")
	}

	term.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WatchKeys did not return after Close")
	}
}
