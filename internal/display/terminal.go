// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"context"
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"
)

// Terminal draws the matrix in a terminal, two cells per pixel so the grid
// looks square.
type Terminal struct {
	screen tcell.Screen
	width  int
}

// NewTerminal takes over the controlling terminal.
func NewTerminal(width int) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal: init: %w", err)
	}
	return newTerminal(screen, width), nil
}

func newTerminal(screen tcell.Screen, width int) *Terminal {
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	screen.Clear()
	return &Terminal{screen: screen, width: width}
}

func (t *Terminal) WriteFrame(pixels []color.RGBA) error {
	if len(pixels) != t.width*t.width {
		return fmt.Errorf("terminal: got %d pixels for a %dx%d grid", len(pixels), t.width, t.width)
	}
	for i, p := range pixels {
		x, y := (i%t.width)*2, i/t.width
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(p.R), int32(p.G), int32(p.B)))
		t.screen.SetContent(x, y, '█', nil, style)
		t.screen.SetContent(x+1, y, '█', nil, style)
	}
	t.screen.Show()
	return nil
}

// WatchKeys cancels the run when q, Esc or Ctrl+C is pressed. It returns
// when the screen is finalised.
func (t *Terminal) WatchKeys(cancel context.CancelFunc) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				cancel()
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.screen.Fini()
	return nil
}

func (t *Terminal) String() string { return "terminal" }
