// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/relabs-tech/tilt_matrix/internal/config"
	"github.com/relabs-tech/tilt_matrix/internal/palette"
	"github.com/relabs-tech/tilt_matrix/internal/region"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CC33"))
	styleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// swatch renders c as a two-cell colour block.
func swatch(c color.RGBA) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(palette.Hex(c))).Render("  ")
}

// PrintPalettes writes every configured palette with colour swatches and
// the index of each entry, marking the blank (dead zone) slots.
func PrintPalettes(w io.Writer, cfg *config.Config) error {
	ec, err := cfg.Engine()
	if err != nil {
		return err
	}
	for _, p := range []struct {
		pal    palette.Palette
		cyclic bool
	}{
		{ec.Pitch, false},
		{ec.Roll, false},
		{ec.Flat, true},
		{ec.Yaw, true},
	} {
		fmt.Fprintln(w, styleTitle.Render(p.pal.Name()))
		for i, c := range p.pal.Colors() {
			note := ""
			if !p.cyclic && region.IsBlank(i, p.pal.Len()) {
				note = styleDim.Render(" dead zone")
			}
			fmt.Fprintf(w, "  %d %s %s%s\n", i, swatch(c), palette.Hex(c), note)
		}
	}
	fmt.Fprintln(w, styleDim.Render(strings.Repeat("-", 24)))
	fmt.Fprintf(w, "dead zone %.0f°/%.0f°, flat below %.0f°, run ceiling %d, pulse ceiling %d\n",
		ec.Classifier.DeadZoneStart, ec.Classifier.DeadZoneEnd, ec.FlatThreshold, ec.MaxRun, ec.MaxPulse)
	return nil
}
