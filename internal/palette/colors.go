// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// Blank is the "no colour" pixel value.
var Blank = rgb(0, 0, 0)

// Named holds the colour table the palettes are built from.
// Keys are lower case; lookups through ParseColor are case-insensitive.
var Named = map[string]color.RGBA{
	"blank": Blank,
	"white": rgb(255, 255, 255),

	"pink":     rgb(100, 0, 0),
	"red":      rgb(220, 20, 60),
	"dark_red": rgb(140, 0, 40),

	"gold":        rgb(255, 215, 0),
	"orange":      rgb(255, 165, 0),
	"dark_orange": rgb(255, 140, 0),

	"lime_green": rgb(51, 205, 50),
	"green":      rgb(0, 170, 0),
	"dark_green": rgb(0, 100, 0),

	"dark_cyan": rgb(0, 140, 140),
	"cyan":      rgb(0, 255, 255),
	"blue":      rgb(0, 191, 255),
	"dark_blue": rgb(0, 0, 140),

	"light_purple": rgb(166, 65, 190),
	"purple":       rgb(130, 0, 130),
	"dark_purple":  rgb(100, 0, 100),

	"violet_red":   rgb(199, 21, 133),
	"orange_red":   rgb(255, 69, 0),
	"tomato":       rgb(255, 99, 71),
	"light_yellow": rgb(255, 255, 102),
	"yellow_green": rgb(195, 215, 40),
	"green_yellow": rgb(160, 215, 40),
	"blue_violet":  rgb(138, 43, 226),
	"indigo":       rgb(75, 0, 130),
	"violet":       rgb(51, 0, 68),
	"yellow":       rgb(255, 118, 33),
}

// ParseColor accepts a colour name from Named or a "#RRGGBB" hex triplet.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 {
			return color.RGBA{}, fmt.Errorf("invalid hex colour %q: want #RRGGBB", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
		}
		return rgb(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	c, ok := Named[strings.ToLower(s)]
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown colour name %q", s)
	}
	return c, nil
}

// Hex formats c as "#RRGGBB".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Default palette definitions, soft (near the dead zone) colours sit next
// to the blanks and hard colours at the ends.
const (
	DefaultPitch = "pink,red,dark_red,blank,blank,dark_purple,purple,light_purple"
	DefaultRoll  = "lime_green,green,dark_green,blank,blank,dark_orange,orange,gold"
	DefaultFlat  = "white,indigo,tomato,cyan,violet_red"
	DefaultYaw   = "dark_cyan,cyan,blue,dark_blue"
)
