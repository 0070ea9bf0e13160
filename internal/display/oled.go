// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/tilt_matrix/internal/arbiter"
	"github.com/relabs-tech/tilt_matrix/internal/engine"
)

const (
	oledW = 128
	oledH = 64
)

// OLED mirrors the matrix on a 128x64 SSD1306: the frame as lit/unlit
// blocks on the left half and the tick status on the right.
type OLED struct {
	bus   i2c.BusCloser
	dev   *ssd1306.Dev
	width int

	mu     sync.Mutex
	status []string
}

// NewOLED opens the I2C bus (empty name picks the first one) and shows a
// splash screen.
func NewOLED(busName string, width int) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("oled: periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("oled: open I2C bus %q: %w", busName, err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("oled: init display: %w", err)
	}
	log.Printf("oled: display initialized on I2C bus %q", busName)

	o := &OLED{bus: bus, dev: dev, width: width, status: []string{"Tilt Matrix", "Waiting..."}}
	if err := dev.Draw(dev.Bounds(), compose(nil, width, o.status), image.Point{}); err != nil {
		log.Printf("oled: error showing splash: %v", err)
	}
	return o, nil
}

// OnTick updates the status text shown next to the next frame.
func (o *OLED) OnTick(r engine.Report) {
	lines := statusLines(r)
	o.mu.Lock()
	o.status = lines
	o.mu.Unlock()
}

func (o *OLED) WriteFrame(pixels []color.RGBA) error {
	o.mu.Lock()
	status := o.status
	o.mu.Unlock()
	img := compose(pixels, o.width, status)
	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("oled: draw: %w", err)
	}
	return nil
}

func (o *OLED) Close() error {
	if err := o.dev.Halt(); err != nil {
		log.Printf("oled: halt: %v", err)
	}
	return o.bus.Close()
}

func (o *OLED) String() string { return "oled" }

func statusLines(r engine.Report) []string {
	lines := []string{r.Driver.String()}
	c := r.Counters
	if r.Driver == arbiter.DriverFlat {
		lines = append(lines, fmt.Sprintf("run %d", c.Flat))
	} else {
		lines = append(lines, fmt.Sprintf("%s %d", r.Direction, c.Left+c.Right+c.Toward+c.Away))
		if r.Overridden {
			lines = append(lines, "blank")
		} else {
			lines = append(lines, fmt.Sprintf("reg %d", r.Region))
		}
	}
	return append(lines, fmt.Sprintf("P%3.0f R%3.0f", r.Reading.AvgPitch, r.Reading.AvgRoll))
}

// compose renders the 1-bit screen image. A nil frame leaves the matrix
// area dark.
func compose(pixels []color.RGBA, width int, status []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledW, oledH))

	if width > 0 && len(pixels) == width*width {
		cell := oledH / width
		for i, p := range pixels {
			if p.R == 0 && p.G == 0 && p.B == 0 {
				continue
			}
			x0, y0 := (i%width)*cell, (i/width)*cell
			// One-pixel gap between cells keeps the grid readable.
			for y := y0; y < y0+cell-1; y++ {
				for x := x0; x < x0+cell-1; x++ {
					img.SetBit(x, y, image1bit.On)
				}
			}
		}
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range status {
		if i >= 4 {
			break
		}
		drawer.Dot = fixed.P(oledH+2, 13*(i+1))
		drawer.DrawBytes([]byte(line))
	}
	return img
}
