// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image/color"
	"log"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// WS2812Options describes an LED matrix wired as one strip.
type WS2812Options struct {
	SPIDevice  string // "" picks the first SPI port
	Width      int
	Brightness uint8 // 0-255, applied to every channel
	Serpentine bool  // odd rows run right to left
}

// WS2812 drives an N×N WS2812/NeoPixel matrix through the SPI NRZ encoder.
type WS2812 struct {
	port spi.PortCloser
	dev  *nrzled.Dev
	opts WS2812Options
	buf  []byte
}

// NewWS2812 opens the SPI port and configures the strip.
func NewWS2812(opts WS2812Options) (*WS2812, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("ws2812: periph host init: %w", err)
	}
	port, err := spireg.Open(opts.SPIDevice)
	if err != nil {
		return nil, fmt.Errorf("ws2812: open SPI %q: %w", opts.SPIDevice, err)
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: opts.Width * opts.Width,
		Channels:  3,
		Freq:      2500 * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("ws2812: %w", err)
	}
	log.Printf("ws2812: %dx%d matrix on %q (brightness %d, serpentine %v)",
		opts.Width, opts.Width, opts.SPIDevice, opts.Brightness, opts.Serpentine)
	return &WS2812{port: port, dev: dev, opts: opts}, nil
}

func (w *WS2812) WriteFrame(pixels []color.RGBA) error {
	buf, err := encodeStrip(w.buf, pixels, w.opts)
	if err != nil {
		return err
	}
	w.buf = buf
	if _, err := w.dev.Write(buf); err != nil {
		return fmt.Errorf("ws2812: write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (w *WS2812) Close() error {
	if err := w.dev.Halt(); err != nil {
		log.Printf("ws2812: halt: %v", err)
	}
	return w.port.Close()
}

func (w *WS2812) String() string { return "ws2812" }

// encodeStrip converts a row-major frame into strip order RGB bytes,
// reusing dst when it is large enough.
func encodeStrip(dst []byte, pixels []color.RGBA, opts WS2812Options) ([]byte, error) {
	n := opts.Width * opts.Width
	if len(pixels) != n {
		return nil, fmt.Errorf("ws2812: got %d pixels for a %dx%d matrix", len(pixels), opts.Width, opts.Width)
	}
	if cap(dst) < 3*n {
		dst = make([]byte, 3*n)
	}
	dst = dst[:3*n]
	for y := 0; y < opts.Width; y++ {
		for x := 0; x < opts.Width; x++ {
			p := pixels[y*opts.Width+x]
			sx := x
			if opts.Serpentine && y%2 == 1 {
				sx = opts.Width - 1 - x
			}
			i := 3 * (y*opts.Width + sx)
			dst[i] = scale(p.R, opts.Brightness)
			dst[i+1] = scale(p.G, opts.Brightness)
			dst[i+2] = scale(p.B, opts.Brightness)
		}
	}
	return dst, nil
}

func scale(v, brightness uint8) uint8 {
	return uint8(uint16(v) * uint16(brightness) / 255)
}
