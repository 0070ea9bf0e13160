// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image/color"
	"io"
	"log"

	serial "github.com/jacobsa/go-serial/serial"
)

// Serial streams frames to a USB LED controller (Arduino/ESP running an
// Adalight sketch): "Ada", LED count-1 big endian, checksum, RGB bytes.
type Serial struct {
	w     io.Writer
	c     io.Closer
	width int
	buf   []byte
}

// NewSerial opens port at baud.
func NewSerial(port string, baud uint, width int) (*Serial, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	p, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", port, err)
	}
	log.Printf("serial: LED controller on %s at %d baud", port, baud)
	s := newSerial(p, width)
	s.c = p
	return s, nil
}

func newSerial(w io.Writer, width int) *Serial {
	return &Serial{w: w, width: width}
}

func (s *Serial) WriteFrame(pixels []color.RGBA) error {
	if len(pixels) != s.width*s.width {
		return fmt.Errorf("serial: got %d pixels for a %dx%d grid", len(pixels), s.width, s.width)
	}
	s.buf = adalightFrame(s.buf[:0], pixels)
	if _, err := s.w.Write(s.buf); err != nil {
		return fmt.Errorf("serial: write: %w", err)
	}
	return nil
}

func (s *Serial) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}

func (s *Serial) String() string { return "serial" }

func adalightFrame(dst []byte, pixels []color.RGBA) []byte {
	n := len(pixels) - 1
	hi, lo := byte(n>>8), byte(n)
	dst = append(dst, 'A', 'd', 'a', hi, lo, hi^lo^0x55)
	for _, p := range pixels {
		dst = append(dst, p.R, p.G, p.B)
	}
	return dst
}
