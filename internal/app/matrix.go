// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/relabs-tech/tilt_matrix/internal/config"
	"github.com/relabs-tech/tilt_matrix/internal/display"
	"github.com/relabs-tech/tilt_matrix/internal/engine"
	"github.com/relabs-tech/tilt_matrix/internal/orientation"
	"github.com/relabs-tech/tilt_matrix/internal/render"
	"github.com/relabs-tech/tilt_matrix/internal/telemetry"
	"github.com/relabs-tech/tilt_matrix/internal/timeutil"
)

// rig is everything RunMatrix starts, so it can be torn down in reverse.
type rig struct {
	source    orientation.Source
	displays  render.Multi
	observers []engine.Observer
	closers   []io.Closer
	terminal  *display.Terminal
	web       *display.Web
}

func (r *rig) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			log.Printf("matrix: close: %v", err)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// RunMatrix builds the sensor, displays and telemetry described by cfg and
// runs the animation until SIGINT/SIGTERM (or q in the terminal display).
func RunMatrix(cfg *config.Config) error {
	ec, err := cfg.Engine()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &rig{}
	defer r.close()

	if err := r.openSource(cfg); err != nil {
		return err
	}
	if err := r.openDisplays(cfg); err != nil {
		return err
	}
	if cfg.MQTTBroker != "" {
		pub, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientID, telemetry.Topics{
			Pose:  cfg.TopicPose,
			Tick:  cfg.TopicTick,
			Frame: cfg.TopicFrame,
		})
		if err != nil {
			return err
		}
		r.observers = append(r.observers, pub)
		r.closers = append(r.closers, closerFunc(func() error { pub.Close(); return nil }))
	}

	eng, err := engine.New(ec, r.source, r.displays, timeutil.RealClock{})
	if err != nil {
		return err
	}
	for _, o := range r.observers {
		eng.AddObserver(o)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.terminal != nil {
		go r.terminal.WatchKeys(cancel)
	}
	if r.web != nil {
		addr := fmt.Sprintf(":%d", cfg.WebServerPort)
		go func() {
			if err := r.web.ListenAndServe(ctx, addr); err != nil {
				log.Printf("matrix: %v", err)
				cancel()
			}
		}()
	}

	log.Printf("matrix: sensor=%s displays=%v", cfg.Sensor, cfg.Displays)
	return eng.Run(ctx)
}

func (r *rig) openSource(cfg *config.Config) error {
	switch cfg.Sensor {
	case "mock":
		log.Println("matrix: using mock orientation source")
		r.source = orientation.NewMockSource(timeutil.RealClock{})

	case "mpu9250":
		src, err := orientation.NewIMUSource(orientation.IMUOptions{
			SPIDevice:  cfg.IMUSPIDevice,
			CSPin:      cfg.IMUCSPin,
			AccelRange: cfg.IMUAccelRange,
			Calibrate:  cfg.IMUCalibrate,
		})
		if err != nil {
			return err
		}
		r.source = src

	case "mqtt":
		clientID := cfg.MQTTClientID
		if clientID == "" {
			clientID = telemetry.DefaultClientID()
		}
		src, err := orientation.NewMQTTSource(cfg.MQTTBroker, clientID+"-source", cfg.TopicSourcePose,
			time.Duration(cfg.SourceStaleMS)*time.Millisecond)
		if err != nil {
			return err
		}
		r.source = src
		r.closers = append(r.closers, closerFunc(func() error { src.Close(); return nil }))

	default:
		return fmt.Errorf("matrix: unknown sensor %q", cfg.Sensor)
	}
	return nil
}

func (r *rig) openDisplays(cfg *config.Config) error {
	w := cfg.GridWidth
	for _, name := range cfg.Displays {
		switch name {
		case "terminal":
			term, err := display.NewTerminal(w)
			if err != nil {
				return err
			}
			// The terminal owns the screen, so logs go to a file.
			logPath := filepath.Join(os.TempDir(), "tilt_matrix.log")
			if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				log.SetOutput(f)
				r.closers = append(r.closers, closerFunc(func() error {
					log.SetOutput(os.Stderr)
					return f.Close()
				}))
			} else {
				log.SetOutput(io.Discard)
			}
			r.terminal = term
			r.displays = append(r.displays, term)
			r.closers = append(r.closers, term)

		case "ws2812":
			led, err := display.NewWS2812(display.WS2812Options{
				SPIDevice:  cfg.WS2812SPIDevice,
				Width:      w,
				Brightness: cfg.WS2812Brightness,
				Serpentine: cfg.WS2812Serpentine,
			})
			if err != nil {
				return err
			}
			r.displays = append(r.displays, led)
			r.closers = append(r.closers, led)

		case "serial":
			s, err := display.NewSerial(cfg.SerialPort, cfg.SerialBaudRate, w)
			if err != nil {
				return err
			}
			r.displays = append(r.displays, s)
			r.closers = append(r.closers, s)

		case "oled":
			o, err := display.NewOLED(cfg.OLEDI2CBus, w)
			if err != nil {
				return err
			}
			r.displays = append(r.displays, o)
			r.observers = append(r.observers, o)
			r.closers = append(r.closers, o)

		case "web":
			r.web = display.NewWeb(w)
			r.displays = append(r.displays, r.web)
			r.observers = append(r.observers, r.web)

		default:
			return fmt.Errorf("matrix: unknown display %q", name)
		}
	}
	if len(r.displays) == 0 {
		return errors.New("matrix: no displays configured")
	}
	return nil
}
