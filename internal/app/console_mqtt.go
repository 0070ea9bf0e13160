// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/tilt_matrix/internal/config"
	"github.com/relabs-tech/tilt_matrix/internal/hysteresis"
	"github.com/relabs-tech/tilt_matrix/internal/render"
	"github.com/relabs-tech/tilt_matrix/internal/sampler"
	"github.com/relabs-tech/tilt_matrix/internal/telemetry"
)

// tickLine is the subset of a published tick report the console shows.
type tickLine struct {
	Seq        uint64              `json:"seq"`
	Driver     string              `json:"driver"`
	Direction  string              `json:"direction"`
	Region     int                 `json:"region"`
	Overridden bool                `json:"overridden"`
	Color      string              `json:"color"`
	Counters   hysteresis.Counters `json:"counters"`
	Reading    sampler.Reading     `json:"reading"`
}

func formatTick(t tickLine) string {
	switch t.Driver {
	case "flat":
		return fmt.Sprintf("[TICK %5d] flat   run=%-3d P=%6.2f R=%6.2f Y=%6.2f",
			t.Seq, t.Counters.Flat, t.Reading.AvgPitch, t.Reading.AvgRoll, t.Reading.AvgYaw)
	default:
		c := t.Counters
		run := c.Left + c.Right + c.Toward + c.Away
		blank := ""
		if t.Overridden {
			blank = " (blanked)"
		}
		return fmt.Sprintf("[TICK %5d] %-6s %-6s run=%-3d region=%d%s P=%6.2f R=%6.2f Y=%6.2f",
			t.Seq, t.Driver, t.Direction, run, t.Region, blank,
			t.Reading.AvgPitch, t.Reading.AvgRoll, t.Reading.AvgYaw)
	}
}

// renderFrame draws a frame message as rows of lipgloss colour blocks.
func renderFrame(m render.FrameMessage) (string, error) {
	px, err := m.Decode()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for y := 0; y < m.Width; y++ {
		for x := 0; x < m.Width; x++ {
			b.WriteString(swatch(px[y*m.Width+x]))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func printTick(w io.Writer, payload []byte) error {
	var t tickLine
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, formatTick(t))
	return err
}

func printFrame(w io.Writer, payload []byte) error {
	var m render.FrameMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return err
	}
	s, err := renderFrame(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, s)
	return err
}

// RunConsoleMQTT follows the tick and frame topics published by the matrix
// and prints them until interrupted.
func RunConsoleMQTT(cfg *config.Config, showFrames bool) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER is not set")
	}
	clientID := cfg.MQTTClientID
	if clientID == "" {
		clientID = telemetry.DefaultClientID()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID + "-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	tickToken := client.Subscribe(cfg.TopicTick, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := printTick(os.Stdout, msg.Payload()); err != nil {
			log.Printf("console: tick unmarshal error: %v", err)
		}
	})
	tickToken.Wait()
	if tickToken.Error() != nil {
		return tickToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTick)

	if showFrames {
		frameToken := client.Subscribe(cfg.TopicFrame, 0, func(_ mqtt.Client, msg mqtt.Message) {
			if err := printFrame(os.Stdout, msg.Payload()); err != nil {
				log.Printf("console: frame error: %v", err)
			}
		})
		frameToken.Wait()
		if frameToken.Error() != nil {
			return frameToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicFrame)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
