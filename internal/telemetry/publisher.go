// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry publishes tick reports, smoothed poses and frames to
// MQTT so other tools (the console, dashboards) can follow the matrix.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/tilt_matrix/internal/engine"
	"github.com/relabs-tech/tilt_matrix/internal/orientation"
	"github.com/relabs-tech/tilt_matrix/internal/render"
)

const publishTimeout = 2 * time.Second

// Topics names the MQTT topics. An empty topic is not published.
type Topics struct {
	Pose  string
	Tick  string
	Frame string
}

type message struct {
	topic   string
	payload []byte
}

// Publisher is an engine observer. OnTick only queues messages; a
// background goroutine does the network I/O.
type Publisher struct {
	topics  Topics
	publish func(topic string, payload []byte) error
	queue   chan message
	done    chan struct{}
	dropped atomic.Uint64
	client  mqtt.Client
}

// DefaultClientID returns a unique client ID for this process.
func DefaultClientID() string {
	return "tilt-matrix-" + uuid.NewString()
}

// Connect dials the broker and starts the publish loop.
func Connect(broker, clientID string, topics Topics) (*Publisher, error) {
	if clientID == "" {
		clientID = DefaultClientID()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: MQTT connect %s: %w", broker, token.Error())
	}
	log.Printf("telemetry: connected to MQTT broker at %s as %s", broker, clientID)

	p := newPublisher(topics, 64, func(topic string, payload []byte) error {
		token := client.Publish(topic, 0, true, payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publish %s: timed out", topic)
		}
		return token.Error()
	})
	p.client = client
	return p, nil
}

func newPublisher(topics Topics, queueSize int, publish func(string, []byte) error) *Publisher {
	p := &Publisher{
		topics:  topics,
		publish: publish,
		queue:   make(chan message, queueSize),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *Publisher) loop() {
	defer close(p.done)
	for m := range p.queue {
		if err := p.publish(m.topic, m.payload); err != nil {
			log.Printf("telemetry: MQTT publish error (%s): %v", m.topic, err)
		}
	}
}

// OnTick queues the pose, report and frame of one tick.
func (p *Publisher) OnTick(r engine.Report) {
	pose := orientation.Pose{Pitch: r.Reading.AvgPitch, Roll: r.Reading.AvgRoll, Yaw: r.Reading.AvgYaw}
	p.enqueue(p.topics.Pose, pose)
	p.enqueue(p.topics.Tick, r)
	p.enqueue(p.topics.Frame, render.EncodeFrame(r.Seq, r.Width, r.Frame))
}

func (p *Publisher) enqueue(topic string, v interface{}) {
	if topic == "" {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("telemetry: json marshal error (%s): %v", topic, err)
		return
	}
	select {
	case p.queue <- message{topic: topic, payload: payload}:
	default:
		if n := p.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Printf("telemetry: publish queue full, %d messages dropped", n)
		}
	}
}

// Dropped returns how many messages were discarded because the queue was
// full.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Close flushes queued messages and disconnects. OnTick must not be called
// after Close.
func (p *Publisher) Close() {
	close(p.queue)
	<-p.done
	if p.client != nil {
		p.client.Disconnect(250)
	}
}
