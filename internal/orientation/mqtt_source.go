// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/tilt_matrix/internal/timeutil"
)

var (
	errNoPose    = errors.New("no pose received yet")
	errStalePose = errors.New("pose is stale")
)

// MQTTSource follows a pose topic (for example the inertial producer's
// "inertial/pose") and returns the most recent pose on each Next call.
type MQTTSource struct {
	client     mqtt.Client
	clock      timeutil.Clock
	staleAfter time.Duration

	mu       sync.RWMutex
	lastPose Pose
	lastAt   time.Time
	havePose bool
}

// NewMQTTSource connects to broker and subscribes to topic. Poses older than
// staleAfter are reported as sensor errors; zero disables the check.
func NewMQTTSource(broker, clientID, topic string, staleAfter time.Duration) (*MQTTSource, error) {
	s := newMQTTSource(timeutil.RealClock{}, staleAfter)

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("pose source: MQTT connect: %w", token.Error())
	}
	log.Printf("pose source: connected to MQTT broker at %s", broker)

	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := s.handle(msg.Payload()); err != nil {
			log.Printf("pose source: unmarshal error: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("pose source: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("pose source: subscribed to %s", topic)

	s.client = client
	return s, nil
}

func newMQTTSource(clock timeutil.Clock, staleAfter time.Duration) *MQTTSource {
	return &MQTTSource{clock: clock, staleAfter: staleAfter}
}

func (s *MQTTSource) handle(payload []byte) error {
	var p Pose
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastPose = p.Wrapped()
	s.lastAt = s.clock.Now()
	s.havePose = true
	s.mu.Unlock()
	return nil
}

// Next returns the latest received pose.
func (s *MQTTSource) Next() (Pose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.havePose {
		return Pose{}, &SensorError{Source: "mqtt", Err: errNoPose}
	}
	if s.staleAfter > 0 {
		if age := s.clock.Now().Sub(s.lastAt); age > s.staleAfter {
			return Pose{}, &SensorError{Source: "mqtt", Err: fmt.Errorf("%w: %s old", errStalePose, age)}
		}
	}
	return s.lastPose, nil
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	if s.client != nil {
		s.client.Disconnect(250)
	}
}
