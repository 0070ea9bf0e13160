// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/tilt_matrix/internal/timeutil"
)

type mockSource struct {
	clock timeutil.Clock
	start time.Time
}

// NewMockSource creates a mock orientation source that slowly rocks the
// device through pitch, roll and flat phases. A nil clock uses real time.
func NewMockSource(clock timeutil.Clock) Source {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &mockSource{clock: clock, start: clock.Now()}
}

func (m *mockSource) Next() (Pose, error) {
	elapsed := m.clock.Now().Sub(m.start).Seconds()
	p := Pose{
		Pitch: 40 * math.Sin(elapsed*0.6),
		Roll:  35 * math.Sin(elapsed*0.23+1),
		Yaw:   elapsed * 30,
	}
	return p.Wrapped(), nil
}
