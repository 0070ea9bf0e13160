// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
)

// Pose is one orientation sample. Each angle is in degrees in [0,360).
type Pose struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time: the IMU, the mock
// generator, or a pose stream received over MQTT.
type Source interface {
	Next() (Pose, error)
}

// SensorError reports that an orientation read failed.
type SensorError struct {
	Source string
	Err    error
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("sensor %s: %v", e.Source, e.Err)
}

func (e *SensorError) Unwrap() error { return e.Err }

// Wrap360 maps any finite angle into [0,360).
func Wrap360(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// Wrapped returns p with every angle mapped into [0,360).
func (p Pose) Wrapped() Pose {
	return Pose{Pitch: Wrap360(p.Pitch), Roll: Wrap360(p.Roll), Yaw: Wrap360(p.Yaw)}
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is set to 0 (no magnetometer fusion).
//
// Uses simple tilt formulas, then wraps into [0,360):
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  Wrap360(rollRad * 180.0 / math.Pi),
		Pitch: Wrap360(pitchRad * 180.0 / math.Pi),
		Yaw:   0,
	}
}
