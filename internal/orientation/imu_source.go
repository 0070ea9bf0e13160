// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// IMUOptions selects the SPI wiring and range of the MPU9250.
type IMUOptions struct {
	SPIDevice  string // e.g. "/dev/spidev6.0"
	CSPin      string // e.g. "18"
	AccelRange byte   // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	Calibrate  bool
}

type imuSource struct {
	imu *mpu9250.MPU9250
}

// NewIMUSource initializes an MPU9250 over SPI and returns a Source that
// derives pitch/roll from the accelerometer. Yaw stays 0 until the
// magnetometer is fused.
func NewIMUSource(opts IMUOptions) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(opts.CSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", opts.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(opts.SPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", opts.SPIDevice, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := dev.SetAccelRange(opts.AccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", opts.AccelRange, []int{2, 4, 8, 16}[opts.AccelRange&3])

	// Calibration needs the device to lie still; a failure is not fatal.
	if opts.Calibrate {
		if err := dev.Calibrate(); err != nil {
			log.Printf("Warning: IMU calibration failed: %v", err)
		} else {
			log.Printf("IMU calibration complete")
		}
	}

	return &imuSource{imu: dev}, nil
}

// Next reads the accelerometer and converts it to a tilt pose.
func (s *imuSource) Next() (Pose, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return Pose{}, &SensorError{Source: "mpu9250", Err: fmt.Errorf("accel X: %w", err)}
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return Pose{}, &SensorError{Source: "mpu9250", Err: fmt.Errorf("accel Y: %w", err)}
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return Pose{}, &SensorError{Source: "mpu9250", Err: fmt.Errorf("accel Z: %w", err)}
	}

	// Only the ratios matter for tilt, so raw counts are fine.
	return ComputePoseFromAccel(float64(ax), float64(ay), float64(az)), nil
}
