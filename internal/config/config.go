// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/tilt_matrix/internal/engine"
	"github.com/relabs-tech/tilt_matrix/internal/palette"
	"github.com/relabs-tech/tilt_matrix/internal/region"
)

// Config holds all application configuration values.
type Config struct {
	// Grid and animation
	GridWidth          int
	MaxRunMultiplier   int // MaxRun = multiplier × width
	MaxPulseMultiplier int // MaxPulse = multiplier × width
	FlatThreshold      float64
	DeadZoneStart      float64
	DeadZoneEnd        float64

	// Sampling and pacing
	NumSamples     int
	SampleDelayMS  int
	FrameDelayMS   int
	ReadTimeoutMS  int
	WriteTimeoutMS int

	// Palettes: comma lists of colour names or #RRGGBB
	PitchPalette string
	RollPalette  string
	FlatPalette  string
	YawPalette   string

	// Sensor: "mock", "mpu9250" or "mqtt"
	Sensor        string
	IMUSPIDevice  string
	IMUCSPin      string
	IMUAccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUCalibrate  bool
	SourceStaleMS int

	// Displays: any of "terminal", "ws2812", "serial", "oled", "web"
	Displays         []string
	WS2812SPIDevice  string
	WS2812Brightness uint8
	WS2812Serpentine bool
	SerialPort       string
	SerialBaudRate   uint
	OLEDI2CBus       string
	WebServerPort    int

	// MQTT
	MQTTBroker   string // empty disables telemetry
	MQTTClientID string // empty generates one

	// Topics
	TopicPose       string
	TopicTick       string
	TopicFrame      string
	TopicSourcePose string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the built-in configuration: an 8×8 matrix in the
// terminal, fed by the mock sensor.
func Default() *Config {
	return &Config{
		GridWidth:          8,
		MaxRunMultiplier:   3,
		MaxPulseMultiplier: 3,
		FlatThreshold:      10,
		DeadZoneStart:      90,
		DeadZoneEnd:        270,

		NumSamples:     10,
		SampleDelayMS:  20,
		FrameDelayMS:   200,
		ReadTimeoutMS:  500,
		WriteTimeoutMS: 500,

		PitchPalette: palette.DefaultPitch,
		RollPalette:  palette.DefaultRoll,
		FlatPalette:  palette.DefaultFlat,
		YawPalette:   palette.DefaultYaw,

		Sensor:        "mock",
		IMUSPIDevice:  "/dev/spidev6.0",
		IMUCSPin:      "18",
		SourceStaleMS: 1000,

		Displays:         []string{"terminal"},
		WS2812Brightness: 64,
		SerialPort:       "/dev/ttyUSB0",
		SerialBaudRate:   115200,
		WebServerPort:    8080,

		TopicPose:       "tilt/pose",
		TopicTick:       "tilt/tick",
		TopicFrame:      "tilt/frame",
		TopicSourcePose: "inertial/pose",
	}
}

// Load reads a KEY=VALUE configuration file on top of Default().
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines; blank lines and # comments are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseInt(key, value string, min, max int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, min, max, v)
	}
	return v, nil
}

func parseFloat(key, value string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be %g-%g, got %g", key, min, max, v)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Grid and animation
	case "GRID_WIDTH":
		c.GridWidth, err = parseInt(key, value, 1, 64)
	case "MAX_RUN_MULTIPLIER":
		c.MaxRunMultiplier, err = parseInt(key, value, 0, 100)
	case "MAX_PULSE_MULTIPLIER":
		c.MaxPulseMultiplier, err = parseInt(key, value, 0, 100)
	case "FLAT_THRESHOLD":
		c.FlatThreshold, err = parseFloat(key, value, 0, 180)
	case "DEAD_ZONE_START":
		c.DeadZoneStart, err = parseFloat(key, value, 1, 180)
	case "DEAD_ZONE_END":
		c.DeadZoneEnd, err = parseFloat(key, value, 180, 359)

	// Sampling and pacing
	case "NUM_SAMPLES":
		c.NumSamples, err = parseInt(key, value, 1, 1000)
	case "SAMPLE_DELAY_MS":
		c.SampleDelayMS, err = parseInt(key, value, 0, 10000)
	case "FRAME_DELAY_MS":
		c.FrameDelayMS, err = parseInt(key, value, 0, 10000)
	case "READ_TIMEOUT_MS":
		c.ReadTimeoutMS, err = parseInt(key, value, 0, 60000)
	case "WRITE_TIMEOUT_MS":
		c.WriteTimeoutMS, err = parseInt(key, value, 0, 60000)

	// Palettes
	case "PITCH_PALETTE":
		c.PitchPalette = value
	case "ROLL_PALETTE":
		c.RollPalette = value
	case "FLAT_PALETTE":
		c.FlatPalette = value
	case "YAW_PALETTE":
		c.YawPalette = value

	// Sensor
	case "SENSOR":
		switch value {
		case "mock", "mpu9250", "mqtt":
			c.Sensor = value
		default:
			return fmt.Errorf("SENSOR must be mock, mpu9250 or mqtt, got %q", value)
		}
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		n, perr := parseInt(key, value, 0, 3)
		if perr != nil {
			return perr
		}
		c.IMUAccelRange = byte(n)
	case "IMU_CALIBRATE":
		c.IMUCalibrate, err = parseBool(key, value)
	case "SOURCE_STALE_MS":
		c.SourceStaleMS, err = parseInt(key, value, 0, 600000)

	// Displays
	case "DISPLAYS":
		c.Displays = nil
		for _, d := range strings.Split(value, ",") {
			d = strings.TrimSpace(d)
			switch d {
			case "":
				continue
			case "terminal", "ws2812", "serial", "oled", "web":
				c.Displays = append(c.Displays, d)
			default:
				return fmt.Errorf("unknown display %q in DISPLAYS", d)
			}
		}
	case "WS2812_SPI_DEVICE":
		c.WS2812SPIDevice = value
	case "WS2812_BRIGHTNESS":
		n, perr := parseInt(key, value, 0, 255)
		if perr != nil {
			return perr
		}
		c.WS2812Brightness = uint8(n)
	case "WS2812_SERPENTINE":
		c.WS2812Serpentine, err = parseBool(key, value)
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		n, perr := parseInt(key, value, 300, 4000000)
		if perr != nil {
			return perr
		}
		c.SerialBaudRate = uint(n)
	case "OLED_I2C_BUS":
		c.OLEDI2CBus = value
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 1, 65535)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_TICK":
		c.TopicTick = value
	case "TOPIC_FRAME":
		c.TopicFrame = value
	case "TOPIC_SOURCE_POSE":
		c.TopicSourcePose = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks cross-field requirements.
func (c *Config) validate() error {
	if c.Sensor == "mqtt" && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required when SENSOR=mqtt")
	}
	if c.Sensor == "mpu9250" && c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required when SENSOR=mpu9250")
	}
	if len(c.Displays) == 0 {
		return fmt.Errorf("DISPLAYS must name at least one display")
	}
	if c.HasDisplay("serial") && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required for the serial display")
	}
	_, err := c.Engine()
	return err
}

// HasDisplay reports whether name is listed in DISPLAYS.
func (c *Config) HasDisplay(name string) bool {
	for _, d := range c.Displays {
		if d == name {
			return true
		}
	}
	return false
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// Engine builds the animation settings. Palette problems are returned as
// *palette.ConfigError.
func (c *Config) Engine() (engine.Config, error) {
	pitch, err := palette.Parse("pitch", c.PitchPalette, false)
	if err != nil {
		return engine.Config{}, err
	}
	roll, err := palette.Parse("roll", c.RollPalette, false)
	if err != nil {
		return engine.Config{}, err
	}
	flat, err := palette.Parse("flat", c.FlatPalette, true)
	if err != nil {
		return engine.Config{}, err
	}
	yaw, err := palette.Parse("yaw", c.YawPalette, true)
	if err != nil {
		return engine.Config{}, err
	}

	ec := engine.Config{
		Width:         c.GridWidth,
		FlatThreshold: c.FlatThreshold,
		MaxRun:        c.MaxRunMultiplier * c.GridWidth,
		MaxPulse:      c.MaxPulseMultiplier * c.GridWidth,
		Classifier:    region.Classifier{DeadZoneStart: c.DeadZoneStart, DeadZoneEnd: c.DeadZoneEnd},
		Pitch:         pitch,
		Roll:          roll,
		Flat:          flat,
		Yaw:           yaw,
		NumSamples:    c.NumSamples,
		SampleDelay:   ms(c.SampleDelayMS),
		FrameDelay:    ms(c.FrameDelayMS),
		ReadTimeout:   ms(c.ReadTimeoutMS),
		WriteTimeout:  ms(c.WriteTimeoutMS),
	}
	if err := ec.Validate(); err != nil {
		return engine.Config{}, err
	}
	return ec, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
