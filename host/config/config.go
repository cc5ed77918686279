// Package config loads the YAML description of a TMC driver bench: the
// serial line, logging, the status monitor and one entry per driver.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"tmcstep/core"
)

// Chip family names
const (
	ChipTMC2130 = "tmc2130"
	ChipTMC2208 = "tmc2208"
	ChipTMC5160 = "tmc5160"
)

// Transport names
const (
	TransportSPI  = "spi"
	TransportUART = "uart"
)

type Config struct {
	Serial  SerialConfig   `yaml:"serial"`
	Log     LogConfig      `yaml:"log"`
	Monitor MonitorConfig  `yaml:"monitor"`
	Drivers []DriverConfig `yaml:"drivers"`
}

type SerialConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
	Echo          bool   `yaml:"echo"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Color      bool   `yaml:"color"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type MonitorConfig struct {
	IntervalMs    uint32 `yaml:"interval_ms"`
	ReduceCurrent bool   `yaml:"reduce_current"`
	MinCurrentMa  uint16 `yaml:"min_current_ma"`
	ReportStatus  bool   `yaml:"report_status"`
}

// DriverConfig describes one stepper driver
type DriverConfig struct {
	Slot      string `yaml:"slot"`      // X, Y2, E0, ...
	Chip      string `yaml:"chip"`      // tmc2130, tmc2208, tmc5160
	Transport string `yaml:"transport"` // derived from chip when empty

	Node   uint8  `yaml:"node"`    // UART node address
	SPIBus uint8  `yaml:"spi_bus"` // SPI bus number
	CSPin  uint32 `yaml:"cs_pin"`  // chip select GPIO

	Rsense         float32 `yaml:"rsense"`
	CurrentMa      uint16  `yaml:"current_ma"`
	HoldMultiplier float32 `yaml:"hold_multiplier"`
	Microsteps     uint16  `yaml:"microsteps"`
	Interpolate    bool    `yaml:"interpolate"`
	StepsPerMm     uint32  `yaml:"steps_per_mm"`

	HybridThreshold  uint32 `yaml:"hybrid_threshold"` // mm/s, 0 disables
	StallSensitivity *int8  `yaml:"stall_sensitivity"`
	HomingCurrentMa  uint16 `yaml:"homing_current_ma"`

	StealthChop bool `yaml:"stealthchop"`
	Sensorless  bool `yaml:"sensorless"`
	Monitor     bool `yaml:"monitor"`
}

// Defaults
const (
	DefaultBaud           = 115200
	DefaultReadTimeoutMs  = 50
	DefaultIntervalMs     = 500
	DefaultHoldMultiplier = 0.5
	DefaultMicrosteps     = 16
	DefaultStepsPerMm     = 80

	MaxCurrentMa = 3000
)

// Load reads, defaults and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, rejecting unknown keys
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in missing values
func applyDefaults(cfg *Config) {
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = DefaultBaud
	}
	if cfg.Serial.ReadTimeoutMs == 0 {
		cfg.Serial.ReadTimeoutMs = DefaultReadTimeoutMs
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Monitor.IntervalMs == 0 {
		cfg.Monitor.IntervalMs = DefaultIntervalMs
	}

	for i := range cfg.Drivers {
		d := &cfg.Drivers[i]
		d.Slot = strings.ToUpper(d.Slot)
		d.Chip = strings.ToLower(d.Chip)
		if d.Transport == "" {
			d.Transport = TransportFor(d.Chip)
		}
		if d.HoldMultiplier == 0 {
			d.HoldMultiplier = DefaultHoldMultiplier
		}
		if d.Microsteps == 0 {
			d.Microsteps = DefaultMicrosteps
		}
		if d.StepsPerMm == 0 {
			d.StepsPerMm = DefaultStepsPerMm
		}
		if d.Sensorless && d.HomingCurrentMa == 0 {
			d.HomingCurrentMa = d.CurrentMa
		}
	}
}

// TransportFor returns the bus a chip family is wired on
func TransportFor(chip string) string {
	switch chip {
	case ChipTMC2208:
		return TransportUART
	case ChipTMC2130, ChipTMC5160:
		return TransportSPI
	}
	return ""
}

// HasStallGuard reports whether a chip family supports sensorless homing
func HasStallGuard(chip string) bool {
	return chip == ChipTMC2130 || chip == ChipTMC5160
}

var errNoDrivers = errors.New("no drivers configured")

// Validate checks the whole configuration and reports every problem found
func (cfg *Config) Validate() error {
	var err error
	if len(cfg.Drivers) == 0 {
		err = multierr.Append(err, errNoDrivers)
	}
	if cfg.Serial.ReadTimeoutMs < 0 {
		err = multierr.Append(err, fmt.Errorf("serial: read_timeout_ms must be positive"))
	}

	slots := make(map[core.DriverSlot]bool)
	chipSelects := make(map[[2]uint32]string)
	needsSerial := false
	for i := range cfg.Drivers {
		d := &cfg.Drivers[i]
		if derr := d.validate(); derr != nil {
			err = multierr.Append(err, fmt.Errorf("drivers[%d] %s: %w", i, d.Slot, derr))
			continue
		}
		slot, _ := core.ParseSlot(d.Slot)
		if slots[slot] {
			err = multierr.Append(err, fmt.Errorf("drivers[%d]: duplicate slot %s", i, d.Slot))
		}
		slots[slot] = true

		switch d.Transport {
		case TransportSPI:
			key := [2]uint32{uint32(d.SPIBus), d.CSPin}
			if other, ok := chipSelects[key]; ok {
				err = multierr.Append(err, fmt.Errorf("drivers[%d] %s: cs_pin %d on bus %d already used by %s", i, d.Slot, d.CSPin, d.SPIBus, other))
			}
			chipSelects[key] = d.Slot
		case TransportUART:
			needsSerial = true
		}
	}
	if needsSerial && cfg.Serial.Device == "" {
		err = multierr.Append(err, fmt.Errorf("serial: device is required for UART drivers"))
	}
	return err
}

func (d *DriverConfig) validate() error {
	if _, err := core.ParseSlot(d.Slot); err != nil {
		return fmt.Errorf("slot: %w", err)
	}
	want := TransportFor(d.Chip)
	if want == "" {
		return fmt.Errorf("unknown chip %q", d.Chip)
	}
	if d.Transport != want {
		return fmt.Errorf("%s needs transport %s, got %q", d.Chip, want, d.Transport)
	}
	if d.Node > 3 {
		return fmt.Errorf("node %d out of range 0..3", d.Node)
	}
	if d.CurrentMa == 0 || d.CurrentMa > MaxCurrentMa {
		return fmt.Errorf("current_ma %d out of range 1..%d", d.CurrentMa, MaxCurrentMa)
	}
	if d.HomingCurrentMa > MaxCurrentMa {
		return fmt.Errorf("homing_current_ma %d above %d", d.HomingCurrentMa, MaxCurrentMa)
	}
	if d.HoldMultiplier < 0 || d.HoldMultiplier > 1 {
		return fmt.Errorf("hold_multiplier %v out of range 0..1", d.HoldMultiplier)
	}
	if d.Rsense < 0 {
		return fmt.Errorf("rsense must be positive")
	}
	if d.Microsteps > 256 || d.Microsteps&(d.Microsteps-1) != 0 {
		return fmt.Errorf("microsteps %d is not a power of two up to 256", d.Microsteps)
	}
	if d.StallSensitivity != nil && (*d.StallSensitivity < -64 || *d.StallSensitivity > 63) {
		return fmt.Errorf("stall_sensitivity %d out of range -64..63", *d.StallSensitivity)
	}
	if d.Sensorless && !HasStallGuard(d.Chip) {
		return fmt.Errorf("%s has no stallGuard for sensorless homing", d.Chip)
	}
	if d.StallSensitivity != nil && !HasStallGuard(d.Chip) {
		return fmt.Errorf("%s has no stallGuard threshold", d.Chip)
	}
	return nil
}
