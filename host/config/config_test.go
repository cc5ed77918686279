package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

const benchYAML = `
serial:
  device: /dev/ttyUSB0
  echo: true
log:
  level: debug
monitor:
  reduce_current: true
  min_current_ma: 400
drivers:
  - slot: x
    chip: TMC2130
    cs_pin: 17
    current_ma: 800
    steps_per_mm: 100
    hybrid_threshold: 100
    stall_sensitivity: -5
    sensorless: true
    monitor: true
  - slot: Y
    chip: tmc5160
    cs_pin: 22
    rsense: 0.075
    current_ma: 1200
    homing_current_ma: 600
    sensorless: true
  - slot: E0
    chip: tmc2208
    node: 1
    current_ma: 650
    stealthchop: true
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(benchYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Serial.Baud != DefaultBaud || cfg.Serial.ReadTimeoutMs != DefaultReadTimeoutMs || !cfg.Serial.Echo {
		t.Errorf("Unexpected serial config %+v", cfg.Serial)
	}
	if cfg.Monitor.IntervalMs != DefaultIntervalMs || !cfg.Monitor.ReduceCurrent || cfg.Monitor.MinCurrentMa != 400 {
		t.Errorf("Unexpected monitor config %+v", cfg.Monitor)
	}
	if len(cfg.Drivers) != 3 {
		t.Fatalf("Expected 3 drivers, got %d", len(cfg.Drivers))
	}

	x := cfg.Drivers[0]
	if x.Slot != "X" || x.Chip != ChipTMC2130 || x.Transport != TransportSPI {
		t.Errorf("Unexpected X identity %s/%s/%s", x.Slot, x.Chip, x.Transport)
	}
	if x.StallSensitivity == nil || *x.StallSensitivity != -5 {
		t.Errorf("Expected stall sensitivity -5, got %v", x.StallSensitivity)
	}
	if x.HomingCurrentMa != 800 {
		t.Errorf("Expected homing current to default to the run current, got %d", x.HomingCurrentMa)
	}
	if x.HoldMultiplier != DefaultHoldMultiplier || x.Microsteps != DefaultMicrosteps {
		t.Errorf("Expected defaults, got hold %v microsteps %d", x.HoldMultiplier, x.Microsteps)
	}

	if y := cfg.Drivers[1]; y.HomingCurrentMa != 600 || y.Rsense != 0.075 {
		t.Errorf("Unexpected Y config %+v", y)
	}
	if e := cfg.Drivers[2]; e.Transport != TransportUART || e.Node != 1 || !e.StealthChop {
		t.Errorf("Unexpected E0 config %+v", e)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("drivers:\n  - slot: X\n    chip: tmc2130\n    current: 800\n"))
	if err == nil || !strings.Contains(err.Error(), "current") {
		t.Errorf("Expected an unknown field error, got %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	yaml := `
drivers:
  - slot: W
    chip: tmc2130
    current_ma: 800
  - slot: X
    chip: tmc2240
    current_ma: 800
  - slot: Y
    chip: tmc2208
    current_ma: 800
    sensorless: true
  - slot: Z
    chip: tmc2130
    current_ma: 0
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Errorf("Expected 4 errors, got %d: %v", n, err)
	}
	for _, want := range []string{"drivers[0] W", "unknown chip", "no stallGuard", "current_ma 0"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %v", want, err)
		}
	}
}

func TestValidateConflicts(t *testing.T) {
	cfg := &Config{
		Drivers: []DriverConfig{
			{Slot: "X", Chip: ChipTMC2130, Transport: TransportSPI, CSPin: 5, CurrentMa: 800, Microsteps: 16},
			{Slot: "X", Chip: ChipTMC2130, Transport: TransportSPI, CSPin: 5, CurrentMa: 800, Microsteps: 16},
			{Slot: "E0", Chip: ChipTMC2208, Transport: TransportUART, CurrentMa: 500, Microsteps: 16},
		},
	}
	err := cfg.Validate()
	for _, want := range []string{"duplicate slot X", "cs_pin 5 on bus 0 already used by X", "serial: device is required"} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %v", want, err)
		}
	}
}

func TestValidateDriverRanges(t *testing.T) {
	sgt := int8(70)
	tests := []struct {
		name string
		d    DriverConfig
		want string
	}{
		{"microsteps", DriverConfig{Microsteps: 12}, "microsteps 12"},
		{"hold", DriverConfig{HoldMultiplier: 1.5}, "hold_multiplier"},
		{"node", DriverConfig{Node: 4}, "node 4"},
		{"sgt", DriverConfig{StallSensitivity: &sgt}, "stall_sensitivity 70"},
		{"transport", DriverConfig{Transport: TransportUART}, "needs transport spi"},
	}
	for _, tt := range tests {
		d := DriverConfig{Slot: "X", Chip: ChipTMC2130, Transport: TransportSPI, CurrentMa: 800, Microsteps: 16}
		if tt.d.Microsteps != 0 {
			d.Microsteps = tt.d.Microsteps
		}
		if tt.d.Transport != "" {
			d.Transport = tt.d.Transport
		}
		d.HoldMultiplier = tt.d.HoldMultiplier
		d.Node = tt.d.Node
		d.StallSensitivity = tt.d.StallSensitivity

		err := d.validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	if err := os.WriteFile(path, []byte(benchYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("Load failed: %v", err)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestNoDrivers(t *testing.T) {
	_, err := Parse([]byte("serial:\n  device: /dev/ttyUSB0\n"))
	if !errors.Is(err, errNoDrivers) {
		t.Errorf("Expected errNoDrivers, got %v", err)
	}
}
