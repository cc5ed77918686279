//go:build !wasm

package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// NativePort is a TMC UART line on a tarm/serial port
type NativePort struct {
	port *serial.Port
	cfg  Config
}

// Open opens the line described by cfg
func Open(cfg *Config) (Port, error) {
	switch {
	case cfg == nil:
		return nil, fmt.Errorf("config cannot be nil")
	case cfg.Device == "":
		return nil, fmt.Errorf("no serial device configured")
	case cfg.ReadTimeout <= 0:
		return nil, fmt.Errorf("serial port %s: read timeout must be positive", cfg.Device)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &NativePort{port: port, cfg: *cfg}, nil
}

// Read returns (0, nil) when the read timeout expires with no data
func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Flush discards unread input and unsent output
func (p *NativePort) Flush() error {
	return p.port.Flush()
}

// Echo reports whether the line loops TX back to RX
func (p *NativePort) Echo() bool {
	return p.cfg.Echo
}
