// Package serial opens the UART lines TMC2208/TMC2209 drivers sit on.
package serial

import (
	"io"
)

// Port is a serial line carrying TMC UART datagrams. It satisfies the
// io.ReadWriter that chip.NewUARTComm expects.
type Port interface {
	io.ReadWriteCloser

	// Flush drops any unread input, such as a stale reply
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate. TMC chips auto-detect it from the sync nibble.
	Baud int

	// Read timeout in milliseconds. Must be non-zero so that a silent
	// node surfaces as a timeout instead of a hang.
	ReadTimeout int

	// Echo is set on single-wire adapters where TX is looped back to RX
	Echo bool
}

// Defaults for TMC UART lines
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 50
)

// DefaultConfig returns a configuration for a TMC UART line
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
	}
}
