// Package chip implements the TMC driver families behind core.Chip and
// core.StallChip, together with their SPI and UART register transports.
package chip

import (
	"errors"
	"strconv"

	"tinygo.org/x/drivers/tmc5160"
)

// RegisterComm is the register transport shared with the tinygo TMC
// drivers. The driverIndex selects the chip select line (SPI) or the node
// address (UART).
type RegisterComm = tmc5160.RegisterComm

// Transport errors
var (
	ErrCRC        = errors.New("crc mismatch")
	ErrBadReply   = errors.New("malformed reply")
	ErrShortReply = errors.New("short reply")
	ErrTimeout    = errors.New("no reply")
	ErrNoDevice   = errors.New("no device at index")
)

// RegisterError reports a failed register access
type RegisterError struct {
	Op       string // "read" or "write"
	Register uint8
	Err      error
}

func (e *RegisterError) Error() string {
	return "tmc " + e.Op + " reg 0x" + strconv.FormatUint(uint64(e.Register), 16) + ": " + e.Err.Error()
}

func (e *RegisterError) Unwrap() error {
	return e.Err
}
