package chip

import (
	"encoding/binary"
	"io"

	"tinygo.org/x/drivers/tmc2209"
)

// TMC single-wire UART datagrams:
//
//	write:   0x05 node reg|0x80 d3 d2 d1 d0 crc
//	read:    0x05 node reg crc
//	reply:   0x05 0xFF reg d3 d2 d1 d0 crc
const (
	uartSync       = 0x05
	uartMasterAddr = 0xFF
	uartWriteBit   = 0x80
	uartWriteSize  = 8
	uartReadSize   = 4
	uartReplySize  = 8

	// consecutive empty reads before a reply is given up
	uartMaxIdleReads = 3
)

// UARTComm talks to TMC UART chips on one serial line. driverIndex is the
// node address (0..3, set by MS1/MS2 on chips that support it).
type UARTComm struct {
	rw   io.ReadWriter
	echo bool
}

// NewUARTComm wraps a serial line. Set echo when TX and RX share one wire
// and every sent byte is read back.
func NewUARTComm(rw io.ReadWriter, echo bool) *UARTComm {
	return &UARTComm{rw: rw, echo: echo}
}

// WriteRegister implements RegisterComm
func (c *UARTComm) WriteRegister(register uint8, value uint32, driverIndex uint8) error {
	var buf [uartWriteSize]byte
	buf[0] = uartSync
	buf[1] = driverIndex
	buf[2] = register | uartWriteBit
	binary.BigEndian.PutUint32(buf[3:7], value)
	buf[7] = tmc2209.CalculateCRC(buf[:7])

	if err := c.send(buf[:]); err != nil {
		return &RegisterError{Op: "write", Register: register, Err: err}
	}
	return nil
}

// ReadRegister implements RegisterComm
func (c *UARTComm) ReadRegister(register uint8, driverIndex uint8) (uint32, error) {
	var req [uartReadSize]byte
	req[0] = uartSync
	req[1] = driverIndex
	req[2] = register &^ uartWriteBit
	req[3] = tmc2209.CalculateCRC(req[:3])

	if err := c.send(req[:]); err != nil {
		return 0, &RegisterError{Op: "read", Register: register, Err: err}
	}

	var reply [uartReplySize]byte
	if err := readFull(c.rw, reply[:]); err != nil {
		return 0, &RegisterError{Op: "read", Register: register, Err: err}
	}
	if reply[0] != uartSync || reply[1] != uartMasterAddr || reply[2] != req[2] {
		return 0, &RegisterError{Op: "read", Register: register, Err: ErrBadReply}
	}
	if tmc2209.CalculateCRC(reply[:7]) != reply[7] {
		return 0, &RegisterError{Op: "read", Register: register, Err: ErrCRC}
	}
	return binary.BigEndian.Uint32(reply[3:7]), nil
}

// send writes a datagram and swallows its echo when the line loops back
func (c *UARTComm) send(b []byte) error {
	if _, err := c.rw.Write(b); err != nil {
		return err
	}
	if !c.echo {
		return nil
	}
	echo := make([]byte, len(b))
	if err := readFull(c.rw, echo); err != nil {
		return err
	}
	for i := range b {
		if echo[i] != b[i] {
			return ErrBadReply
		}
	}
	return nil
}

// readFull is io.ReadFull for serial ports whose timed-out reads return
// (0, nil) instead of an error.
func readFull(r io.Reader, buf []byte) error {
	n, idle := 0, 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if n == len(buf) {
			return nil
		}
		if err == io.EOF {
			return starved(n)
		}
		if err != nil {
			return err
		}
		if m == 0 {
			idle++
			if idle >= uartMaxIdleReads {
				return starved(n)
			}
			continue
		}
		idle = 0
	}
	return nil
}

func starved(n int) error {
	if n == 0 {
		return ErrTimeout
	}
	return ErrShortReply
}
