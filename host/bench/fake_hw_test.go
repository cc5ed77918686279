package bench

import (
	"encoding/binary"

	"tinygo.org/x/drivers/tmc2209"

	"tmcstep/core"
)

// fakeSPIBoard emulates TMC SPI chips behind GPIO chip selects. Reads are
// pipelined like the real parts: a datagram returns the data requested by
// the previous one.
type fakeSPIBoard struct {
	selected core.GPIOPin
	regs     map[core.GPIOPin]map[uint8]uint32
	pending  map[core.GPIOPin]uint8
}

func newFakeSPIBoard() *fakeSPIBoard {
	return &fakeSPIBoard{
		selected: core.NoPin,
		regs:     make(map[core.GPIOPin]map[uint8]uint32),
		pending:  make(map[core.GPIOPin]uint8),
	}
}

func (f *fakeSPIBoard) reg(pin core.GPIOPin, register uint8) uint32 {
	return f.regs[pin][register]
}

func (f *fakeSPIBoard) ConfigureBus(cfg core.SPIConfig) (interface{}, error) {
	return cfg.BusID, nil
}

func (f *fakeSPIBoard) Transfer(bus interface{}, tx, rx []byte) error {
	pin := f.selected
	if f.regs[pin] == nil {
		f.regs[pin] = make(map[uint8]uint32)
	}
	rx[0] = 0
	binary.BigEndian.PutUint32(rx[1:], f.regs[pin][f.pending[pin]])

	register := tx[0] & 0x7F
	if tx[0]&0x80 != 0 {
		f.regs[pin][register] = binary.BigEndian.Uint32(tx[1:])
	}
	f.pending[pin] = register
	return nil
}

func (f *fakeSPIBoard) ConfigureOutput(pin core.GPIOPin) error {
	return nil
}

func (f *fakeSPIBoard) SetPin(pin core.GPIOPin, value bool) error {
	if !value {
		f.selected = pin
	} else if f.selected == pin {
		f.selected = core.NoPin
	}
	return nil
}

// fakeUARTLine emulates TMC UART nodes on one line without echo
type fakeUARTLine struct {
	regs map[uint8]map[uint8]uint32
	rx   []byte
}

func newFakeUARTLine() *fakeUARTLine {
	return &fakeUARTLine{regs: make(map[uint8]map[uint8]uint32)}
}

func (f *fakeUARTLine) node(n uint8) map[uint8]uint32 {
	if f.regs[n] == nil {
		f.regs[n] = make(map[uint8]uint32)
	}
	return f.regs[n]
}

func (f *fakeUARTLine) Write(p []byte) (int, error) {
	switch len(p) {
	case 8:
		f.node(p[1])[p[2]&0x7F] = binary.BigEndian.Uint32(p[3:7])
	case 4:
		reply := make([]byte, 8)
		reply[0], reply[1], reply[2] = 0x05, 0xFF, p[2]
		binary.BigEndian.PutUint32(reply[3:7], f.node(p[1])[p[2]])
		reply[7] = tmc2209.CalculateCRC(reply[:7])
		f.rx = append(f.rx, reply...)
	}
	return len(p), nil
}

func (f *fakeUARTLine) Read(p []byte) (int, error) {
	n := copy(p, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}
