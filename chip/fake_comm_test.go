package chip

import "errors"

type regKey struct {
	index, register uint8
}

// fakeComm is an in-memory register file
type fakeComm struct {
	regs   map[regKey]uint32
	writes []regKey
	fail   bool
}

var errFakeBus = errors.New("bus fault")

func newFakeComm() *fakeComm {
	return &fakeComm{regs: make(map[regKey]uint32)}
}

func (f *fakeComm) ReadRegister(register uint8, driverIndex uint8) (uint32, error) {
	if f.fail {
		return 0, &RegisterError{Op: "read", Register: register, Err: errFakeBus}
	}
	return f.regs[regKey{driverIndex, register}], nil
}

func (f *fakeComm) WriteRegister(register uint8, value uint32, driverIndex uint8) error {
	if f.fail {
		return &RegisterError{Op: "write", Register: register, Err: errFakeBus}
	}
	k := regKey{driverIndex, register}
	f.regs[k] = value
	f.writes = append(f.writes, k)
	return nil
}

func (f *fakeComm) reg(index, register uint8) uint32 {
	return f.regs[regKey{index, register}]
}
