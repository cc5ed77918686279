package core

import "io"

// driverStorage is the per-driver state the chip itself does not keep.
// Every adapter embeds one.
type driverStorage struct {
	slot      DriverSlot
	currentMa uint16
	otpw      *OverTempFlag // nil unless status monitoring is enabled
}

// Slot returns the driver's identity
func (s *driverStorage) Slot() DriverSlot {
	return s.slot
}

// CurrentMa returns the last commanded run current. It never touches
// hardware.
func (s *driverStorage) CurrentMa() uint16 {
	return s.currentMa
}

// OverTemp returns the prewarning flag, or nil when monitoring is off.
func (s *driverStorage) OverTemp() *OverTempFlag {
	return s.otpw
}

// PrintLabel writes the axis letter and, for a non-zero sub-index, the
// sub-index digit.
func (s *driverStorage) PrintLabel(w io.Writer) {
	if s.slot.index > '0' {
		w.Write([]byte{s.slot.axis, s.slot.index})
		return
	}
	w.Write([]byte{s.slot.axis})
}
