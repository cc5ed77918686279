package core

import "errors"

// Axis letters accepted in a DriverSlot
const (
	AxisX = 'X'
	AxisY = 'Y'
	AxisZ = 'Z'
	AxisE = 'E'
)

var errBadSlot = errors.New("invalid driver slot")

// DriverSlot identifies one physical driver: an axis letter plus a
// sub-index digit ('0' for the primary driver of an axis).
type DriverSlot struct {
	axis  byte
	index byte
}

// Label table for the usual printer layout
var (
	SlotX  = DriverSlot{AxisX, '0'}
	SlotY  = DriverSlot{AxisY, '0'}
	SlotZ  = DriverSlot{AxisZ, '0'}
	SlotX2 = DriverSlot{AxisX, '2'}
	SlotY2 = DriverSlot{AxisY, '2'}
	SlotZ2 = DriverSlot{AxisZ, '2'}
	SlotZ3 = DriverSlot{AxisZ, '3'}
	SlotE0 = DriverSlot{AxisE, '0'}
	SlotE1 = DriverSlot{AxisE, '1'}
	SlotE2 = DriverSlot{AxisE, '2'}
	SlotE3 = DriverSlot{AxisE, '3'}
	SlotE4 = DriverSlot{AxisE, '4'}
	SlotE5 = DriverSlot{AxisE, '5'}
)

// NewDriverSlot builds a slot from an axis letter and an index digit.
func NewDriverSlot(axis, index byte) DriverSlot {
	return DriverSlot{axis: axis, index: index}
}

// ParseSlot parses labels such as "X", "z2" or "E1".
func ParseSlot(s string) (DriverSlot, error) {
	if len(s) == 0 || len(s) > 2 {
		return DriverSlot{}, errBadSlot
	}
	axis := s[0]
	if axis >= 'a' && axis <= 'z' {
		axis -= 'a' - 'A'
	}
	switch axis {
	case AxisX, AxisY, AxisZ, AxisE:
	default:
		return DriverSlot{}, errBadSlot
	}
	index := byte('0')
	if len(s) == 2 {
		index = s[1]
		if index < '0' || index > '9' {
			return DriverSlot{}, errBadSlot
		}
	}
	return DriverSlot{axis: axis, index: index}, nil
}

// Axis returns the axis letter
func (s DriverSlot) Axis() byte { return s.axis }

// Index returns the sub-index digit
func (s DriverSlot) Index() byte { return s.index }

// Label returns the printable label; a '0' sub-index is omitted.
func (s DriverSlot) Label() string {
	if s.index > '0' {
		return string([]byte{s.axis, s.index})
	}
	return string([]byte{s.axis})
}
