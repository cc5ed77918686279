package core

import (
	"bytes"
	"testing"
)

func TestSlotLabel(t *testing.T) {
	tests := []struct {
		slot DriverSlot
		want string
	}{
		{SlotX, "X"},
		{SlotZ3, "Z3"},
		{SlotE0, "E"},
		{SlotE2, "E2"},
		{NewDriverSlot('Y', '2'), "Y2"},
	}

	for _, tt := range tests {
		if got := tt.slot.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
		a := NewAdapter(tt.slot, &plainChip{}, DriverOptions{})
		var buf bytes.Buffer
		a.PrintLabel(&buf)
		if buf.String() != tt.want {
			t.Errorf("PrintLabel() = %q, want %q", buf.String(), tt.want)
		}
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in   string
		want DriverSlot
		ok   bool
	}{
		{"X", SlotX, true},
		{"x", SlotX, true},
		{"e2", SlotE2, true},
		{"Z3", SlotZ3, true},
		{"", DriverSlot{}, false},
		{"Q", DriverSlot{}, false},
		{"X!", DriverSlot{}, false},
		{"E12", DriverSlot{}, false},
	}

	for _, tt := range tests {
		got, err := ParseSlot(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseSlot(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseSlot(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
