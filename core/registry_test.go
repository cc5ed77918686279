package core

import (
	"bytes"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	x := NewAdapter(SlotX, &plainChip{}, DriverOptions{})
	z := NewSensorlessAdapter(SlotZ, newFakeChip(), DriverOptions{})

	if err := r.Register(x); err != nil {
		t.Fatalf("Register X failed: %v", err)
	}
	if err := r.Register(z); err != nil {
		t.Fatalf("Register Z failed: %v", err)
	}
	if err := r.Register(NewAdapter(SlotX, &plainChip{}, DriverOptions{})); err == nil {
		t.Error("Expected error for duplicate slot")
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 drivers, got %d", r.Len())
	}

	d, ok := r.Lookup(SlotZ)
	if !ok {
		t.Fatal("Z not found")
	}
	if _, ok := d.(SensorlessDriver); !ok {
		t.Error("Z should expose sensorless homing")
	}
	d, _ = r.Lookup(SlotX)
	if _, ok := d.(StallDriver); ok {
		t.Error("X has no stall detection")
	}
}

func TestRegistryReportAll(t *testing.T) {
	r := NewRegistry()
	for i, slot := range []DriverSlot{SlotX, SlotY, SlotE1} {
		a := NewAdapter(slot, &plainChip{}, DriverOptions{})
		a.SetCurrentMa(uint16(500 + 100*i))
		r.Register(a)
	}

	var buf bytes.Buffer
	r.ReportAll(&buf)
	want := "X driver current: 500\nY driver current: 600\nE1 driver current: 700\n"
	if buf.String() != want {
		t.Errorf("Got %q, want %q", buf.String(), want)
	}
}
