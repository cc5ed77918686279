package core

import (
	"errors"
	"io"
)

// Registry holds the configured drivers, looked up by slot
type Registry struct {
	drivers []Driver
	bySlot  map[DriverSlot]Driver
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{bySlot: make(map[DriverSlot]Driver)}
}

// Register adds a driver. Each slot may be registered once.
func (r *Registry) Register(d Driver) error {
	if d == nil {
		return errors.New("driver is nil")
	}
	slot := d.Slot()
	if _, exists := r.bySlot[slot]; exists {
		return errors.New("driver slot " + slot.Label() + " already registered")
	}
	r.bySlot[slot] = d
	r.drivers = append(r.drivers, d)
	return nil
}

// Lookup finds the driver for a slot
func (r *Registry) Lookup(slot DriverSlot) (Driver, bool) {
	d, ok := r.bySlot[slot]
	return d, ok
}

// Drivers returns the drivers in registration order
func (r *Registry) Drivers() []Driver {
	return r.drivers
}

// Len returns the number of registered drivers
func (r *Registry) Len() int {
	return len(r.drivers)
}

// ReportAll prints the current line of every driver
func (r *Registry) ReportAll(w io.Writer) {
	for _, d := range r.drivers {
		ReportCurrent(w, d)
	}
}
