//go:build rp2040

package main

import (
	"errors"
	"machine"

	"tmcstep/core"
)

// RPGPIODriver implements core.GPIODriver for chip selects and enables
type RPGPIODriver struct {
	pins map[core.GPIOPin]machine.Pin
}

func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{pins: make(map[core.GPIOPin]machine.Pin)}
}

// ConfigureOutput configures GPIO0..GPIO29 as an output driven high
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if pin > 29 {
		return errors.New("invalid GPIO pin")
	}
	if _, ok := d.pins[pin]; ok {
		return nil
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.High()
	d.pins[pin] = p
	return nil
}

// SetPin drives a configured output
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, ok := d.pins[pin]
	if !ok {
		return errors.New("pin not configured as output")
	}
	p.Set(value)
	return nil
}
