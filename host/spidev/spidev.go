// Package spidev provides core.SPIDriver and core.GPIODriver for Linux
// hosts through periph.io, so a single-board computer can talk to SPI TMC
// drivers directly.
package spidev

import (
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"tmcstep/core"
)

// SPI implements core.SPIDriver. Bus N maps to the port named by
// Names[N], or "/dev/spidevN.0" when unset.
type SPI struct {
	Names map[core.SPIBusID]string

	open  func(name string) (spi.PortCloser, error)
	mu    sync.Mutex
	ports []spi.PortCloser
}

// NewSPI returns a driver backed by the periph SPI registry. host.Init
// must have run first.
func NewSPI() *SPI {
	return &SPI{open: spireg.Open}
}

func (s *SPI) portName(id core.SPIBusID) string {
	if name, ok := s.Names[id]; ok {
		return name
	}
	return "/dev/spidev" + strconv.Itoa(int(id)) + ".0"
}

// ConfigureBus implements core.SPIDriver. The handle is an spi.Conn.
func (s *SPI) ConfigureBus(cfg core.SPIConfig) (interface{}, error) {
	if cfg.Mode > 3 {
		return nil, fmt.Errorf("spidev: invalid SPI mode %d", cfg.Mode)
	}
	name := s.portName(cfg.BusID)
	port, err := s.open(name)
	if err != nil {
		return nil, fmt.Errorf("spidev: open %s: %w", name, err)
	}
	conn, err := port.Connect(physic.Frequency(cfg.Rate)*physic.Hertz, spi.Mode(cfg.Mode), 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("spidev: connect %s: %w", name, err)
	}

	s.mu.Lock()
	s.ports = append(s.ports, port)
	s.mu.Unlock()
	return conn, nil
}

// Transfer implements core.SPIDriver
func (s *SPI) Transfer(busHandle interface{}, txData []byte, rxData []byte) error {
	conn, ok := busHandle.(spi.Conn)
	if !ok {
		return fmt.Errorf("spidev: bad bus handle %T", busHandle)
	}
	return conn.Tx(txData, rxData)
}

// Close releases every opened port
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for _, p := range s.ports {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.ports = nil
	return first
}

type outPin interface {
	Out(l gpio.Level) error
}

// GPIO implements core.GPIODriver over the periph GPIO registry. Pin N is
// looked up as "GPIO<N>".
type GPIO struct {
	lookup func(name string) outPin
	mu     sync.Mutex
	pins   map[core.GPIOPin]outPin
}

// NewGPIO returns a driver backed by gpioreg. host.Init must have run
// first.
func NewGPIO() *GPIO {
	return &GPIO{
		lookup: func(name string) outPin {
			if p := gpioreg.ByName(name); p != nil {
				return p
			}
			return nil
		},
		pins: make(map[core.GPIOPin]outPin),
	}
}

// ConfigureOutput implements core.GPIODriver. The pin starts high, the
// idle level of a chip select.
func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	name := "GPIO" + strconv.FormatUint(uint64(pin), 10)
	p := g.lookup(name)
	if p == nil {
		return fmt.Errorf("spidev: no pin %s", name)
	}
	if err := p.Out(gpio.High); err != nil {
		return fmt.Errorf("spidev: %s: %w", name, err)
	}
	g.mu.Lock()
	g.pins[pin] = p
	g.mu.Unlock()
	return nil
}

// SetPin implements core.GPIODriver
func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("spidev: pin %d not configured", pin)
	}
	return p.Out(gpio.Level(value))
}
