//go:build rp2040

package main

import (
	"errors"
	"machine"
	"sync"

	"tmcstep/core"
)

// SPI bus pin sets. TMC2130 carrier boards are usually wired to SPI1.
type spiBusConfig struct {
	spi  *machine.SPI
	sck  machine.Pin
	mosi machine.Pin
	miso machine.Pin
}

var rp2040SPIBuses = map[core.SPIBusID]spiBusConfig{
	0: {spi: machine.SPI0, sck: machine.GPIO18, mosi: machine.GPIO19, miso: machine.GPIO16},
	1: {spi: machine.SPI1, sck: machine.GPIO10, mosi: machine.GPIO11, miso: machine.GPIO12},
}

// RP2040SPIDriver implements core.SPIDriver using TinyGo's machine.SPI
type RP2040SPIDriver struct {
	mu    sync.Mutex
	buses map[core.SPIBusID]*spiInstance
}

type spiInstance struct {
	spi  *machine.SPI
	mode core.SPIMode
	rate uint32
}

// NewRP2040SPIDriver creates a new RP2040 SPI driver
func NewRP2040SPIDriver() *RP2040SPIDriver {
	return &RP2040SPIDriver{buses: make(map[core.SPIBusID]*spiInstance)}
}

// ConfigureBus implements core.SPIDriver. A bus already configured with
// the same mode and rate is shared.
func (d *RP2040SPIDriver) ConfigureBus(config core.SPIConfig) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if inst, ok := d.buses[config.BusID]; ok && inst.mode == config.Mode && inst.rate == config.Rate {
		return inst, nil
	}
	bus, ok := rp2040SPIBuses[config.BusID]
	if !ok {
		return nil, errors.New("invalid SPI bus ID")
	}
	if config.Mode > 3 {
		return nil, errors.New("invalid SPI mode")
	}

	err := bus.spi.Configure(machine.SPIConfig{
		Frequency: config.Rate,
		SCK:       bus.sck,
		SDO:       bus.mosi,
		SDI:       bus.miso,
		Mode:      uint8(config.Mode),
	})
	if err != nil {
		return nil, err
	}

	inst := &spiInstance{spi: bus.spi, mode: config.Mode, rate: config.Rate}
	d.buses[config.BusID] = inst
	return inst, nil
}

// Transfer implements core.SPIDriver
func (d *RP2040SPIDriver) Transfer(busHandle interface{}, txData []byte, rxData []byte) error {
	inst, ok := busHandle.(*spiInstance)
	if !ok {
		return errors.New("invalid SPI bus handle")
	}
	if len(txData) != len(rxData) {
		return errors.New("tx and rx buffer lengths must match")
	}
	return inst.spi.Tx(txData, rxData)
}
