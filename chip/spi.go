package chip

import (
	"encoding/binary"

	"tmcstep/core"
)

// TMC SPI datagrams are 40 bits: an address byte (bit 7 set for writes)
// followed by 32 data bits, MSB first. A read returns its data on the
// following datagram, so reads take two transfers.
const (
	spiWriteBit     = 0x80
	spiDatagramSize = 5
)

// SPIComm talks to one or more TMC chips sharing an SPI bus. Each chip
// has its own chip select; driverIndex picks the entry in csPins.
type SPIComm struct {
	bus    interface{}
	csPins []core.GPIOPin
	status uint8
}

// NewSPIComm configures the bus through the core SPI HAL and parks every
// chip select high. Use core.NoPin when the bus hardware drives CS.
func NewSPIComm(cfg core.SPIConfig, csPins ...core.GPIOPin) (*SPIComm, error) {
	bus, err := core.MustSPI().ConfigureBus(cfg)
	if err != nil {
		return nil, err
	}
	for _, pin := range csPins {
		if pin == core.NoPin {
			continue
		}
		gpio := core.MustGPIO()
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, err
		}
		if err := gpio.SetPin(pin, true); err != nil {
			return nil, err
		}
	}
	return &SPIComm{bus: bus, csPins: csPins}, nil
}

// LastStatus returns the SPI_STATUS byte of the last read
func (c *SPIComm) LastStatus() uint8 {
	return c.status
}

// WriteRegister implements RegisterComm
func (c *SPIComm) WriteRegister(register uint8, value uint32, driverIndex uint8) error {
	var tx, rx [spiDatagramSize]byte
	tx[0] = register | spiWriteBit
	binary.BigEndian.PutUint32(tx[1:], value)
	if err := c.transfer(driverIndex, tx[:], rx[:]); err != nil {
		return &RegisterError{Op: "write", Register: register, Err: err}
	}
	return nil
}

// ReadRegister implements RegisterComm
func (c *SPIComm) ReadRegister(register uint8, driverIndex uint8) (uint32, error) {
	var tx, rx [spiDatagramSize]byte
	tx[0] = register &^ spiWriteBit
	for i := 0; i < 2; i++ {
		if err := c.transfer(driverIndex, tx[:], rx[:]); err != nil {
			return 0, &RegisterError{Op: "read", Register: register, Err: err}
		}
	}
	c.status = rx[0]
	return binary.BigEndian.Uint32(rx[1:]), nil
}

// transfer runs one datagram with chip select asserted (active low)
func (c *SPIComm) transfer(index uint8, tx, rx []byte) error {
	if int(index) >= len(c.csPins) {
		return ErrNoDevice
	}
	pin := c.csPins[index]
	if pin != core.NoPin {
		if err := core.MustGPIO().SetPin(pin, false); err != nil {
			return err
		}
	}

	err := core.MustSPI().Transfer(c.bus, tx, rx)

	if pin != core.NoPin {
		if csErr := core.MustGPIO().SetPin(pin, true); err == nil {
			err = csErr
		}
	}
	return err
}
