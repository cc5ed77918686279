package core

// SPIBusID identifies a hardware SPI bus configuration
type SPIBusID uint8

// SPIMode represents SPI clock polarity and phase (0-3). TMC drivers use
// mode 3 (clock idle high, sample on rising edge).
type SPIMode uint8

// SPIConfig holds the configuration for an SPI bus
type SPIConfig struct {
	BusID SPIBusID // Hardware bus identifier
	Mode  SPIMode  // SPI mode (0-3)
	Rate  uint32   // Clock rate in Hz
}

// SPIDriver is the abstract SPI interface that chip transports use.
// Platform-specific implementations handle the hardware.
type SPIDriver interface {
	// ConfigureBus sets up a bus and returns an opaque handle
	ConfigureBus(config SPIConfig) (interface{}, error)

	// Transfer sends txData and fills rxData in the same clock cycles.
	// The busHandle is the value returned by ConfigureBus.
	Transfer(busHandle interface{}, txData []byte, rxData []byte) error
}

var spiDriver SPIDriver

// SetSPIDriver is called by target-specific code to register its SPI driver
func SetSPIDriver(d SPIDriver) {
	spiDriver = d
}

// MustSPI returns the configured SPI driver or panics if missing
func MustSPI() SPIDriver {
	if spiDriver == nil {
		panic("SPI driver not configured")
	}
	return spiDriver
}
