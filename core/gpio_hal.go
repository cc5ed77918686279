package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// NoPin marks a device whose chip select is driven by the bus hardware
const NoPin GPIOPin = 0xFFFFFFFF

// GPIODriver is the abstract GPIO interface used for chip selects.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// SetPin drives the pin high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error
}

var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
