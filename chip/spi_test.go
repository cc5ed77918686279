package chip

import (
	"errors"
	"testing"

	"tmcstep/core"
)

type fakeSPI struct {
	sent    [][]byte
	replies [][]byte
	err     error
}

func (f *fakeSPI) ConfigureBus(cfg core.SPIConfig) (interface{}, error) {
	return cfg.BusID, nil
}

func (f *fakeSPI) Transfer(bus interface{}, tx, rx []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, append([]byte(nil), tx...))
	if len(f.replies) > 0 {
		copy(rx, f.replies[0])
		f.replies = f.replies[1:]
	}
	return nil
}

type pinEvent struct {
	pin   core.GPIOPin
	level bool
}

type fakeGPIO struct {
	outputs []core.GPIOPin
	events  []pinEvent
}

func (f *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error {
	f.outputs = append(f.outputs, pin)
	return nil
}

func (f *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error {
	f.events = append(f.events, pinEvent{pin, value})
	return nil
}

func setupSPI(t *testing.T) (*fakeSPI, *fakeGPIO) {
	t.Helper()
	spi, gpio := &fakeSPI{}, &fakeGPIO{}
	core.SetSPIDriver(spi)
	core.SetGPIODriver(gpio)
	t.Cleanup(func() {
		core.SetSPIDriver(nil)
		core.SetGPIODriver(nil)
	})
	return spi, gpio
}

func TestSPICommParksChipSelects(t *testing.T) {
	_, gpio := setupSPI(t)

	if _, err := NewSPIComm(core.SPIConfig{Mode: 3, Rate: 4000000}, 17, core.NoPin, 9); err != nil {
		t.Fatalf("NewSPIComm failed: %v", err)
	}
	if len(gpio.outputs) != 2 || gpio.outputs[0] != 17 || gpio.outputs[1] != 9 {
		t.Errorf("Expected pins 17 and 9 configured, got %v", gpio.outputs)
	}
	for _, ev := range gpio.events {
		if !ev.level {
			t.Errorf("Expected chip selects parked high, pin %d went low", ev.pin)
		}
	}
}

func TestSPIWriteRegister(t *testing.T) {
	spi, gpio := setupSPI(t)
	comm, err := NewSPIComm(core.SPIConfig{}, 5)
	if err != nil {
		t.Fatal(err)
	}
	gpio.events = nil

	if err := comm.WriteRegister(0x10, 0x00061F0C, 0); err != nil {
		t.Fatalf("WriteRegister failed: %v", err)
	}

	want := []byte{0x90, 0x00, 0x06, 0x1F, 0x0C}
	if len(spi.sent) != 1 || string(spi.sent[0]) != string(want) {
		t.Errorf("Expected datagram % X, got % X", want, spi.sent)
	}
	if len(gpio.events) != 2 || gpio.events[0] != (pinEvent{5, false}) || gpio.events[1] != (pinEvent{5, true}) {
		t.Errorf("Expected CS low then high, got %v", gpio.events)
	}
}

func TestSPIReadRegister(t *testing.T) {
	spi, _ := setupSPI(t)
	comm, err := NewSPIComm(core.SPIConfig{}, core.NoPin)
	if err != nil {
		t.Fatal(err)
	}
	spi.replies = [][]byte{
		{0x00, 0, 0, 0, 0},
		{0x09, 0x84, 0x11, 0x00, 0x2A},
	}

	v, err := comm.ReadRegister(0x6F, 0)
	if err != nil {
		t.Fatalf("ReadRegister failed: %v", err)
	}
	if v != 0x8411002A {
		t.Errorf("Expected 0x8411002A, got 0x%08X", v)
	}
	if comm.LastStatus() != 0x09 {
		t.Errorf("Expected status 0x09, got 0x%02X", comm.LastStatus())
	}
	if len(spi.sent) != 2 || spi.sent[0][0] != 0x6F || spi.sent[1][0] != 0x6F {
		t.Errorf("Expected two read datagrams for 0x6F, got % X", spi.sent)
	}
}

func TestSPIErrors(t *testing.T) {
	spi, _ := setupSPI(t)
	comm, err := NewSPIComm(core.SPIConfig{}, core.NoPin)
	if err != nil {
		t.Fatal(err)
	}

	if err := comm.WriteRegister(0x00, 0, 3); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice, got %v", err)
	}

	spi.err = errFakeBus
	_, err = comm.ReadRegister(0x6F, 0)
	var regErr *RegisterError
	if !errors.As(err, &regErr) || regErr.Register != 0x6F || !errors.Is(err, errFakeBus) {
		t.Errorf("Expected read RegisterError wrapping the bus fault, got %v", err)
	}
	if got := err.Error(); got != "tmc read reg 0x6f: bus fault" {
		t.Errorf("Unexpected error text %q", got)
	}
}
