// Package bench assembles driver adapters from a configuration and drives
// them from a text console and the status monitor.
package bench

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"tmcstep/chip"
	"tmcstep/core"
	"tmcstep/host/config"
	"tmcstep/host/logger"
)

// SPI settings for TMC2130/TMC5160
const (
	spiMode = 3
	spiRate = 4000000
)

// initChip is the boot and fault surface shared by the chip families
type initChip interface {
	Init() error
	Err() error
}

// Bench owns the configured drivers
type Bench struct {
	mu         sync.Mutex
	out        io.Writer
	registry   *core.Registry
	monitor    *core.Monitor
	console    *Console
	stepsPerMm map[core.DriverSlot]uint32
	chips      map[core.DriverSlot]initChip
}

// New builds and boots every configured driver. uart carries the UART
// drivers and may be nil when none are configured. The core SPI and GPIO
// drivers must be installed before New when SPI drivers are configured.
func New(cfg *config.Config, uart io.ReadWriter, out io.Writer) (*Bench, error) {
	b := &Bench{
		out:        out,
		registry:   core.NewRegistry(),
		console:    NewConsole(out),
		stepsPerMm: make(map[core.DriverSlot]uint32),
		chips:      make(map[core.DriverSlot]initChip),
	}

	comms, err := openSPI(cfg.Drivers)
	if err != nil {
		return nil, err
	}
	var uartComm *chip.UARTComm
	if uart != nil {
		uartComm = chip.NewUARTComm(uart, cfg.Serial.Echo)
	}

	for i := range cfg.Drivers {
		dc := &cfg.Drivers[i]
		slot, err := core.ParseSlot(dc.Slot)
		if err != nil {
			return nil, err
		}

		var comm chip.RegisterComm
		var index uint8
		switch dc.Transport {
		case config.TransportSPI:
			bus := comms[dc.SPIBus]
			comm, index = bus.comm, bus.index(dc.CSPin)
		case config.TransportUART:
			if uartComm == nil {
				return nil, fmt.Errorf("%s: no serial line for UART driver", dc.Slot)
			}
			comm, index = uartComm, dc.Node
		}

		d, c := buildDriver(slot, dc, comm, index)
		if err := c.Init(); err != nil {
			// The cache stays authoritative; the chip is retried on the next write
			logger.Warnf("%s %s init failed: %v", dc.Slot, dc.Chip, err)
		}
		applyDriverConfig(d, dc)

		if err := b.registry.Register(d); err != nil {
			return nil, err
		}
		b.stepsPerMm[slot] = dc.StepsPerMm
		b.chips[slot] = c
		logger.Infof("%s: %s on %s, %dmA", dc.Slot, dc.Chip, dc.Transport, dc.CurrentMa)
	}

	b.monitor = core.NewMonitor(b.registry, out, core.MonitorConfig{
		IntervalUS:    cfg.Monitor.IntervalMs * 1000,
		ReduceCurrent: cfg.Monitor.ReduceCurrent,
		MinCurrentMa:  cfg.Monitor.MinCurrentMa,
		OnError: func(d core.Driver, st core.Status) {
			logger.Errorf("%s overtemperature shutdown, cs=%d", d.Slot().Label(), st.CurrentScale)
		},
	})
	b.monitor.SetReportStatus(cfg.Monitor.ReportStatus)

	b.registerCommands()
	return b, nil
}

type spiBus struct {
	comm *chip.SPIComm
	pins []core.GPIOPin
}

func (s *spiBus) index(pin uint32) uint8 {
	for i, p := range s.pins {
		if p == core.GPIOPin(pin) {
			return uint8(i)
		}
	}
	return uint8(len(s.pins))
}

// openSPI opens one SPIComm per bus with the chip selects in config order
func openSPI(drivers []config.DriverConfig) (map[uint8]*spiBus, error) {
	buses := make(map[uint8]*spiBus)
	var order []uint8
	for _, dc := range drivers {
		if dc.Transport != config.TransportSPI {
			continue
		}
		bus, ok := buses[dc.SPIBus]
		if !ok {
			bus = &spiBus{}
			buses[dc.SPIBus] = bus
			order = append(order, dc.SPIBus)
		}
		bus.pins = append(bus.pins, core.GPIOPin(dc.CSPin))
	}

	for _, id := range order {
		bus := buses[id]
		comm, err := chip.NewSPIComm(core.SPIConfig{
			BusID: core.SPIBusID(id),
			Mode:  spiMode,
			Rate:  spiRate,
		}, bus.pins...)
		if err != nil {
			return nil, fmt.Errorf("spi bus %d: %w", id, err)
		}
		bus.comm = comm
	}
	return buses, nil
}

func chipConfig(dc *config.DriverConfig) chip.Config {
	return chip.Config{
		Rsense:         dc.Rsense,
		HoldMultiplier: dc.HoldMultiplier,
		Microsteps:     dc.Microsteps,
		Interpolate:    dc.Interpolate,
		StealthChop:    dc.StealthChop,
	}
}

func buildDriver(slot core.DriverSlot, dc *config.DriverConfig, comm chip.RegisterComm, index uint8) (core.Driver, initChip) {
	opts := core.DriverOptions{Monitor: dc.Monitor, StealthChop: dc.StealthChop}
	switch dc.Chip {
	case config.ChipTMC2130:
		c := chip.NewTMC2130(comm, index, chipConfig(dc))
		return stallDriver(slot, c, opts, dc.Sensorless), c
	case config.ChipTMC5160:
		c := chip.NewTMC5160(comm, index, chipConfig(dc))
		return stallDriver(slot, c, opts, dc.Sensorless), c
	default:
		c := chip.NewTMC2208(comm, index, chipConfig(dc))
		return core.NewAdapter(slot, c, opts), c
	}
}

func stallDriver[C core.StallChip](slot core.DriverSlot, c C, opts core.DriverOptions, sensorless bool) core.Driver {
	if sensorless {
		return core.NewSensorlessAdapter(slot, c, opts)
	}
	return core.NewStallAdapter(slot, c, opts)
}

func applyDriverConfig(d core.Driver, dc *config.DriverConfig) {
	d.SetCurrentMa(dc.CurrentMa)
	if dc.StealthChop && dc.HybridThreshold > 0 {
		d.SetThresholdSpeed(int32(dc.HybridThreshold), dc.StepsPerMm)
	}
	if sd, ok := d.(core.StallDriver); ok && dc.StallSensitivity != nil {
		sd.SetStallSensitivity(*dc.StallSensitivity)
	}
	if hd, ok := d.(core.SensorlessDriver); ok {
		hd.SetHomingCurrentMa(dc.HomingCurrentMa)
	}
}

// Registry returns the configured drivers
func (b *Bench) Registry() *core.Registry {
	return b.registry
}

// Monitor returns the status monitor
func (b *Bench) Monitor() *core.Monitor {
	return b.monitor
}

// Console returns the command console
func (b *Bench) Console() *Console {
	return b.console
}

// Exec runs one console line
func (b *Bench) Exec(line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.console.Exec(line)
}

// Advance moves the core clock forward by d, runs due timers and services
// a due monitor poll.
func (b *Bench) Advance(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	core.SetTime(core.GetTime() + core.TimerFromUS(uint32(d/time.Microsecond)))
	core.ProcessTimers()
	b.monitor.Service()
}

// Run drives the timer scheduler every tick until ctx is done
func (b *Bench) Run(ctx context.Context, tick time.Duration) {
	b.mu.Lock()
	b.monitor.Start()
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.monitor.Stop()
		b.mu.Unlock()
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Advance(tick)
		}
	}
}
