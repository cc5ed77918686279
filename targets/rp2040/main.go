//go:build rp2040

package main

import (
	"machine"
	"time"

	"tmcstep/chip"
	"tmcstep/core"
)

// Board wiring: X/Y/Z TMC2130 on SPI1 with their own chip selects, E0 a
// TMC2208 on UART0. DIAG1 of each TMC2130 goes to the endstop input.
const (
	spiBus  = 1
	spiRate = 4000000

	csX = 9
	csY = 13
	csZ = 17

	stepsPerMmXY = 80
	stepsPerMmZ  = 400
	stepsPerMmE  = 93
)

var console = machine.Serial

func main() {
	core.SetDebugWriter(func(s string) {
		console.Write([]byte(s + "\r\n"))
	})
	core.SetSPIDriver(NewRP2040SPIDriver())
	core.SetGPIODriver(NewRPGPIODriver())

	registry := core.NewRegistry()
	steps := map[core.DriverSlot]uint32{}

	comm, err := chip.NewSPIComm(core.SPIConfig{BusID: spiBus, Mode: 3, Rate: spiRate}, csX, csY, csZ)
	if err != nil {
		halt("spi: " + err.Error())
	}
	for i, slot := range []core.DriverSlot{core.SlotX, core.SlotY, core.SlotZ} {
		c := chip.NewTMC2130(comm, uint8(i), chip.Config{StealthChop: true})
		if err := c.Init(); err != nil {
			core.DebugPrintln("[TMC] " + slot.Label() + " init: " + err.Error())
		}
		d := core.NewSensorlessAdapter(slot, c, core.DriverOptions{Monitor: true, StealthChop: true})
		d.SetCurrentMa(800)
		d.SetHomingCurrentMa(600)
		d.SetStallSensitivity(8)
		steps[slot] = stepsPerMmXY
		if slot == core.SlotZ {
			d.SetStallSensitivity(4)
			steps[slot] = stepsPerMmZ
		}
		d.SetThresholdSpeed(100, steps[slot])
		if err := registry.Register(d); err != nil {
			halt("registry: " + err.Error())
		}
	}

	line, err := newTMCUART(machine.UART0, machine.GPIO0, machine.GPIO1, 115200)
	if err != nil {
		halt("uart: " + err.Error())
	}
	e0 := chip.NewTMC2208(chip.NewUARTComm(line, true), 0, chip.Config{})
	if err := e0.Init(); err != nil {
		core.DebugPrintln("[TMC] E init: " + err.Error())
	}
	e := core.NewAdapter(core.SlotE0, e0, core.DriverOptions{Monitor: true})
	e.SetCurrentMa(650)
	steps[core.SlotE0] = stepsPerMmE
	if err := registry.Register(e); err != nil {
		halt("registry: " + err.Error())
	}

	monitor := core.NewMonitor(registry, console, core.MonitorConfig{
		ReduceCurrent: true,
		MinCurrentMa:  400,
	})
	UpdateSystemTime()
	monitor.Start()

	var buf []byte
	for {
		UpdateSystemTime()
		core.ProcessTimers()
		monitor.Service()

		for console.Buffered() > 0 {
			b, _ := console.ReadByte()
			if b == '\r' || b == '\n' {
				if len(buf) > 0 {
					handleLine(string(buf), registry, steps)
					buf = buf[:0]
				}
				continue
			}
			buf = append(buf, b)
		}
		time.Sleep(time.Millisecond)
	}
}

// handleLine runs the console commands: "report", "otpw", "clearotpw",
// "home <slot>" and "release <slot>".
func handleLine(line string, registry *core.Registry, steps map[core.DriverSlot]uint32) {
	cmd, arg := line, ""
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			cmd, arg = line[:i], line[i+1:]
			break
		}
	}

	switch cmd {
	case "report":
		for _, d := range registry.Drivers() {
			core.ReportCurrent(console, d)
			core.ReportThresholdSpeed(console, d, steps[d.Slot()])
			if sd, ok := d.(core.StallDriver); ok {
				core.ReportStallSensitivity(console, sd)
			}
			if hd, ok := d.(core.SensorlessDriver); ok {
				core.ReportHomingCurrent(console, hd)
			}
		}
	case "otpw":
		for _, d := range registry.Drivers() {
			core.ReportOverTemp(console, d)
		}
	case "clearotpw":
		for _, d := range registry.Drivers() {
			core.ClearOverTemp(console, d)
		}
	case "home", "release":
		slot, err := core.ParseSlot(arg)
		if err != nil {
			console.Write([]byte("bad slot\r\n"))
			return
		}
		d, ok := registry.Lookup(slot)
		hd, sensorless := d.(core.SensorlessDriver)
		if !ok || !sensorless {
			console.Write([]byte("no sensorless driver " + slot.Label() + "\r\n"))
			return
		}
		hd.SetSensorlessHoming(cmd == "home")
	default:
		console.Write([]byte("unknown command\r\n"))
	}
}

func halt(msg string) {
	for {
		console.Write([]byte(msg + "\r\n"))
		time.Sleep(time.Second)
	}
}
