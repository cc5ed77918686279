package bench

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tmcstep/core"
)

var (
	errNoSlot        = errors.New("no driver in slot")
	errNotStall      = errors.New("driver has no stallGuard")
	errNotSensorless = errors.New("driver is not configured for sensorless homing")
)

func (b *Bench) registerCommands() {
	for _, cmd := range []*Command{
		{"current", "[SLOT [mA]]", "report or set the run current", b.cmdCurrent},
		{"thrs", "[SLOT [mm/s]]", "report or set the hybrid threshold", b.cmdThreshold},
		{"sgt", "[SLOT [-64..63]]", "report or set the stall sensitivity", b.cmdStall},
		{"homecur", "[SLOT [mA]]", "report or set the homing current", b.cmdHomingCurrent},
		{"homing", "SLOT on|off", "switch the sensorless homing profile", b.cmdHoming},
		{"otpw", "[SLOT]", "report the overtemperature prewarn flag", b.cmdOverTemp},
		{"clearotpw", "[SLOT]", "clear the overtemperature prewarn flag", b.cmdClearOverTemp},
		{"report", "", "report every setting of every driver", b.cmdReport},
		{"poll", "", "poll driver status once", b.cmdPoll},
		{"help", "", "list commands", b.cmdHelp},
	} {
		b.console.Register(cmd)
	}
}

// targets resolves an optional SLOT argument to the drivers it names
func (b *Bench) targets(args []string) ([]core.Driver, error) {
	if len(args) == 0 {
		return b.registry.Drivers(), nil
	}
	slot, err := core.ParseSlot(args[0])
	if err != nil {
		return nil, err
	}
	d, ok := b.registry.Lookup(slot)
	if !ok {
		return nil, fmt.Errorf("%w %s", errNoSlot, slot.Label())
	}
	return []core.Driver{d}, nil
}

// one resolves a required SLOT argument
func (b *Bench) one(args []string) (core.Driver, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}
	ds, err := b.targets(args[:1])
	if err != nil {
		return nil, err
	}
	return ds[0], nil
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return uint16(v), nil
}

func (b *Bench) cmdCurrent(args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	if len(args) == 2 {
		mA, err := parseUint16(args[1])
		if err != nil {
			return err
		}
		d, err := b.one(args)
		if err != nil {
			return err
		}
		d.SetCurrentMa(mA)
	}
	ds, err := b.targets(args)
	if err != nil {
		return err
	}
	for _, d := range ds {
		core.ReportCurrent(b.out, d)
	}
	return nil
}

func (b *Bench) cmdThreshold(args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	if len(args) == 2 {
		v, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		d, err := b.one(args)
		if err != nil {
			return err
		}
		d.SetThresholdSpeed(int32(v), b.stepsPerMm[d.Slot()])
	}
	ds, err := b.targets(args)
	if err != nil {
		return err
	}
	for _, d := range ds {
		core.ReportThresholdSpeed(b.out, d, b.stepsPerMm[d.Slot()])
	}
	return nil
}

func (b *Bench) cmdStall(args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	if len(args) == 2 {
		v, err := strconv.ParseInt(args[1], 10, 8)
		if err != nil || v < -64 || v > 63 {
			return ErrUsage
		}
		d, err := b.one(args)
		if err != nil {
			return err
		}
		sd, ok := d.(core.StallDriver)
		if !ok {
			return fmt.Errorf("%s: %w", d.Slot().Label(), errNotStall)
		}
		sd.SetStallSensitivity(int8(v))
	}
	ds, err := b.targets(args)
	if err != nil {
		return err
	}
	for _, d := range ds {
		if sd, ok := d.(core.StallDriver); ok {
			core.ReportStallSensitivity(b.out, sd)
		} else if len(args) > 0 {
			return fmt.Errorf("%s: %w", d.Slot().Label(), errNotStall)
		}
	}
	return nil
}

func (b *Bench) cmdHomingCurrent(args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	if len(args) == 2 {
		mA, err := parseUint16(args[1])
		if err != nil {
			return err
		}
		d, err := b.one(args)
		if err != nil {
			return err
		}
		hd, ok := d.(core.SensorlessDriver)
		if !ok {
			return fmt.Errorf("%s: %w", d.Slot().Label(), errNotSensorless)
		}
		hd.SetHomingCurrentMa(mA)
	}
	ds, err := b.targets(args)
	if err != nil {
		return err
	}
	for _, d := range ds {
		if hd, ok := d.(core.SensorlessDriver); ok {
			core.ReportHomingCurrent(b.out, hd)
		} else if len(args) > 0 {
			return fmt.Errorf("%s: %w", d.Slot().Label(), errNotSensorless)
		}
	}
	return nil
}

func (b *Bench) cmdHoming(args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	d, err := b.one(args)
	if err != nil {
		return err
	}
	hd, ok := d.(core.SensorlessDriver)
	if !ok {
		return fmt.Errorf("%s: %w", d.Slot().Label(), errNotSensorless)
	}
	switch strings.ToLower(args[1]) {
	case "on", "1":
		hd.SetSensorlessHoming(true)
	case "off", "0":
		hd.SetSensorlessHoming(false)
	default:
		return ErrUsage
	}
	return nil
}

func (b *Bench) cmdOverTemp(args []string) error {
	ds, err := b.targets(args)
	if err != nil {
		return err
	}
	for _, d := range ds {
		core.ReportOverTemp(b.out, d)
	}
	return nil
}

func (b *Bench) cmdClearOverTemp(args []string) error {
	ds, err := b.targets(args)
	if err != nil {
		return err
	}
	for _, d := range ds {
		core.ClearOverTemp(b.out, d)
	}
	return nil
}

func (b *Bench) cmdReport(args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	for _, d := range b.registry.Drivers() {
		core.ReportCurrent(b.out, d)
		core.ReportThresholdSpeed(b.out, d, b.stepsPerMm[d.Slot()])
		if sd, ok := d.(core.StallDriver); ok {
			core.ReportStallSensitivity(b.out, sd)
		}
		if hd, ok := d.(core.SensorlessDriver); ok {
			core.ReportHomingCurrent(b.out, hd)
		}
		core.ReportOverTemp(b.out, d)
		if c := b.chips[d.Slot()]; c != nil && c.Err() != nil {
			fmt.Fprintf(b.out, "%s last bus error: %v\n", d.Slot().Label(), c.Err())
		}
	}
	return nil
}

func (b *Bench) cmdPoll(args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	b.monitor.Poll()
	return nil
}

func (b *Bench) cmdHelp(args []string) error {
	b.console.PrintHelp()
	return nil
}
