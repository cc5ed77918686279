package chip

import (
	"tinygo.org/x/drivers/tmc2209"
	"tinygo.org/x/drivers/tmc5160"

	"tmcstep/core"
)

// Config is the boot configuration a chip's Init writes
type Config struct {
	Rsense         float32 // sense resistor in ohms
	HoldMultiplier float32 // IHOLD = IRUN * HoldMultiplier
	Microsteps     uint16  // 1..256
	Interpolate    bool    // interpolate to 256 microsteps
	StealthChop    bool
	HoldDelay      uint8 // IHOLDDELAY
	PowerDown      uint8 // TPOWERDOWN
}

// Chopper defaults used by Init
const (
	defaultToff  = 3
	defaultHstrt = 5
	defaultHend  = 2
	defaultTbl   = 2

	defaultHoldMultiplier = 0.5
	defaultMicrosteps     = 16
	defaultHoldDelay      = 6
	defaultPowerDown      = 10
)

func (cfg *Config) applyDefaults(rsense float32) {
	if cfg.Rsense == 0 {
		cfg.Rsense = rsense
	}
	if cfg.HoldMultiplier == 0 {
		cfg.HoldMultiplier = defaultHoldMultiplier
	}
	if cfg.Microsteps == 0 {
		cfg.Microsteps = defaultMicrosteps
	}
	if cfg.HoldDelay == 0 {
		cfg.HoldDelay = defaultHoldDelay
	}
	if cfg.PowerDown == 0 {
		cfg.PowerDown = defaultPowerDown
	}
}

// base holds the register shadows common to every family. Several TMC
// registers are write-only, so setters update the shadow and getters read
// it back instead of the chip.
type base struct {
	name  string
	comm  RegisterComm
	index uint8
	cfg   Config

	chopconf  *tmc5160.CHOPCONF_Register
	iholdIrun *tmc5160.IHOLD_IRUN_Register
	tpwmthrs  *tmc2209.Tpwmthrs

	err error
}

func newBase(name string, comm RegisterComm, index uint8, cfg Config, rsense float32) base {
	cfg.applyDefaults(rsense)
	b := base{
		name:      name + "[" + string(rune('0'+index)) + "]",
		comm:      comm,
		index:     index,
		cfg:       cfg,
		chopconf:  tmc5160.NewCHOPCONF(),
		iholdIrun: tmc5160.NewIHOLD_IRUN(),
		tpwmthrs:  tmc2209.NewTpwmthrs(),
	}
	b.chopconf.Toff = defaultToff
	b.chopconf.HstrtTfd = defaultHstrt - 1
	b.chopconf.HendOffset = defaultHend + 3
	b.chopconf.Tbl = defaultTbl
	b.chopconf.Intpol = cfg.Interpolate
	b.chopconf.Mres = mresFor(cfg.Microsteps)
	b.iholdIrun.IholdDelay = cfg.HoldDelay
	return b
}

// mresFor converts a microstep count to CHOPCONF.MRES (0 = 256, 8 = full step)
func mresFor(microsteps uint16) uint8 {
	if microsteps > 256 {
		microsteps = 256
	}
	return 8 - tmc2209.SetMicrostepsPerStep(microsteps)
}

// Err returns the last transport error, or nil
func (b *base) Err() error {
	return b.err
}

func (b *base) fail(err error) {
	b.err = err
	core.DebugPrintln("[TMC] " + b.name + " " + err.Error())
}

// write is best effort; failures are recorded and logged
func (b *base) write(register uint8, value uint32) {
	if err := b.comm.WriteRegister(register, value, b.index); err != nil {
		b.fail(err)
		return
	}
	if core.IsDebugEnabled() {
		core.DebugPrintln("[TMC] " + b.name + " 0x" + tmc5160.ToHex(uint32(register)) + " <- 0x" + tmc5160.ToHex(value))
	}
}

func (b *base) read(register uint8) (uint32, bool) {
	v, err := b.comm.ReadRegister(register, b.index)
	if err != nil {
		b.fail(err)
		return 0, false
	}
	return v, true
}

// HoldMultiplier implements core.Chip
func (b *base) HoldMultiplier() float32 {
	return b.cfg.HoldMultiplier
}

// Microsteps implements core.Chip
func (b *base) Microsteps() uint16 {
	return 256 >> b.chopconf.Mres
}

// SetMicrosteps changes CHOPCONF.MRES. Values are rounded down to a power
// of two.
func (b *base) SetMicrosteps(microsteps uint16) {
	b.chopconf.Mres = mresFor(microsteps)
	b.write(tmc5160.CHOPCONF, b.chopconf.Pack())
}

// TPWMTHRS implements core.Chip
func (b *base) TPWMTHRS() uint32 {
	return b.tpwmthrs.Threshold
}

// SetTPWMTHRS implements core.Chip
func (b *base) SetTPWMTHRS(v uint32) {
	b.tpwmthrs.Threshold = v & 0xFFFFF
	b.write(tmc2209.TPWMTHRS, b.tpwmthrs.Pack())
}

// setCurrentRegs writes IHOLD_IRUN from the shadow
func (b *base) setCurrentRegs(irun, ihold uint8) {
	b.iholdIrun.Irun = irun
	b.iholdIrun.Ihold = ihold
	b.write(tmc5160.IHOLD_IRUN, b.iholdIrun.Pack())
}

// setVsenseCurrent programs the vsense-based current scaling (TMC2130,
// TMC2208). CHOPCONF is rewritten only when the range changes.
func (b *base) setVsenseCurrent(mA uint16, holdMultiplier float32) {
	irun, ihold, vsense := vsenseCurrent(mA, b.cfg.Rsense, holdMultiplier)
	if vsense != b.chopconf.Vsense {
		b.chopconf.Vsense = vsense
		b.write(tmc5160.CHOPCONF, b.chopconf.Pack())
	}
	b.setCurrentRegs(irun, ihold)
}
