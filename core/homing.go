package core

// StallWindowAlways keeps stallGuard active at every step rate (TCOOLTHRS
// is a 20-bit register).
const StallWindowAlways = 0xFFFFF

// HomingProfile is the sensorless homing configuration and state bit.
type HomingProfile struct {
	homingCurrentMa uint16
	active          bool
}

// SensorlessAdapter is a StallAdapter with a sensorless homing state
// machine. Homing switches between two profiles:
//
//	NORMAL: run current, TCOOLTHRS=0, stealthChop as configured, DIAG1 off
//	HOMING: homing current, TCOOLTHRS=max, stealthChop off, DIAG1 on stall
type SensorlessAdapter[C StallChip] struct {
	*StallAdapter[C]
	homing      HomingProfile
	runHold     float32 // hold multiplier of the cached run current
	stealthChop bool
	stealthSave bool
}

// NewSensorlessAdapter creates an adapter with the homing sub-component.
// It starts in the NORMAL state.
func NewSensorlessAdapter[C StallChip](slot DriverSlot, chip C, opts DriverOptions) *SensorlessAdapter[C] {
	return &SensorlessAdapter[C]{
		StallAdapter: NewStallAdapter(slot, chip, opts),
		runHold:      chip.HoldMultiplier(),
		stealthChop:  opts.StealthChop,
	}
}

// HomingCurrentMa returns the cached homing current
func (a *SensorlessAdapter[C]) HomingCurrentMa() uint16 {
	return a.homing.homingCurrentMa
}

// SetHomingCurrentMa updates the cached homing current only. While homing
// is active the chip keeps the old value until the next EnableHoming.
func (a *SensorlessAdapter[C]) SetHomingCurrentMa(mA uint16) {
	a.homing.homingCurrentMa = mA
}

// Homing reports whether the HOMING profile is applied
func (a *SensorlessAdapter[C]) Homing() bool {
	return a.homing.active
}

// SetCurrentMaScaled caches the run current and its hold multiplier. While
// homing the chip keeps the homing current and DisableHoming applies both.
func (a *SensorlessAdapter[C]) SetCurrentMaScaled(mA uint16, holdMultiplier float32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	a.currentMa = mA
	a.runHold = holdMultiplier
	if !a.homing.active {
		a.chip.SetRMSCurrent(mA, holdMultiplier)
	}
}

// SetCurrentMa is SetCurrentMaScaled with the chip's hold multiplier
func (a *SensorlessAdapter[C]) SetCurrentMa(mA uint16) {
	a.SetCurrentMaScaled(mA, a.chip.HoldMultiplier())
}

// SetSensorlessHoming switches to the HOMING profile when enable is true
// and back to NORMAL otherwise.
func (a *SensorlessAdapter[C]) SetSensorlessHoming(enable bool) {
	if enable {
		a.EnableHoming()
	} else {
		a.DisableHoming()
	}
}

// EnableHoming applies the HOMING profile. No-op when already homing.
func (a *SensorlessAdapter[C]) EnableHoming() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if a.homing.active {
		return
	}
	a.homing.active = true

	c := a.chip
	c.SetRMSCurrent(a.homing.homingCurrentMa, c.HoldMultiplier())
	c.SetTCOOLTHRS(StallWindowAlways)
	if a.stealthChop {
		a.stealthSave = c.StealthChop()
		c.SetStealthChop(false)
	}
	c.SetDiag1Stall(true)

	DebugPrintln("[TMC] " + a.slot.Label() + " homing on, " + utoa(uint32(a.homing.homingCurrentMa)) + "mA")
}

// DisableHoming restores the NORMAL profile. No-op when not homing.
func (a *SensorlessAdapter[C]) DisableHoming() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if !a.homing.active {
		return
	}
	a.homing.active = false

	c := a.chip
	c.SetRMSCurrent(a.currentMa, a.runHold)
	c.SetTCOOLTHRS(0)
	if a.stealthChop && a.stealthSave {
		c.SetStealthChop(true)
	}
	c.SetDiag1Stall(false)

	DebugPrintln("[TMC] " + a.slot.Label() + " homing off, " + utoa(uint32(a.currentMa)) + "mA")
}
