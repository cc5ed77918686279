package core

import "io"

// Driver is the per-axis surface exposed to the console layer. Every chip
// family provides it.
type Driver interface {
	Slot() DriverSlot
	PrintLabel(w io.Writer)
	CurrentMa() uint16
	SetCurrentMa(mA uint16)
	SetCurrentMaScaled(mA uint16, holdMultiplier float32)
	ThresholdSpeed(stepsPerMm uint32) uint32
	SetThresholdSpeed(thrs int32, stepsPerMm uint32)
	OverTemp() *OverTempFlag
}

// StallDriver adds the stallGuard sensitivity register. Only families
// with stall detection implement it.
type StallDriver interface {
	Driver
	StallSensitivity() int8
	SetStallSensitivity(sgt int8)
}

// SensorlessDriver adds the homing profile and its state machine.
type SensorlessDriver interface {
	StallDriver
	HomingCurrentMa() uint16
	SetHomingCurrentMa(mA uint16)
	Homing() bool
	EnableHoming()
	DisableHoming()
	SetSensorlessHoming(enable bool)
}

// DriverOptions selects the optional per-driver features
type DriverOptions struct {
	Monitor     bool // allocate an OverTempFlag for the status monitor
	StealthChop bool // stealthChop is in use; homing must switch it off
}

// Adapter binds one chip to one slot and keeps the cached run current.
type Adapter[C Chip] struct {
	driverStorage
	chip C
}

var (
	_ Driver           = (*Adapter[Chip])(nil)
	_ StallDriver      = (*StallAdapter[StallChip])(nil)
	_ SensorlessDriver = (*SensorlessAdapter[StallChip])(nil)
)

// NewAdapter creates an adapter for a chip without stall detection
func NewAdapter[C Chip](slot DriverSlot, chip C, opts DriverOptions) *Adapter[C] {
	a := &Adapter[C]{
		driverStorage: driverStorage{slot: slot},
		chip:          chip,
	}
	if opts.Monitor {
		a.otpw = &OverTempFlag{}
	}
	return a
}

// Chip returns the underlying chip driver
func (a *Adapter[C]) Chip() C {
	return a.chip
}

// SetCurrentMa caches mA and programs the chip with its default hold
// multiplier.
func (a *Adapter[C]) SetCurrentMa(mA uint16) {
	a.SetCurrentMaScaled(mA, a.chip.HoldMultiplier())
}

// SetCurrentMaScaled caches the unscaled mA and programs the chip with the
// given hold multiplier. The cache is updated even if the write fails.
func (a *Adapter[C]) SetCurrentMaScaled(mA uint16, holdMultiplier float32) {
	a.currentMa = mA
	a.chip.SetRMSCurrent(mA, holdMultiplier)
}

// ThresholdSpeed reads TPWMTHRS and converts it to mm/s. A cleared
// register (hybrid threshold off) or zero steps/mm reports 0.
func (a *Adapter[C]) ThresholdSpeed(stepsPerMm uint32) uint32 {
	raw := a.chip.TPWMTHRS()
	if raw == 0 || stepsPerMm == 0 {
		return 0
	}
	return ComputeThreshold(a.chip.Microsteps(), int32(raw), stepsPerMm)
}

// SetThresholdSpeed converts a speed in mm/s to TPWMTHRS and writes it.
// A zero speed clears the register.
func (a *Adapter[C]) SetThresholdSpeed(thrs int32, stepsPerMm uint32) {
	if thrs == 0 || stepsPerMm == 0 {
		a.chip.SetTPWMTHRS(0)
		return
	}
	a.chip.SetTPWMTHRS(ComputeThreshold(a.chip.Microsteps(), thrs, stepsPerMm))
}

// driverStatus polls the chip when it supports status reads
func (a *Adapter[C]) driverStatus() (Status, bool) {
	sc, ok := any(a.chip).(StatusChip)
	if !ok {
		return Status{}, false
	}
	return sc.DriverStatus()
}

// StallAdapter is an Adapter over a chip with stallGuard.
type StallAdapter[C StallChip] struct {
	*Adapter[C]
}

// NewStallAdapter creates an adapter exposing stall sensitivity
func NewStallAdapter[C StallChip](slot DriverSlot, chip C, opts DriverOptions) *StallAdapter[C] {
	return &StallAdapter[C]{Adapter: NewAdapter(slot, chip, opts)}
}

// StallSensitivity reads the chip's sgt value
func (a *StallAdapter[C]) StallSensitivity() int8 {
	return a.chip.SGT()
}

// SetStallSensitivity writes the chip's sgt value
func (a *StallAdapter[C]) SetStallSensitivity(sgt int8) {
	a.chip.SetSGT(sgt)
}
