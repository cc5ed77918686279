package core

// Chip is the register-level surface every supported driver family offers.
// Setters are write-and-forget; a chip records transport faults itself.
type Chip interface {
	// SetRMSCurrent programs the run current and a hold current scaled by
	// holdMultiplier.
	SetRMSCurrent(mA uint16, holdMultiplier float32)

	// RMSCurrent computes the current from the chip's own registers.
	RMSCurrent() uint16

	// HoldMultiplier is the default hold/run ratio used by SetRMSCurrent
	// callers that do not pass one.
	HoldMultiplier() float32

	// Microsteps returns the configured microstep resolution (1..256)
	Microsteps() uint16

	// TPWMTHRS reads the stealthChop upper velocity threshold
	TPWMTHRS() uint32

	// SetTPWMTHRS writes the stealthChop upper velocity threshold
	SetTPWMTHRS(v uint32)
}

// StallChip is a Chip with stallGuard, usable for sensorless homing.
type StallChip interface {
	Chip

	// SGT reads the stallGuard threshold (-64..63)
	SGT() int8
	SetSGT(v int8)

	// SetTCOOLTHRS sets the lower velocity bound for stallGuard/coolStep
	SetTCOOLTHRS(v uint32)

	// StealthChop reports GCONF.en_pwm_mode
	StealthChop() bool
	SetStealthChop(enable bool)

	// SetDiag1Stall routes the stall signal to the DIAG1 pin
	SetDiag1Stall(enable bool)
}

// Status is the subset of DRV_STATUS the monitor acts on
type Status struct {
	OverTempPrewarn bool
	OverTemp        bool
	CurrentScale    uint8 // CS_ACTUAL
	Standstill      bool
}

// StatusChip is implemented by chips whose status register can be polled.
// The bool result is false when the read failed.
type StatusChip interface {
	DriverStatus() (Status, bool)
}
