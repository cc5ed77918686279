package chip

import "tmcstep/core"

// Default sense resistor on common TMC2130 carrier boards
const RsenseTMC2130 = 0.11

// TMC2130 is an SPI driver with stallGuard2 and vsense current scaling
type TMC2130 struct {
	stallBase
}

var (
	_ core.StallChip  = (*TMC2130)(nil)
	_ core.StatusChip = (*TMC2130)(nil)
)

// NewTMC2130 creates a TMC2130 behind chip select index cs. Call Init
// before use.
func NewTMC2130(comm RegisterComm, cs uint8, cfg Config) *TMC2130 {
	return &TMC2130{stallBase: newStallBase("tmc2130", comm, cs, cfg, RsenseTMC2130)}
}

// Init writes the boot configuration and returns the first transport
// error, if any.
func (t *TMC2130) Init() error {
	t.err = nil
	t.writeConfig()
	return t.err
}

// SetRMSCurrent implements core.Chip
func (t *TMC2130) SetRMSCurrent(mA uint16, holdMultiplier float32) {
	t.setVsenseCurrent(mA, holdMultiplier)
}

// RMSCurrent implements core.Chip
func (t *TMC2130) RMSCurrent() uint16 {
	return vsenseRMS(t.iholdIrun.Irun, t.chopconf.Vsense, t.cfg.Rsense)
}
