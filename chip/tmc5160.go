package chip

import (
	"tinygo.org/x/drivers/tmc5160"

	"tmcstep/core"
)

// Default sense resistor on common TMC5160 boards
const RsenseTMC5160 = 0.075

// TMC5160 is an SPI driver with stallGuard2 whose current is scaled by
// GLOBAL_SCALER instead of vsense.
type TMC5160 struct {
	stallBase
	globalScaler uint32
}

var (
	_ core.StallChip  = (*TMC5160)(nil)
	_ core.StatusChip = (*TMC5160)(nil)
)

// NewTMC5160 creates a TMC5160 behind chip select index cs. Call Init
// before use.
func NewTMC5160(comm RegisterComm, cs uint8, cfg Config) *TMC5160 {
	return &TMC5160{stallBase: newStallBase("tmc5160", comm, cs, cfg, RsenseTMC5160)}
}

// Init writes the boot configuration and returns the first transport
// error, if any.
func (t *TMC5160) Init() error {
	t.err = nil
	t.writeConfig()
	t.write(tmc5160.GLOBAL_SCALER, t.globalScaler)
	return t.err
}

// SetRMSCurrent implements core.Chip
func (t *TMC5160) SetRMSCurrent(mA uint16, holdMultiplier float32) {
	gs, irun, ihold := scaledCurrent(mA, t.cfg.Rsense, holdMultiplier)
	if gs != t.globalScaler {
		t.globalScaler = gs
		t.write(tmc5160.GLOBAL_SCALER, gs)
	}
	t.setCurrentRegs(irun, ihold)
}

// RMSCurrent implements core.Chip
func (t *TMC5160) RMSCurrent() uint16 {
	return scaledRMS(t.globalScaler, t.iholdIrun.Irun, t.cfg.Rsense)
}

// GlobalScaler returns the shadowed GLOBAL_SCALER (0 means 256)
func (t *TMC5160) GlobalScaler() uint32 {
	return t.globalScaler
}
