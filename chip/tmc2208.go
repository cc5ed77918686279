package chip

import (
	"tinygo.org/x/drivers/tmc2209"
	"tinygo.org/x/drivers/tmc5160"

	"tmcstep/core"
)

// TMC2208 DRV_STATUS bits
const (
	drv2208Otpw       = 1 << 0
	drv2208Ot         = 1 << 1
	drv2208CSShift    = 16
	drv2208CSMask     = 0x1F
	drv2208Standstill = 1 << 31
)

// Default sense resistor on common TMC2208 carrier boards
const RsenseTMC2208 = 0.11

// TMC2208 is a UART-configured driver without stallGuard. It satisfies
// core.Chip and core.StatusChip.
type TMC2208 struct {
	base
	gconf *tmc2209.Gconf
}

var (
	_ core.Chip       = (*TMC2208)(nil)
	_ core.StatusChip = (*TMC2208)(nil)
)

// NewTMC2208 creates a TMC2208 at the given UART node address. Call Init
// before use.
func NewTMC2208(comm RegisterComm, node uint8, cfg Config) *TMC2208 {
	t := &TMC2208{
		base:  newBase("tmc2208", comm, node, cfg, RsenseTMC2208),
		gconf: tmc2209.NewGconf(),
	}
	// UART control: PDN_UART is a serial pin and MRES comes from CHOPCONF
	t.gconf.PdnDisable = 1
	t.gconf.MstepRegSelect = 1
	t.gconf.MultistepFilt = 1
	t.gconf.EnSpreadcycle = boolBit(!t.cfg.StealthChop)
	return t
}

// Init writes the boot configuration and returns the first transport
// error, if any.
func (t *TMC2208) Init() error {
	t.err = nil
	t.write(tmc2209.GCONF, t.gconf.Pack())
	t.write(tmc5160.CHOPCONF, t.chopconf.Pack())
	t.write(tmc5160.IHOLD_IRUN, t.iholdIrun.Pack())
	t.write(tmc2209.TPOWERDOWN, uint32(t.cfg.PowerDown))
	t.write(tmc2209.TPWMTHRS, t.tpwmthrs.Pack())
	return t.err
}

// SetRMSCurrent implements core.Chip
func (t *TMC2208) SetRMSCurrent(mA uint16, holdMultiplier float32) {
	t.setVsenseCurrent(mA, holdMultiplier)
}

// RMSCurrent implements core.Chip
func (t *TMC2208) RMSCurrent() uint16 {
	return vsenseRMS(t.iholdIrun.Irun, t.chopconf.Vsense, t.cfg.Rsense)
}

// StealthChop reports whether spreadCycle is disabled
func (t *TMC2208) StealthChop() bool {
	return t.gconf.EnSpreadcycle == 0
}

// SetStealthChop switches between stealthChop and spreadCycle
func (t *TMC2208) SetStealthChop(enable bool) {
	t.gconf.EnSpreadcycle = boolBit(!enable)
	t.write(tmc2209.GCONF, t.gconf.Pack())
}

// DriverStatus implements core.StatusChip
func (t *TMC2208) DriverStatus() (core.Status, bool) {
	v, ok := t.read(tmc2209.DRV_STATUS)
	if !ok {
		return core.Status{}, false
	}
	return core.Status{
		OverTempPrewarn: v&drv2208Otpw != 0,
		OverTemp:        v&drv2208Ot != 0,
		CurrentScale:    uint8(v >> drv2208CSShift & drv2208CSMask),
		Standstill:      v&drv2208Standstill != 0,
	}, true
}

// TransmitCount reads IFCNT, which counts successful UART writes. It is
// used to verify that a node is wired and listening.
func (t *TMC2208) TransmitCount() (uint8, bool) {
	v, ok := t.read(tmc2209.IFCNT)
	return uint8(v), ok
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
