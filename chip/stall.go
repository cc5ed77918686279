package chip

import (
	"tinygo.org/x/drivers/tmc5160"

	"tmcstep/core"
)

// stallGuard threshold range (7-bit two's complement)
const (
	sgtMin = -64
	sgtMax = 63
)

// stallBase adds the stallGuard and stealthChop registers shared by the
// SPI families.
type stallBase struct {
	base
	gconf     *tmc5160.GCONF_Register
	coolconf  *tmc5160.COOLCONF_Register
	tcoolthrs uint32
}

func newStallBase(name string, comm RegisterComm, index uint8, cfg Config, rsense float32) stallBase {
	s := stallBase{
		base:     newBase(name, comm, index, cfg, rsense),
		gconf:    tmc5160.NewGCONF(),
		coolconf: tmc5160.NewCOOLCONF(),
	}
	s.gconf.EnPwmMode = s.cfg.StealthChop
	return s
}

func (s *stallBase) writeConfig() {
	s.write(tmc5160.GCONF, s.gconf.Pack())
	s.write(tmc5160.CHOPCONF, s.chopconf.Pack())
	s.write(tmc5160.IHOLD_IRUN, s.iholdIrun.Pack())
	s.write(tmc5160.TPOWERDOWN, uint32(s.cfg.PowerDown))
	s.write(tmc5160.TPWMTHRS, s.tpwmthrs.Pack())
	s.write(tmc5160.COOLCONF, s.coolconf.Pack())
	s.write(tmc5160.TCOOLTHRS, s.tcoolthrs)
}

// SGT implements core.StallChip
func (s *stallBase) SGT() int8 {
	return int8(s.coolconf.Sgt<<1) >> 1
}

// SetSGT implements core.StallChip. Values outside -64..63 are clamped.
func (s *stallBase) SetSGT(v int8) {
	if v < sgtMin {
		v = sgtMin
	}
	if v > sgtMax {
		v = sgtMax
	}
	s.coolconf.Sgt = uint8(v) & 0x7F
	s.write(tmc5160.COOLCONF, s.coolconf.Pack())
}

// TCOOLTHRS returns the shadowed coolStep/stallGuard velocity threshold
func (s *stallBase) TCOOLTHRS() uint32 {
	return s.tcoolthrs
}

// SetTCOOLTHRS implements core.StallChip
func (s *stallBase) SetTCOOLTHRS(v uint32) {
	s.tcoolthrs = v & 0xFFFFF
	s.write(tmc5160.TCOOLTHRS, s.tcoolthrs)
}

// StealthChop implements core.StallChip
func (s *stallBase) StealthChop() bool {
	return s.gconf.EnPwmMode
}

// SetStealthChop implements core.StallChip
func (s *stallBase) SetStealthChop(enable bool) {
	s.gconf.EnPwmMode = enable
	s.write(tmc5160.GCONF, s.gconf.Pack())
}

// Diag1Stall reports whether the stall output is routed to DIAG1
func (s *stallBase) Diag1Stall() bool {
	return s.gconf.Diag1StallDir
}

// SetDiag1Stall implements core.StallChip
func (s *stallBase) SetDiag1Stall(enable bool) {
	s.gconf.Diag1StallDir = enable
	s.write(tmc5160.GCONF, s.gconf.Pack())
}

// DriverStatus implements core.StatusChip
func (s *stallBase) DriverStatus() (core.Status, bool) {
	v, ok := s.read(tmc5160.DRV_STATUS)
	if !ok {
		return core.Status{}, false
	}
	drv := tmc5160.NewDRV_STATUS()
	drv.Unpack(v)
	return core.Status{
		OverTempPrewarn: drv.Otpw,
		OverTemp:        drv.Ot,
		CurrentScale:    drv.CsActual,
		Standstill:      drv.Stst,
	}, true
}

// StallGuardResult reads SG_RESULT, the current stallGuard load value
func (s *stallBase) StallGuardResult() (uint16, bool) {
	v, ok := s.read(tmc5160.DRV_STATUS)
	if !ok {
		return 0, false
	}
	drv := tmc5160.NewDRV_STATUS()
	drv.Unpack(v)
	return drv.SgResult, true
}
