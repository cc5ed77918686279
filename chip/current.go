package chip

import "tinygo.org/x/drivers/tmc2209"

// Current scaling. The RMS current is I = (CS+1)/32 * Vfs/R / sqrt(2),
// where Vfs is the sense voltage full scale and R the sense resistance.
const (
	sqrt2 = 1.41421356

	vfsNormal = 0.325 // CHOPCONF.vsense = 0
	vfsHigh   = 0.180 // CHOPCONF.vsense = 1

	// TMC2130/TMC2208 add about 20 mOhm of internal resistance to Rsense
	rsenseInternal = 0.02

	maxCS = 31
)

func csFor(mA uint16, r, vfs float32) float32 {
	return 32*sqrt2*float32(mA)/1000*r/vfs - 1
}

func clampCS(cs float32) uint8 {
	if cs < 0 {
		return 0
	}
	return uint8(tmc2209.Constrain(uint32(cs), 0, maxCS))
}

func holdCS(irun uint8, holdMultiplier float32) uint8 {
	return clampCS(float32(irun) * holdMultiplier)
}

// vsenseCurrent picks IRUN, IHOLD and the vsense range for a run current.
// The high sensitivity range is used when the normal range would leave
// fewer than 16 current steps.
func vsenseCurrent(mA uint16, rsense, holdMultiplier float32) (irun, ihold uint8, vsense bool) {
	r := rsense + rsenseInternal
	cs := csFor(mA, r, vfsNormal)
	if cs < 16 {
		vsense = true
		cs = csFor(mA, r, vfsHigh)
	}
	irun = clampCS(cs)
	return irun, holdCS(irun, holdMultiplier), vsense
}

// vsenseRMS is the inverse of vsenseCurrent
func vsenseRMS(irun uint8, vsense bool, rsense float32) uint16 {
	vfs := float32(vfsNormal)
	if vsense {
		vfs = vfsHigh
	}
	return uint16((float32(irun)+1)/32*vfs/(rsense+rsenseInternal)/sqrt2*1000 + 0.5)
}

// Global scaler limits (TMC5160). 0 in the register means 256.
const (
	globalScalerMin  = 32
	globalScalerFull = 256
)

// scaledCurrent splits a run current into GLOBAL_SCALER and IRUN, keeping
// IRUN near its maximum for best resolution.
func scaledCurrent(mA uint16, rsense, holdMultiplier float32) (globalScaler uint32, irun, ihold uint8) {
	amps := float32(mA) / 1000
	gs := int(amps*globalScalerFull*sqrt2*rsense/vfsNormal + 0.5)
	if gs < globalScalerMin {
		gs = globalScalerMin
	}
	if gs >= globalScalerFull {
		gs = globalScalerFull
	}
	cs := amps*globalScalerFull*32*sqrt2*rsense/(float32(gs)*vfsNormal) - 1 + 0.5
	irun = clampCS(cs)
	if gs == globalScalerFull {
		gs = 0
	}
	return uint32(gs), irun, holdCS(irun, holdMultiplier)
}

// scaledRMS is the inverse of scaledCurrent
func scaledRMS(globalScaler uint32, irun uint8, rsense float32) uint16 {
	gs := float32(globalScaler)
	if globalScaler == 0 {
		gs = globalScalerFull
	}
	amps := (float32(irun) + 1) * gs * vfsNormal / (globalScalerFull * 32 * sqrt2 * rsense)
	return uint16(amps*1000 + 0.5)
}
