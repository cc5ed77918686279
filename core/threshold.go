package core

import "math/bits"

// ThresholdClock is the chip timing constant used to convert between a
// linear speed and a TSTEP-style register value (fCLK / 256 scaled).
const ThresholdClock = 12650000

// ComputeThreshold converts between a speed in mm/s and the chip's
// step-period threshold register. The formula is its own inverse, so the
// same call turns a register value back into a speed.
//
// rawThreshold and stepsPerMm must be non-zero; a zero divisor panics.
// A negative rawThreshold is taken as its 32-bit unsigned pattern. A
// divisor wider than 64 bits gives 0, the true quotient being below 1.
func ComputeThreshold(microsteps uint16, rawThreshold int32, stepsPerMm uint32) uint32 {
	num := uint64(ThresholdClock) * uint64(microsteps)
	hi, den := bits.Mul64(256*uint64(uint32(rawThreshold)), uint64(stepsPerMm))
	if hi != 0 {
		return 0
	}
	return uint32(num / den)
}
