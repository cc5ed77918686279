package core

// OverTempFlag tracks overtemperature prewarnings for one driver. The
// counter follows consecutive prewarning readings; the latch is sticky
// until an operator clears it.
type OverTempFlag struct {
	count   uint8
	latched bool
}

// Record counts one prewarning reading and returns the new count.
func (f *OverTempFlag) Record() uint8 {
	if f.count < 0xFF {
		f.count++
	}
	return f.count
}

// ResetCount restarts the consecutive-reading counter. The latch is kept.
func (f *OverTempFlag) ResetCount() {
	f.count = 0
}

// Latch sets the sticky flag
func (f *OverTempFlag) Latch() {
	f.latched = true
}

// Triggered reports the sticky flag
func (f *OverTempFlag) Triggered() bool {
	return f.latched
}

// Count returns the consecutive prewarning count
func (f *OverTempFlag) Count() uint8 {
	return f.count
}

// Clear drops the sticky flag
func (f *OverTempFlag) Clear() {
	f.latched = false
}
