//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"tmcstep/core"
)

// RP2040 timer peripheral: a free-running 64-bit microsecond counter
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24
	timerTIMERAWL = timerBase + 0x28
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// GetHardwareUptime reads the 64-bit microsecond counter
func GetHardwareUptime() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

// UpdateSystemTime converts the microsecond counter to core ticks
func UpdateSystemTime() {
	core.SetTime(uint32(GetHardwareUptime() * (core.TimerFreq / 1000000)))
}
