package core

import "sync/atomic"

// TimerFreq is the tick rate of the core clock
const TimerFreq = 12000000

var systemTicks uint32

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time. Targets call it from their clock
// source; tests call it directly.
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// ProcessTimers runs every timer that is due at the current time
func ProcessTimers() {
	TimerDispatch(GetTime())
}
