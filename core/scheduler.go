package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

// Handler results
const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var timerList *Timer

// ScheduleTimer adds a timer to the schedule
func ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	insertTimer(t)
}

// CancelTimer removes a timer if it is pending
func CancelTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for p := &timerList; *p != nil; p = &(*p).Next {
		if *p == t {
			*p = t.Next
			t.Next = nil
			return
		}
	}
}

// insertTimer inserts a timer in sorted order by WakeTime. Wake times are
// compared as a signed difference so the list survives clock wraparound.
func insertTimer(t *Timer) {
	p := &timerList
	for *p != nil && int32((*p).WakeTime-t.WakeTime) <= 0 {
		p = &(*p).Next
	}
	t.Next = *p
	*p = t
}

// TimerDispatch runs the handlers of all timers due at now
func TimerDispatch(now uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for timerList != nil && int32(timerList.WakeTime-now) <= 0 {
		t := timerList
		timerList = t.Next
		t.Next = nil

		if t.Handler(t) == SF_RESCHEDULE {
			insertTimer(t)
		}
	}
}
