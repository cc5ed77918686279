//go:build !tinygo

package core

// State stands in for the saved interrupt mask under regular Go
type State uintptr

// disableInterrupts is a no-op on regular Go (tests, host tools)
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go
func restoreInterrupts(state State) {}
