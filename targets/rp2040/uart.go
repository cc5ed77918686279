//go:build rp2040

package main

import (
	"machine"
	"time"
)

// tmcUART adapts machine.UART, whose Read returns at once when the RX
// buffer is empty, to the timed reads chip.UARTComm expects.
type tmcUART struct {
	uart    *machine.UART
	timeout time.Duration
}

func newTMCUART(uart *machine.UART, tx, rx machine.Pin, baud uint32) (*tmcUART, error) {
	err := uart.Configure(machine.UARTConfig{BaudRate: baud, TX: tx, RX: rx})
	if err != nil {
		return nil, err
	}
	return &tmcUART{uart: uart, timeout: 5 * time.Millisecond}, nil
}

func (u *tmcUART) Write(p []byte) (int, error) {
	return u.uart.Write(p)
}

// Read waits up to the timeout for data and returns (0, nil) if none came
func (u *tmcUART) Read(p []byte) (int, error) {
	deadline := time.Now().Add(u.timeout)
	for u.uart.Buffered() == 0 {
		if time.Now().After(deadline) {
			return 0, nil
		}
	}
	return u.uart.Read(p)
}
