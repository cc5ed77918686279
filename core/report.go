package core

import "io"

// Report lines are "<label><text><value>\n". The helpers avoid fmt so they
// stay cheap on the MCU.

func writeLine(w io.Writer, text, value string) {
	io.WriteString(w, text+value+"\n")
}

// ReportCurrent prints "<label> driver current: <mA>"
func ReportCurrent(w io.Writer, d Driver) {
	d.PrintLabel(w)
	writeLine(w, " driver current: ", utoa(uint32(d.CurrentMa())))
}

// ReportThresholdSpeed prints "<label> stealthChop max speed: <mm/s>"
func ReportThresholdSpeed(w io.Writer, d Driver, stepsPerMm uint32) {
	d.PrintLabel(w)
	writeLine(w, " stealthChop max speed: ", utoa(d.ThresholdSpeed(stepsPerMm)))
}

// ReportStallSensitivity prints "<label> homing sensitivity: <sgt>"
func ReportStallSensitivity(w io.Writer, d StallDriver) {
	d.PrintLabel(w)
	writeLine(w, " homing sensitivity: ", itoa(int(d.StallSensitivity())))
}

// ReportHomingCurrent prints "<label> sensorless homing driver current: <mA>"
func ReportHomingCurrent(w io.Writer, d SensorlessDriver) {
	d.PrintLabel(w)
	writeLine(w, " sensorless homing driver current: ", utoa(uint32(d.HomingCurrentMa())))
}

// ReportOverTemp prints "<label> temperature prewarn triggered: true|false".
// Drivers without status monitoring print nothing.
func ReportOverTemp(w io.Writer, d Driver) {
	f := d.OverTemp()
	if f == nil {
		return
	}
	d.PrintLabel(w)
	writeLine(w, " temperature prewarn triggered: ", btoa(f.Triggered()))
}

// ClearOverTemp clears the sticky prewarning flag and confirms it.
func ClearOverTemp(w io.Writer, d Driver) {
	f := d.OverTemp()
	if f == nil {
		return
	}
	f.Clear()
	d.PrintLabel(w)
	io.WriteString(w, " prewarn flag cleared\n")
}
