package core

import "io"

// Monitor defaults
const (
	DefaultPollIntervalUS = 500000
	OverTempLatchCount    = 3  // consecutive prewarnings before the flag latches
	CurrentStepDownMa     = 50 // run current reduction per poll while latched
)

// MonitorConfig tunes the driver status monitor
type MonitorConfig struct {
	IntervalUS    uint32
	ReduceCurrent bool   // step the run current down while prewarning
	MinCurrentMa  uint16 // floor for ReduceCurrent
	OnError       func(d Driver, st Status)
}

type statusPoller interface {
	driverStatus() (Status, bool)
}

// Monitor polls DRV_STATUS of every monitored driver and maintains their
// OverTempFlag. The timer only marks a poll as due; Service runs it from the
// main loop, outside the scheduler's masked section, since bus reads block.
type Monitor struct {
	registry     *Registry
	out          io.Writer
	cfg          MonitorConfig
	timer        Timer
	running      bool
	scheduled    bool
	pending      bool
	reportStatus bool
}

// NewMonitor creates a monitor over the drivers in r. Messages go to out.
func NewMonitor(r *Registry, out io.Writer, cfg MonitorConfig) *Monitor {
	if cfg.IntervalUS == 0 {
		cfg.IntervalUS = DefaultPollIntervalUS
	}
	m := &Monitor{registry: r, out: out, cfg: cfg}
	m.timer.Handler = m.pollHandler
	return m
}

// Start schedules periodic polling
func (m *Monitor) Start() {
	m.running = true
	if m.scheduled {
		return
	}
	m.scheduled = true
	CancelTimer(&m.timer)
	m.timer.WakeTime = GetTime() + TimerFromUS(m.cfg.IntervalUS)
	ScheduleTimer(&m.timer)
}

// Stop cancels periodic polling and drops a poll that is due but not yet
// serviced.
func (m *Monitor) Stop() {
	state := disableInterrupts()
	m.running = false
	m.pending = false
	restoreInterrupts(state)
	if m.scheduled {
		CancelTimer(&m.timer)
		m.scheduled = false
	}
}

// SetReportStatus enables a status line per driver on every poll
func (m *Monitor) SetReportStatus(enable bool) {
	m.reportStatus = enable
}

func (m *Monitor) pollHandler(t *Timer) uint8 {
	if !m.running {
		m.scheduled = false
		return SF_DONE
	}
	m.pending = true
	t.WakeTime += TimerFromUS(m.cfg.IntervalUS)
	return SF_RESCHEDULE
}

// Service runs the poll marked due by the timer, if any. Call it from the
// main loop after ProcessTimers.
func (m *Monitor) Service() bool {
	state := disableInterrupts()
	due := m.pending
	m.pending = false
	restoreInterrupts(state)

	if !due {
		return false
	}
	m.Poll()
	return true
}

// Poll reads the status of every monitored driver once
func (m *Monitor) Poll() {
	for _, d := range m.registry.Drivers() {
		if d.OverTemp() == nil {
			continue
		}
		p, ok := d.(statusPoller)
		if !ok {
			continue
		}
		st, ok := p.driverStatus()
		if !ok {
			continue
		}
		m.check(d, st)
	}
}

func (m *Monitor) check(d Driver, st Status) {
	f := d.OverTemp()

	if st.OverTemp {
		d.PrintLabel(m.out)
		io.WriteString(m.out, " driver error detected: overtemperature\n")
		if m.cfg.OnError != nil {
			m.cfg.OnError(d, st)
		}
	}

	if st.OverTempPrewarn {
		n := f.Record()
		if n == OverTempLatchCount {
			f.Latch()
			d.PrintLabel(m.out)
			writeLine(m.out, " driver overtemperature warning! (", utoa(uint32(d.CurrentMa()))+"mA)")
		}
		if n >= OverTempLatchCount && m.cfg.ReduceCurrent {
			m.stepDown(d)
		}
	} else {
		f.ResetCount()
	}

	if m.reportStatus {
		d.PrintLabel(m.out)
		io.WriteString(m.out, " driver status: otpw="+btoa(st.OverTempPrewarn)+
			" ot="+btoa(st.OverTemp)+
			" cs="+utoa(uint32(st.CurrentScale))+"\n")
	}
}

func (m *Monitor) stepDown(d Driver) {
	mA := d.CurrentMa()
	if mA <= m.cfg.MinCurrentMa+CurrentStepDownMa {
		if mA > m.cfg.MinCurrentMa {
			d.SetCurrentMa(m.cfg.MinCurrentMa)
		}
		return
	}
	d.SetCurrentMa(mA - CurrentStepDownMa)
}
