package core

// fakeChip records register-level effects for adapter tests
type fakeChip struct {
	current    uint16
	hold       float32
	writes     int
	broken     bool // drop every write, like a dead bus
	microsteps uint16
	tpwmthrs   uint32
	sgt        int8
	tcoolthrs  uint32
	stealth    bool
	toggles    int
	diag1      bool
	status     Status
	statusOK   bool
}

func newFakeChip() *fakeChip {
	return &fakeChip{microsteps: 16, stealth: true, statusOK: true}
}

func (c *fakeChip) SetRMSCurrent(mA uint16, holdMultiplier float32) {
	if c.broken {
		return
	}
	c.current = mA
	c.hold = holdMultiplier
	c.writes++
}

func (c *fakeChip) RMSCurrent() uint16      { return c.current }
func (c *fakeChip) HoldMultiplier() float32 { return 0.5 }
func (c *fakeChip) Microsteps() uint16      { return c.microsteps }
func (c *fakeChip) TPWMTHRS() uint32        { return c.tpwmthrs }
func (c *fakeChip) SetTPWMTHRS(v uint32)    { c.tpwmthrs = v }
func (c *fakeChip) SGT() int8               { return c.sgt }
func (c *fakeChip) SetSGT(v int8)           { c.sgt = v }
func (c *fakeChip) SetTCOOLTHRS(v uint32)   { c.tcoolthrs = v }
func (c *fakeChip) StealthChop() bool       { return c.stealth }
func (c *fakeChip) SetDiag1Stall(e bool)    { c.diag1 = e }

func (c *fakeChip) SetStealthChop(enable bool) {
	if enable != c.stealth {
		c.toggles++
	}
	c.stealth = enable
}

func (c *fakeChip) DriverStatus() (Status, bool) {
	return c.status, c.statusOK
}

// plainChip has no stallGuard and no status register
type plainChip struct {
	current uint16
	thrs    uint32
}

func (c *plainChip) SetRMSCurrent(mA uint16, m float32) { c.current = mA }
func (c *plainChip) RMSCurrent() uint16                 { return c.current }
func (c *plainChip) HoldMultiplier() float32            { return 0.5 }
func (c *plainChip) Microsteps() uint16                 { return 16 }
func (c *plainChip) TPWMTHRS() uint32                   { return c.thrs }
func (c *plainChip) SetTPWMTHRS(v uint32)               { c.thrs = v }
