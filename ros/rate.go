package ros

//Rate paces a loop to a fixed cycle time. Each Sleep waits out whatever
//remains of the current cycle, measured from the cycle anchor, then
//advances the anchor by exactly one expected cycle. Pacing is therefore
//fixed-rate: time spent working is deducted from the wait, and a cycle
//whose work overruns its slot is followed by no wait at all.
type Rate struct {
	actualCycleTime   Duration
	expectedCycleTime Duration
	start             Time
}

//NewRate returns a Rate cycling at frequency hertz, anchored at now.
func NewRate(frequency float64) Rate {
	var actualCycleTime, expectedCycleTime Duration
	expectedCycleTime.FromSec(1.0 / frequency)
	start := Now()
	return Rate{actualCycleTime, expectedCycleTime, start}
}

//CycleTime returns a Rate with the given cycle duration, anchored at now.
func CycleTime(d Duration) Rate {
	var actualCycleTime Duration
	start := Now()
	return Rate{actualCycleTime, d, start}
}

//CycleTime returns the measured duration of the last completed cycle.
func (r *Rate) CycleTime() Duration {
	return r.actualCycleTime
}

//ExpectedCycleTime returns the configured cycle duration.
func (r *Rate) ExpectedCycleTime() Duration {
	return r.expectedCycleTime
}

//Reset re-anchors the cycle at the current time.
func (r *Rate) Reset() {
	r.actualCycleTime = NewDuration(0, 0)
	r.start = Now()
}

//Sleep blocks until the expected end of the current cycle and begins the
//next one. If the cycle has already overrun, Sleep returns without
//waiting; if it has fallen more than one full cycle behind, the anchor
//snaps to now so the loop does not burst to catch up.
func (r *Rate) Sleep() error {
	expectedEnd := r.start.Add(r.expectedCycleTime)
	now := Now()
	var remaining Duration
	if expectedEnd.Cmp(now) > 0 {
		remaining = expectedEnd.Diff(now)
	}
	if err := remaining.Sleep(); err != nil {
		return err
	}
	now = Now()
	if now.Cmp(r.start) > 0 {
		r.actualCycleTime = now.Diff(r.start)
	} else {
		r.actualCycleTime = NewDuration(0, 0)
	}
	r.start = expectedEnd
	if now.Cmp(expectedEnd.Add(r.expectedCycleTime)) > 0 {
		r.start = now
	}
	return nil
}
