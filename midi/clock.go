package midi

import "time"

// ClocksPerQuarter is the MIDI timing clock resolution.
const ClocksPerQuarter = 24

// ClockTracker measures tempo from incoming timing clock bytes. It counts
// ClocksPerQuarter ticks and derives beats per minute from the time one
// quarter note took. Start, Continue, Stop and Reset restart the count;
// other real-time codes are ignored.
type ClockTracker struct {
	// Now defaults to time.Now.
	Now func() time.Time

	ticks   int
	started time.Time
	bpm     float64
}

// Tick feeds one real-time message. It returns the new tempo and true each
// time a full quarter note of clocks has been counted.
func (c *ClockTracker) Tick(m SystemRealTime) (bpm float64, ok bool) {
	switch m.Code {
	case TimingClock:
	case Start, Continue, Stop, Reset:
		c.ticks = 0
		c.started = time.Time{}
		return 0, false
	default:
		return 0, false
	}

	now := c.now()
	if c.started.IsZero() {
		c.started = now
		return 0, false
	}
	c.ticks++
	if c.ticks < ClocksPerQuarter {
		return 0, false
	}
	elapsed := now.Sub(c.started)
	c.ticks = 0
	c.started = now
	if elapsed <= 0 {
		return 0, false
	}
	c.bpm = float64(time.Minute) / float64(elapsed)
	return c.bpm, true
}

// BPM returns the last measured tempo, or 0 before the first quarter note.
func (c *ClockTracker) BPM() float64 { return c.bpm }

func (c *ClockTracker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
