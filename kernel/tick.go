package kernel

// Tick is a free-running microsecond counter that wraps at 2^32.
//
// Ticks must only be compared through Sub, Reached and Elapsed; a plain
// comparison breaks every ~71 minutes when the counter wraps.
type Tick uint32

// Add returns the tick d microseconds after t.
func (t Tick) Add(d uint32) Tick { return t + Tick(d) }

// Sub returns the signed distance t-u, valid while the two ticks are less
// than 2^31 microseconds apart.
func (t Tick) Sub(u Tick) int32 { return int32(t - u) }

// Reached reports whether t is at or after deadline.
func (t Tick) Reached(deadline Tick) bool { return t.Sub(deadline) >= 0 }

// Elapsed returns the number of microseconds from one tick to a later one.
func Elapsed(from, to Tick) uint32 { return uint32(to - from) }

// Clock is the monotonic time source seen by tasks.
type Clock interface {
	Now() Tick
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() Tick

func (f ClockFunc) Now() Tick { return f() }

// Period gates a task to run once every fixed interval.
//
// The deadline advances by exactly one interval per firing, so a late pass
// does not shift the schedule of later ones.
type Period struct {
	every uint32
	next  Tick
	armed bool
}

// NewPeriod returns a gate whose first deadline is one interval after start.
func NewPeriod(start Tick, every uint32) Period {
	return Period{every: every, next: start.Add(every), armed: true}
}

// Every returns a gate that starts counting at the first call to Due.
func Every(every uint32) Period {
	return Period{every: every}
}

// Due reports whether the deadline has been reached and, if so, advances it.
func (p *Period) Due(now Tick) bool {
	if !p.armed {
		p.next = now.Add(p.every)
		p.armed = true
		return false
	}
	if !now.Reached(p.next) {
		return false
	}
	p.next = p.next.Add(p.every)
	return true
}

// Next returns the pending deadline.
func (p *Period) Next() Tick { return p.next }

// Every returns the interval in microseconds.
func (p *Period) Every() uint32 { return p.every }
