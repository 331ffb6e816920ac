package touchpanel

// AlphaBeta is a recursive position and velocity estimator for one axis.
//
// The velocity correction uses the position estimate already advanced in the
// same update, not the one from the previous sample.
type AlphaBeta struct {
	Alpha float64
	Beta  float64
	// T is the sample period in seconds.
	T float64

	pos float64
	vel float64
}

// Update feeds one raw sample and returns the new estimates.
func (f *AlphaBeta) Update(x float64) (pos, vel float64) {
	f.pos += f.Alpha*(x-f.pos) + f.T*f.vel
	if f.T > 0 {
		f.vel += (f.Beta / f.T) * (x - f.pos)
	}
	return f.pos, f.vel
}

// Reset sets the position estimate and zeroes the velocity.
func (f *AlphaBeta) Reset(pos float64) {
	f.pos = pos
	f.vel = 0
}

// Estimate returns the current estimates without updating them.
func (f *AlphaBeta) Estimate() (pos, vel float64) { return f.pos, f.vel }
