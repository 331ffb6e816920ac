//go:build !tinygo

package hal

import (
	"fmt"
	"math"
)

const (
	// Plate angular acceleration in deg/s^2 per percent of net motor drive.
	plantGain    = 60.0
	plateDamping = 2.0
	maxTilt      = 15.0

	gravityMM     = 9810.0
	rollingFactor = 5.0 / 7.0
	ballFriction  = 0.3

	// Seconds the ball stays off the plate before it is put back.
	ballRespawn = 2.0

	// Seconds until the simulated sensor reports full calibration.
	imuCalTime = 2.0

	// Microseconds a finger stays on the panel when nobody samples it.
	fingerTimeout = 1_000_000
)

// Raw panel reading for a physical point: a skewed, offset copy of it, so
// that calibration has something to undo.
var panelSkew = [2][3]float64{
	{1.04, 0.03, 2.5},
	{-0.02, 0.96, -1.5},
}

type plant struct {
	// Index 0 is roll (motor 2, ball y), index 1 is pitch (motor 1, ball x).
	angle [2]float64
	rate  [2]float64
	duty  [MotorChannels]float64

	ball    [2]float64
	ballVel [2]float64
	onPlate bool
	offFor  float64

	half [2]float64
	t    float64
}

func (p *plant) reset() {
	p.half = [2]float64{88, 50}
	p.angle = [2]float64{2, -3}
	p.placeBall(0, 0)
}

func (p *plant) placeBall(x, y float64) {
	p.ball = [2]float64{x, y}
	p.ballVel = [2]float64{}
	p.onPlate = true
	p.offFor = 0
}

func (p *plant) step(dt float64) {
	p.t += dt

	net1 := p.duty[Motor1A] - p.duty[Motor1B]
	net2 := p.duty[Motor2A] - p.duty[Motor2B]
	acc := [2]float64{
		plantGain*net2 - plateDamping*p.rate[0],
		-plantGain*net1 - plateDamping*p.rate[1],
	}
	for i := range p.angle {
		p.rate[i] += acc[i] * dt
		p.angle[i] += p.rate[i] * dt
		if p.angle[i] > maxTilt {
			p.angle[i], p.rate[i] = maxTilt, 0
		} else if p.angle[i] < -maxTilt {
			p.angle[i], p.rate[i] = -maxTilt, 0
		}
	}

	if !p.onPlate {
		p.offFor += dt
		if p.offFor >= ballRespawn {
			p.placeBall(0, 0)
		}
		return
	}
	// Ball x rolls with pitch, ball y with roll.
	tilt := [2]float64{p.angle[1], p.angle[0]}
	for i := range p.ball {
		a := -rollingFactor*gravityMM*math.Sin(tilt[i]*math.Pi/180) - ballFriction*p.ballVel[i]
		p.ballVel[i] += a * dt
		p.ball[i] += p.ballVel[i] * dt
		if math.Abs(p.ball[i]) > p.half[i] {
			p.onPlate = false
		}
	}
}

type finger struct {
	points  [][2]float64
	next    int
	active  bool
	at      [2]float64
	xRead   bool
	touched uint64
}

func (f *finger) place() {
	f.at = [2]float64{}
	if len(f.points) > 0 {
		f.at = f.points[f.next%len(f.points)]
		f.next++
	}
	f.active = true
	f.xRead = false
	f.touched = 0
}

func (f *finger) age(us uint64) {
	if !f.active {
		return
	}
	f.touched += us
	if f.touched >= fingerTimeout {
		f.active = false
	}
}

func rawPoint(p [2]float64) (x, y float64) {
	x = panelSkew[0][0]*p[0] + panelSkew[0][1]*p[1] + panelSkew[0][2]
	y = panelSkew[1][0]*p[0] + panelSkew[1][1]*p[1] + panelSkew[1][2]
	return x, y
}

type simTouch struct {
	h *Host
}

func (t *simTouch) Configure(g PanelGeometry) error {
	if g.Width <= 0 || g.Length <= 0 {
		return fmt.Errorf("touch panel geometry %+v: %w", g, ErrNotImplemented)
	}
	t.h.mu.Lock()
	t.h.plant.half = [2]float64{g.Width - g.XCenter, g.Length - g.YCenter}
	t.h.mu.Unlock()
	return nil
}

// point returns the raw reading and contact flag; the caller holds h.mu.
func (t *simTouch) point() (x, y float64, contact bool) {
	f := &t.h.finger
	switch {
	case f.active:
		x, y = rawPoint(f.at)
		return x, y, true
	case t.h.plant.onPlate:
		x, y = rawPoint(t.h.plant.ball)
		return x, y, true
	}
	return 0, 0, false
}

func (t *simTouch) ScanX() float64 {
	t.h.mu.Lock()
	defer t.h.mu.Unlock()
	x, _, _ := t.point()
	if t.h.finger.active {
		t.h.finger.xRead = true
	}
	return x
}

func (t *simTouch) ScanY() float64 {
	t.h.mu.Lock()
	defer t.h.mu.Unlock()
	_, y, _ := t.point()
	if f := &t.h.finger; f.active && f.xRead {
		f.active = false
	}
	return y
}

func (t *simTouch) ScanContact() bool {
	t.h.mu.Lock()
	defer t.h.mu.Unlock()
	_, _, c := t.point()
	return c
}

func (t *simTouch) ScanAll() (x, y float64, contact bool) {
	t.h.mu.Lock()
	defer t.h.mu.Unlock()
	return t.point()
}

// simIMU mimics the fused output of the real sensor mounted under the plate.
type simIMU struct {
	h      *Host
	mode   uint8
	loaded []byte
}

var simBlob = [CalibrationBlobLen]byte{
	0xF6, 0xFF, 0x0B, 0x00, 0xE4, 0xFF,
	0x51, 0x01, 0x2D, 0xFF, 0x8A, 0x00,
	0xFE, 0xFF, 0x00, 0x00, 0x01, 0x00,
	0xE8, 0x03, 0x2C, 0x03,
}

func (m *simIMU) SetMode(mode uint8) error {
	m.mode = mode
	return nil
}

func (m *simIMU) EulerAngles() ([3]float64, error) {
	m.h.mu.Lock()
	defer m.h.mu.Unlock()
	return [3]float64{0, m.h.plant.angle[0], m.h.plant.angle[1]}, nil
}

// The gyro y axis is mounted opposite to the roll angle.
func (m *simIMU) AngularVelocity() ([3]float64, error) {
	m.h.mu.Lock()
	defer m.h.mu.Unlock()
	return [3]float64{m.h.plant.rate[1], -m.h.plant.rate[0], 0}, nil
}

func (m *simIMU) CalibrationStatus() (CalStatus, error) {
	if m.loaded != nil {
		return CalStatus{Sys: 3, Gyro: 3, Accel: 3, Mag: 3}, nil
	}
	m.h.mu.Lock()
	t := m.h.plant.t
	m.h.mu.Unlock()
	score := uint8(math.Min(3, math.Floor(t*3/imuCalTime)))
	return CalStatus{Sys: score, Gyro: score, Accel: score, Mag: score}, nil
}

func (m *simIMU) CalibrationBlob() ([]byte, error) {
	if m.loaded != nil {
		return append([]byte(nil), m.loaded...), nil
	}
	return append([]byte(nil), simBlob[:]...), nil
}

func (m *simIMU) WriteCalibrationBlob(b []byte) error {
	if len(b) != CalibrationBlobLen {
		return fmt.Errorf("calibration blob: got %d bytes, want %d", len(b), CalibrationBlobLen)
	}
	m.loaded = append([]byte(nil), b...)
	return nil
}

type simMotors struct {
	h *Host
}

func (simMotors) Configure(freqHz uint32) error {
	if freqHz == 0 {
		return fmt.Errorf("pwm frequency 0: %w", ErrNotImplemented)
	}
	return nil
}

func (m simMotors) SetPercent(ch MotorChannel, pct float64) {
	if ch >= MotorChannels {
		return
	}
	m.h.mu.Lock()
	m.h.plant.duty[ch] = pct
	m.h.mu.Unlock()
}
