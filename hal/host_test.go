//go:build !tinygo

package hal

import (
	"io"
	"math"
	"testing"
	"time"
)

func TestHostClockFollowsAdvance(t *testing.T) {
	h := NewHost(io.Discard)
	c := h.Clock()
	if got := c.Micros(); got != 0 {
		t.Fatalf("Micros() = %d at start, want 0", got)
	}
	h.Advance(2500 * time.Microsecond)
	if got := c.Micros(); got != 2500 {
		t.Fatalf("Micros() = %d, want 2500", got)
	}

	h.SetMicros(math.MaxUint32 - 99)
	h.Advance(200 * time.Microsecond)
	if got := c.Micros(); got != 100 {
		t.Fatalf("Micros() = %d after wrap, want 100", got)
	}
}

func TestHostFingerLiftsAfterXYPair(t *testing.T) {
	h := NewHost(io.Discard)
	h.SetFingerPoints([][2]float64{{-70, 30}, {0, 0}})
	h.PlaceBall(1000, 0)
	h.Advance(time.Millisecond)

	tp := h.TouchPanel()
	if tp.ScanContact() {
		t.Fatal("contact with the ball off the plate and no finger")
	}

	h.Feed([]byte("g"))
	s := h.Serial()
	if s.Buffered() != 1 {
		t.Fatalf("Buffered() = %d, want 1", s.Buffered())
	}
	if b, err := s.ReadByte(); err != nil || b != 'g' {
		t.Fatalf("ReadByte() = %q, %v", b, err)
	}
	if !tp.ScanContact() {
		t.Fatal("no contact after a 'g' keypress")
	}

	x := tp.ScanX()
	y := tp.ScanY()
	wantX, wantY := rawPoint([2]float64{-70, 30})
	if x != wantX || y != wantY {
		t.Fatalf("scan = (%v, %v), want (%v, %v)", x, y, wantX, wantY)
	}
	if tp.ScanContact() {
		t.Fatal("finger still down after an X/Y pair")
	}
}

func TestHostFingerTimesOut(t *testing.T) {
	h := NewHost(io.Discard)
	h.PlaceBall(1000, 0)
	h.Advance(time.Millisecond)
	h.Feed([]byte("g"))
	_, _ = h.Serial().ReadByte()

	tp := h.TouchPanel()
	if !tp.ScanContact() {
		t.Fatal("no contact after a 'g' keypress")
	}
	h.Advance(1100 * time.Millisecond)
	if tp.ScanContact() {
		t.Fatal("finger did not lift after the timeout")
	}
}

func TestHostIMUCalibrates(t *testing.T) {
	h := NewHost(io.Discard)
	imu := h.IMU()
	st, _ := imu.CalibrationStatus()
	if st.Calibrated() {
		t.Fatal("calibrated at t=0")
	}
	h.Advance(2 * time.Second)
	st, _ = imu.CalibrationStatus()
	if !st.Calibrated() {
		t.Fatalf("not calibrated after 2 s: %+v", st)
	}
	blob, err := imu.CalibrationBlob()
	if err != nil || len(blob) != CalibrationBlobLen {
		t.Fatalf("CalibrationBlob() = %d bytes, %v", len(blob), err)
	}
}

func TestHostMotorDriveTiltsPlate(t *testing.T) {
	h := NewHost(io.Discard)
	h.SetTilt(0, 0)
	m := h.Motors()
	m.SetPercent(Motor1A, 100)
	m.SetPercent(Motor1B, 90)
	h.Advance(50 * time.Millisecond)

	roll, pitch := h.Tilt()
	if roll != 0 {
		t.Fatalf("roll = %v, want 0 with motor 2 idle", roll)
	}
	if pitch >= 0 {
		t.Fatalf("pitch = %v, want negative for positive motor 1 drive", pitch)
	}
	if got := h.Duty(Motor1B); got != 90 {
		t.Fatalf("Duty(Motor1B) = %v, want 90", got)
	}

	rates, _ := h.IMU().AngularVelocity()
	if rates[0] >= 0 {
		t.Fatalf("gyro x = %v, want the pitch rate (negative)", rates[0])
	}
}

func TestHostFramebufferShowsPresentedFrames(t *testing.T) {
	h := NewHost(io.Discard)
	fb := h.fb
	dst := make([]byte, len(fb.front))

	fb.ClearRGB(0xFF, 0, 0)
	if n := fb.frame(dst, 0); n != 0 || dst[0] != 0 {
		t.Fatalf("frame before Present = %d, first byte %#x", n, dst[0])
	}
	if err := fb.Present(); err != nil {
		t.Fatal(err)
	}
	n := fb.frame(dst, 0)
	if n != 1 {
		t.Fatalf("frame = %d, want 1", n)
	}
	if got := ExpandRGB565(uint16(dst[0]) | uint16(dst[1])<<8); got.R != 0xFF || got.G != 0 || got.B != 0 {
		t.Fatalf("presented pixel = %+v, want red", got)
	}
}

func TestRGB565Expand(t *testing.T) {
	for _, c := range [][3]uint8{{0, 0, 0}, {0xFF, 0xFF, 0xFF}, {0xF8, 0x04, 0x10}} {
		p := RGB565(c[0], c[1], c[2])
		got := ExpandRGB565(p)
		if RGB565(got.R, got.G, got.B) != p {
			t.Fatalf("RGB565(%v) = %#04x does not survive expansion (%+v)", c, p, got)
		}
	}
	if got := ExpandRGB565(0xFFFF); got.R != 0xFF || got.G != 0xFF || got.B != 0xFF {
		t.Fatalf("white expands to %+v", got)
	}
}
