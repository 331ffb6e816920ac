//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Host is the desktop HAL: a simulated ball-on-plate rig.
//
// Simulated time only moves when Advance is called, so the same Host serves
// both the wall-clock runners and deterministic tests.
type Host struct {
	logger *hostLogger
	led    *hostLED
	fb     *hostFramebuffer
	serial *hostSerial
	imu    *simIMU
	touch  *simTouch
	flash  *MemFlash

	mu     sync.Mutex
	micros uint64
	plant  plant
	finger finger
}

// NewHost returns a simulator that logs and echoes operator output to out.
func NewHost(out io.Writer) *Host {
	logger := &hostLogger{w: out}
	h := &Host{
		logger: logger,
		led:    &hostLED{logger: logger},
		fb:     newHostFramebuffer(320, 240),
	}
	h.serial = &hostSerial{w: out, onRead: h.operatorByte}
	h.imu = &simIMU{h: h, mode: BNOModeConfig}
	h.touch = &simTouch{h: h}
	h.flash = NewMemFlash(4096, 64)
	h.plant.reset()
	return h
}

func (h *Host) Logger() Logger         { return h.logger }
func (h *Host) LED() LED               { return h.led }
func (h *Host) Display() Display       { return hostDisplay{fb: h.fb} }
func (h *Host) Flash() Flash           { return h.flash }
func (h *Host) Clock() Clock           { return hostClock{h: h} }
func (h *Host) Serial() Serial         { return h.serial }
func (h *Host) IMU() IMU               { return h.imu }
func (h *Host) TouchPanel() TouchPanel { return h.touch }
func (h *Host) Motors() Motors         { return simMotors{h: h} }

// Advance moves simulated time forward, integrating the plant in 1 ms steps.
func (h *Host) Advance(d time.Duration) {
	us := uint64(d / time.Microsecond)
	h.mu.Lock()
	defer h.mu.Unlock()
	for us > 0 {
		s := us
		if s > 1000 {
			s = 1000
		}
		h.micros += s
		h.plant.step(float64(s) / 1e6)
		h.finger.age(s)
		us -= s
	}
}

// SetMicros moves the clock to us without integrating the plant.
func (h *Host) SetMicros(us uint32) {
	h.mu.Lock()
	h.micros = uint64(us)
	h.mu.Unlock()
}

// Feed queues operator input as if it had arrived on the serial line.
func (h *Host) Feed(p []byte) { h.serial.feed(p) }

// SetFingerPoints sets the positions, in physical millimetres, at which
// successive 'g' keypresses place a simulated finger.
func (h *Host) SetFingerPoints(pts [][2]float64) {
	h.mu.Lock()
	h.finger.points = append([][2]float64(nil), pts...)
	h.finger.next = 0
	h.mu.Unlock()
}

// PlaceBall puts the ball at rest at (x, y) millimetres from the plate centre.
func (h *Host) PlaceBall(x, y float64) {
	h.mu.Lock()
	h.plant.placeBall(x, y)
	h.mu.Unlock()
}

// Tilt returns the plate roll and pitch in degrees.
func (h *Host) Tilt() (roll, pitch float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plant.angle[0], h.plant.angle[1]
}

// SetTilt sets the plate roll and pitch in degrees, at rest.
func (h *Host) SetTilt(roll, pitch float64) {
	h.mu.Lock()
	h.plant.angle = [2]float64{roll, pitch}
	h.plant.rate = [2]float64{}
	h.mu.Unlock()
}

// Duty returns the last percentage written to a motor channel.
func (h *Host) Duty(ch MotorChannel) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plant.duty[ch]
}

func (h *Host) operatorByte(b byte) {
	if b != 'g' {
		return
	}
	h.mu.Lock()
	h.finger.place()
	h.mu.Unlock()
}

type hostClock struct {
	h *Host
}

func (c hostClock) Micros() uint32 {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	return uint32(c.h.micros)
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = true
	l.logger.WriteLineString("led: HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
	l.logger.WriteLineString("led: LOW")
}

type hostSerial struct {
	mu     sync.Mutex
	in     []byte
	w      io.Writer
	onRead func(b byte)
}

func (s *hostSerial) feed(p []byte) {
	s.mu.Lock()
	s.in = append(s.in, p...)
	s.mu.Unlock()
}

func (s *hostSerial) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.in)
}

func (s *hostSerial) ReadByte() (byte, error) {
	s.mu.Lock()
	if len(s.in) == 0 {
		s.mu.Unlock()
		return 0, io.EOF
	}
	b := s.in[0]
	s.in = s.in[1:]
	s.mu.Unlock()
	if s.onRead != nil {
		s.onRead(b)
	}
	return b, nil
}

func (s *hostSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNotImplemented
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
