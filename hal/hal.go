package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides the screen framebuffer. Boards without a screen return a
// nil Display.
type Display interface {
	Framebuffer() Framebuffer
}

// Flash is a region of NOR flash. Offsets start at the region; writes can
// only clear bits until the block is erased.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Clock is the free-running microsecond counter. It wraps at 2^32.
type Clock interface {
	Micros() uint32
}

// Serial is the operator byte stream.
//
// ReadByte must not block; callers poll Buffered first.
type Serial interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// CalibrationBlobLen is the size of the inertial sensor offset record.
const CalibrationBlobLen = 22

// CalStatus holds the 0..3 calibration scores reported by the inertial sensor.
type CalStatus struct {
	Sys   uint8
	Gyro  uint8
	Accel uint8
	Mag   uint8
}

// Flags reports, per source, whether the score has reached 3.
func (s CalStatus) Flags() (sys, gyro, accel, mag bool) {
	return s.Sys == 3, s.Gyro == 3, s.Accel == 3, s.Mag == 3
}

// Calibrated reports whether every source is fully calibrated.
func (s CalStatus) Calibrated() bool {
	sys, gyro, accel, mag := s.Flags()
	return sys && gyro && accel && mag
}

// IMU is a fused-orientation inertial sensor.
//
// Angles are in degrees and rates in degrees per second, indexed
// [heading, roll, pitch] and [x, y, z].
type IMU interface {
	SetMode(mode uint8) error
	EulerAngles() ([3]float64, error)
	AngularVelocity() ([3]float64, error)
	CalibrationStatus() (CalStatus, error)
	CalibrationBlob() ([]byte, error)
	WriteCalibrationBlob(b []byte) error
}

// PanelGeometry describes a resistive touch panel, in millimetres.
type PanelGeometry struct {
	Width   float64
	Length  float64
	XCenter float64
	YCenter float64
}

// TouchPanel scans a four-wire resistive panel.
//
// Coordinates are raw, uncalibrated millimetres from the panel centre.
type TouchPanel interface {
	Configure(g PanelGeometry) error
	ScanX() float64
	ScanY() float64
	ScanContact() bool
	ScanAll() (x, y float64, contact bool)
}

// MotorChannel selects one half-bridge input.
type MotorChannel uint8

const (
	Motor1A MotorChannel = iota
	Motor1B
	Motor2A
	Motor2B

	MotorChannels = 4
)

// Motors drives the two H-bridge motors with one shared PWM timer.
type Motors interface {
	Configure(freqHz uint32) error
	SetPercent(ch MotorChannel, pct float64)
}

// HAL provides the only contact point between the runtime and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	Flash() Flash
	Clock() Clock
	Serial() Serial
	IMU() IMU
	TouchPanel() TouchPanel
	Motors() Motors
}
