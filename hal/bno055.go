package hal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// BNO055 register map (page 0).
const (
	bnoAddress = 0x28

	bnoRegChipID    = 0x00
	bnoRegGyrData   = 0x14
	bnoRegEulData   = 0x1A
	bnoRegCalibStat = 0x35
	bnoRegOprMode   = 0x3D
	bnoRegOffsets   = 0x55

	bnoChipID = 0xA0

	// BNOModeConfig is the only mode in which offsets may be written.
	BNOModeConfig = 0x00
	// BNOModeNDOF is the nine-degrees-of-freedom fusion mode.
	BNOModeNDOF = 0x0C

	// One LSB is 1/16 degree (or degree per second) in the default unit selection.
	bnoLSBPerUnit = 16.0
)

var ErrBNOChipID = errors.New("bno055: unexpected chip id")

// BNO055 is a Bosch BNO055 absolute orientation sensor on an I2C bus.
type BNO055 struct {
	bus     drivers.I2C
	address uint16
	mode    uint8

	// Sleep waits out mode switch latency. Nil skips waiting.
	Sleep func(time.Duration)

	buf [CalibrationBlobLen + 1]byte
}

// NewBNO055 returns a driver for the sensor at the default address.
func NewBNO055(bus drivers.I2C) *BNO055 {
	return &BNO055{bus: bus, address: bnoAddress, mode: BNOModeConfig, Sleep: time.Sleep}
}

// Connected reports whether the chip id register reads back as expected.
func (d *BNO055) Connected() error {
	var id [1]byte
	if err := d.read(bnoRegChipID, id[:]); err != nil {
		return err
	}
	if id[0] != bnoChipID {
		return fmt.Errorf("%w: 0x%02x", ErrBNOChipID, id[0])
	}
	return nil
}

// SetMode switches the operating mode.
func (d *BNO055) SetMode(mode uint8) error {
	if err := d.write(bnoRegOprMode, []byte{mode}); err != nil {
		return fmt.Errorf("bno055 set mode 0x%02x: %w", mode, err)
	}
	prev := d.mode
	d.mode = mode
	if d.Sleep != nil {
		if mode == BNOModeConfig || prev == BNOModeConfig {
			d.Sleep(20 * time.Millisecond)
		}
	}
	return nil
}

// Mode returns the last mode written.
func (d *BNO055) Mode() uint8 { return d.mode }

// EulerAngles returns heading, roll and pitch in degrees.
func (d *BNO055) EulerAngles() ([3]float64, error) {
	return d.readVector(bnoRegEulData)
}

// AngularVelocity returns the gyro rates about x, y and z in degrees per second.
func (d *BNO055) AngularVelocity() ([3]float64, error) {
	return d.readVector(bnoRegGyrData)
}

// CalibrationStatus decodes the CALIB_STAT register.
func (d *BNO055) CalibrationStatus() (CalStatus, error) {
	var b [1]byte
	if err := d.read(bnoRegCalibStat, b[:]); err != nil {
		return CalStatus{}, err
	}
	v := b[0]
	return CalStatus{
		Sys:   (v >> 6) & 0x03,
		Gyro:  (v >> 4) & 0x03,
		Accel: (v >> 2) & 0x03,
		Mag:   v & 0x03,
	}, nil
}

// CalibrationBlob reads the 22 offset and radius registers.
func (d *BNO055) CalibrationBlob() ([]byte, error) {
	blob := make([]byte, CalibrationBlobLen)
	if err := d.read(bnoRegOffsets, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// WriteCalibrationBlob writes the offset registers. The sensor is switched to
// CONFIG mode for the write and returned to its previous mode afterwards.
func (d *BNO055) WriteCalibrationBlob(b []byte) error {
	if len(b) != CalibrationBlobLen {
		return fmt.Errorf("bno055 calibration blob: got %d bytes, want %d", len(b), CalibrationBlobLen)
	}
	prev := d.mode
	if prev != BNOModeConfig {
		if err := d.SetMode(BNOModeConfig); err != nil {
			return err
		}
	}
	if err := d.write(bnoRegOffsets, b); err != nil {
		return err
	}
	if prev != BNOModeConfig {
		return d.SetMode(prev)
	}
	return nil
}

func (d *BNO055) readVector(reg uint8) ([3]float64, error) {
	var raw [6]byte
	if err := d.read(reg, raw[:]); err != nil {
		return [3]float64{}, err
	}
	var v [3]float64
	for i := range v {
		v[i] = float64(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / bnoLSBPerUnit
	}
	return v, nil
}

func (d *BNO055) read(reg uint8, p []byte) error {
	if err := d.bus.Tx(d.address, []byte{reg}, p); err != nil {
		return fmt.Errorf("bno055 read 0x%02x: %w", reg, err)
	}
	return nil
}

func (d *BNO055) write(reg uint8, p []byte) error {
	w := d.buf[:len(p)+1]
	w[0] = reg
	copy(w[1:], p)
	if err := d.bus.Tx(d.address, w, nil); err != nil {
		return fmt.Errorf("bno055 write 0x%02x: %w", reg, err)
	}
	return nil
}
