// Package imu is the Sensor Fusion Task: it brings the inertial sensor into
// fusion mode, restores or captures its calibration, and publishes the plate
// tilt angles and rates.
package imu

import (
	"errors"

	"balancer/board"
	"balancer/hal"
	"balancer/kernel"
	"balancer/services/logger"
	"balancer/store"
)

// State is the Sensor Fusion Task state.
type State uint8

const (
	StateInit State = iota
	StateCalibrating
	StateUpdate
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCalibrating:
		return "calibrating"
	case StateUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Config holds the fixed parameters of the task.
type Config struct {
	Period  uint32
	CalFile string
	Mode    uint8
	// InvertYRate flips the sign of the rate published for the y tilt.
	InvertYRate bool
}

// Task is the Sensor Fusion Task.
type Task struct {
	cfg    Config
	dev    hal.IMU
	store  store.Store
	log    *logger.Logger
	period kernel.Period
	state  State

	failing bool

	thetaX, thetaY       *kernel.Share[float64]
	thetaXVel, thetaYVel *kernel.Share[float64]
	status               *kernel.Share[hal.CalStatus]
	statusReq            *kernel.Queue[kernel.Signal]
}

// New wires the task to its shares and mailboxes on b.
func New(cfg Config, b *board.Board, dev hal.IMU, st store.Store, log *logger.Logger) *Task {
	return &Task{
		cfg:       cfg,
		dev:       dev,
		store:     st,
		log:       log,
		period:    kernel.Every(cfg.Period),
		thetaX:    b.ThetaX,
		thetaY:    b.ThetaY,
		thetaXVel: b.ThetaXVel,
		thetaYVel: b.ThetaYVel,
		status:    b.IMUStatus,
		statusReq: b.GetIMUStatus,
	}
}

// State returns the current state.
func (t *Task) State() State { return t.state }

func (t *Task) Step(now kernel.Tick) {
	if !t.period.Due(now) {
		return
	}

	switch t.state {
	case StateInit:
		if err := t.dev.SetMode(t.cfg.Mode); err != nil {
			t.log.Printf("set mode: %v", err)
		}
		if err := t.restore(); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				t.log.Printf("calibration record unusable, recalibrating: %v", err)
			} else {
				t.log.Printf("no calibration record, move the platform to calibrate")
			}
			t.state = StateCalibrating
		} else {
			t.log.Printf("calibration restored from %s", t.cfg.CalFile)
			t.state = StateUpdate
		}
		t.publishStatus()

	case StateCalibrating:
		st, err := t.dev.CalibrationStatus()
		if err != nil {
			t.fault("calibration status", err)
			return
		}
		if t.statusReq.Take() {
			t.status.Write(st)
		}
		if !st.Calibrated() {
			return
		}
		if err := t.capture(); err != nil {
			t.log.Printf("save calibration: %v", err)
		} else {
			t.log.Printf("calibration saved to %s", t.cfg.CalFile)
		}
		t.status.Write(st)
		t.state = StateUpdate

	case StateUpdate:
		if t.statusReq.Take() {
			t.publishStatus()
		}
		euler, err := t.dev.EulerAngles()
		if err != nil {
			t.fault("euler angles", err)
			return
		}
		rates, err := t.dev.AngularVelocity()
		if err != nil {
			t.fault("angular velocity", err)
			return
		}
		t.failing = false
		t.thetaX.Write(euler[1])
		t.thetaY.Write(euler[2])
		t.thetaXVel.Write(rates[1])
		if t.cfg.InvertYRate {
			t.thetaYVel.Write(-rates[0])
		} else {
			t.thetaYVel.Write(rates[0])
		}
	}
}

func (t *Task) restore() error {
	line, err := store.ReadLine(t.store, t.cfg.CalFile)
	if err != nil {
		return err
	}
	blob, err := ParseBlob(line)
	if err != nil {
		return err
	}
	return t.dev.WriteCalibrationBlob(blob)
}

func (t *Task) capture() error {
	blob, err := t.dev.CalibrationBlob()
	if err != nil {
		return err
	}
	return t.store.WriteFile(t.cfg.CalFile, FormatBlob(blob))
}

func (t *Task) publishStatus() {
	st, err := t.dev.CalibrationStatus()
	if err != nil {
		t.fault("calibration status", err)
		return
	}
	t.status.Write(st)
}

// fault logs the first error of a run of failures.
func (t *Task) fault(what string, err error) {
	if t.failing {
		return
	}
	t.failing = true
	t.log.Printf("%s: %v", what, err)
}
