// Package touchpanel is the Position Task: it scans the resistive panel,
// maps and filters the ball position, and runs the guided nine-point
// calibration.
package touchpanel

import (
	"errors"

	"balancer/board"
	"balancer/hal"
	"balancer/kernel"
	"balancer/services/logger"
	"balancer/store"
)

// State is the Position Task state.
type State uint8

const (
	StateInit State = iota
	StateUpdate
	StateCalibrate
	StateWriteFile
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateUpdate:
		return "update"
	case StateCalibrate:
		return "calibrate"
	case StateWriteFile:
		return "write-file"
	default:
		return "unknown"
	}
}

// Config holds the fixed parameters of the task.
type Config struct {
	Period   uint32
	Geometry hal.PanelGeometry

	Alpha float64
	Beta  float64
	// SampleTime is the filter period in seconds.
	SampleTime float64

	CalFile    string
	Sequential bool
	ColumnFit  bool
	Reference  [][2]float64
}

// Task is the Position Task.
type Task struct {
	cfg    Config
	panel  hal.TouchPanel
	store  store.Store
	log    *logger.Logger
	period kernel.Period
	state  State

	cal     Calibration
	pending Calibration
	fx, fy  AlphaBeta
	samples [][2]float64

	xPos, yPos, xVel, yVel *kernel.Share[float64]
	contact                *kernel.Share[bool]

	calibrate, confirm            *kernel.Queue[kernel.Signal]
	needInput, pointDone, calDone *kernel.Queue[kernel.Signal]
}

// New wires the task to its shares and mailboxes on b.
func New(cfg Config, b *board.Board, panel hal.TouchPanel, st store.Store, log *logger.Logger) *Task {
	return &Task{
		cfg:     cfg,
		panel:   panel,
		store:   st,
		log:     log,
		period:  kernel.Every(cfg.Period),
		cal:     Identity(),
		fx:      AlphaBeta{Alpha: cfg.Alpha, Beta: cfg.Beta, T: cfg.SampleTime},
		fy:      AlphaBeta{Alpha: cfg.Alpha, Beta: cfg.Beta, T: cfg.SampleTime},
		samples: make([][2]float64, 0, len(cfg.Reference)),

		xPos:    b.XPos,
		yPos:    b.YPos,
		xVel:    b.XVel,
		yVel:    b.YVel,
		contact: b.Contact,

		calibrate: b.CalibrateTouch,
		confirm:   b.TouchConfirm,
		needInput: b.TouchNeedInput,
		pointDone: b.TouchPointDone,
		calDone:   b.TouchCalDone,
	}
}

// State returns the current state.
func (t *Task) State() State { return t.state }

// Calibration returns the calibration in use.
func (t *Task) Calibration() Calibration { return t.cal }

func (t *Task) Step(now kernel.Tick) {
	if !t.period.Due(now) {
		return
	}

	switch t.state {
	case StateInit:
		if err := t.panel.Configure(t.cfg.Geometry); err != nil {
			t.log.Printf("configure panel: %v", err)
		}
		if cal, err := t.load(); err == nil {
			t.cal = cal
			t.log.Printf("calibration loaded from %s", t.cfg.CalFile)
		}
		t.state = StateUpdate

	case StateUpdate:
		if t.calibrate.Take() {
			cal, err := t.load()
			if err == nil {
				t.cal = cal
				t.calDone.Put(kernel.Signal{})
			} else {
				if !errors.Is(err, store.ErrNotFound) {
					t.log.Printf("discarding calibration record: %v", err)
				}
				t.samples = t.samples[:0]
				t.state = StateCalibrate
				t.needInput.Put(kernel.Signal{})
			}
		}
		t.publish()

	case StateCalibrate:
		want := len(t.cfg.Reference)
		if len(t.samples) < want && t.panel.ScanContact() && t.confirm.Take() {
			x := t.panel.ScanX()
			y := t.panel.ScanY()
			t.samples = append(t.samples, [2]float64{x, y})
			t.pointDone.Put(kernel.Signal{})
		}
		if len(t.samples) >= want {
			cal, err := Fit(t.cfg.Reference, t.samples, t.cfg.ColumnFit)
			if err != nil {
				t.log.Printf("fit failed, collecting points again: %v", err)
				t.samples = t.samples[:0]
				t.needInput.Put(kernel.Signal{})
				return
			}
			t.pending = cal
			t.state = StateWriteFile
		}

	case StateWriteFile:
		if err := t.store.WriteFile(t.cfg.CalFile, t.pending.Record()); err != nil {
			t.log.Printf("save calibration: %v", err)
		}
		t.cal = t.pending
		t.calDone.Put(kernel.Signal{})
		t.state = StateUpdate
	}
}

func (t *Task) load() (Calibration, error) {
	line, err := store.ReadLine(t.store, t.cfg.CalFile)
	if err != nil {
		return Calibration{}, err
	}
	return ParseRecord(line)
}

func (t *Task) publish() {
	x, y, contact := t.panel.ScanAll()
	x, y = t.cal.Apply(x, y, t.cfg.Sequential)
	xp, xv := t.fx.Update(x)
	yp, yv := t.fy.Update(y)
	t.xPos.Write(xp)
	t.yPos.Write(yp)
	t.xVel.Write(xv)
	t.yVel.Write(yv)
	t.contact.Write(contact)
}
