// Package controller is the Controller Task: it closes the loop from ball
// position and plate tilt to the two motor torque commands.
package controller

import (
	"balancer/board"
	"balancer/kernel"
	"balancer/services/logger"
)

// State is the Controller Task state.
type State uint8

const (
	StateInit State = iota
	StateStopBalancing
	StateBalancing
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStopBalancing:
		return "stopped"
	case StateBalancing:
		return "balancing"
	default:
		return "unknown"
	}
}

// Config holds the fixed parameters of the task.
type Config struct {
	Period uint32
	// Gains is applied to both axes.
	Gains []float64
}

// Task is the Controller Task.
//
// A request that repeats the current state is consumed and ignored.
//
// The x motor tilts the plate about the y axis, so the x state pairs the ball
// x position with the y tilt, and the other way round.
type Task struct {
	cfg    Config
	log    *logger.Logger
	period kernel.Period
	state  State

	x, y Axis

	xPos, yPos, xVel, yVel *kernel.Share[float64]
	contact                *kernel.Share[bool]
	thetaX, thetaY         *kernel.Share[float64]
	thetaXVel, thetaYVel   *kernel.Share[float64]

	motorX, motorY *kernel.Share[float64]
	balancing      *kernel.Share[bool]

	begin, stop *kernel.Queue[kernel.Signal]
}

// New wires the task to its shares and mailboxes on b.
func New(cfg Config, b *board.Board, log *logger.Logger) *Task {
	return &Task{
		cfg:       cfg,
		log:       log,
		period:    kernel.Every(cfg.Period),
		xPos:      b.XPos,
		yPos:      b.YPos,
		xVel:      b.XVel,
		yVel:      b.YVel,
		contact:   b.Contact,
		thetaX:    b.ThetaX,
		thetaY:    b.ThetaY,
		thetaXVel: b.ThetaXVel,
		thetaYVel: b.ThetaYVel,
		motorX:    b.MotorX,
		motorY:    b.MotorY,
		balancing: b.Balancing,
		begin:     b.BeginBalancing,
		stop:      b.StopBalancing,
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
		t.x = NewAxis(t.cfg.Gains)
		t.y = NewAxis(t.cfg.Gains)
		t.zero()
		t.setState(StateStopBalancing)

	case StateStopBalancing:
		t.stop.Take()
		if t.begin.Take() {
			t.log.Printf("balancing started")
			t.setState(StateBalancing)
		}

	case StateBalancing:
		t.begin.Take()
		if t.stop.Take() {
			t.zero()
			t.log.Printf("balancing stopped")
			t.setState(StateStopBalancing)
			return
		}
		if !t.contact.Read() {
			t.zero()
			return
		}
		xs := StateVector(t.xPos.Read(), t.thetaY.Read(), t.xVel.Read(), t.thetaYVel.Read())
		ys := StateVector(t.yPos.Read(), t.thetaX.Read(), t.yVel.Read(), t.thetaXVel.Read())
		t.motorX.Write(t.x.Command(xs))
		t.motorY.Write(t.y.Command(ys))
	}
}

func (t *Task) setState(s State) {
	t.state = s
	t.balancing.Write(s == StateBalancing)
}

func (t *Task) zero() {
	t.motorX.Write(0)
	t.motorY.Write(0)
}
