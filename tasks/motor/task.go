// Package motor is the Actuator Task: it turns the two torque commands into
// H-bridge duty cycles.
package motor

import (
	"balancer/board"
	"balancer/hal"
	"balancer/kernel"
	"balancer/services/logger"
)

// State is the Actuator Task state.
type State uint8

const (
	StateInit State = iota
	StateUpdate
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Config holds the fixed parameters of the task.
type Config struct {
	Period uint32
	PWMHz  uint32
	// DutyPerTorque is the duty percentage per unit of commanded torque.
	DutyPerTorque float64
	MaxDuty       float64
}

// Task is the Actuator Task.
//
// Motor 1 is driven by the x command. Motor 2 is mounted mirrored and is
// driven by the negated y command.
type Task struct {
	cfg    Config
	out    hal.Motors
	log    *logger.Logger
	period kernel.Period
	state  State

	motorX, motorY *kernel.Share[float64]
}

// New wires the task to the actuator commands on b.
func New(cfg Config, b *board.Board, out hal.Motors, log *logger.Logger) *Task {
	return &Task{
		cfg:    cfg,
		out:    out,
		log:    log,
		period: kernel.Every(cfg.Period),
		motorX: b.MotorX,
		motorY: b.MotorY,
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
		if err := t.out.Configure(t.cfg.PWMHz); err != nil {
			t.log.Printf("configure pwm: %v", err)
		}
		t.drive(hal.Motor1A, hal.Motor1B, 0)
		t.drive(hal.Motor2A, hal.Motor2B, 0)
		t.state = StateUpdate

	case StateUpdate:
		dx := Duty(t.motorX.Read(), t.cfg.DutyPerTorque, t.cfg.MaxDuty)
		dy := Duty(t.motorY.Read(), t.cfg.DutyPerTorque, t.cfg.MaxDuty)
		t.drive(hal.Motor1A, hal.Motor1B, dx)
		t.drive(hal.Motor2A, hal.Motor2B, -dy)
	}
}

func (t *Task) drive(chA, chB hal.MotorChannel, duty float64) {
	a, b := Channels(duty)
	t.out.SetPercent(chA, a)
	t.out.SetPercent(chB, b)
}
