// Package datalog is the Telemetry Task: on request it samples the plant
// state for a fixed window and writes it out as one CSV record.
package datalog

import (
	"bytes"
	"fmt"

	"balancer/board"
	"balancer/kernel"
	"balancer/services/logger"
	"balancer/store"
)

// Header is the first row of every capture.
const Header = "Time[ms], Contact, X_Pos, Y_Pos, X_Vel, Y_Vel, Theta_X, Theta_Y, Theta_X_Vel, Theta_Y_Vel"

// State is the Telemetry Task state.
type State uint8

const (
	StateInit State = iota
	StateUpdate
	StateCollectData
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateUpdate:
		return "update"
	case StateCollectData:
		return "collect"
	default:
		return "unknown"
	}
}

// Config holds the fixed parameters of the task.
type Config struct {
	Period     uint32
	File       string
	DurationMS uint32
}

// Task is the Telemetry Task.
type Task struct {
	cfg    Config
	board  *board.Board
	store  store.Store
	log    *logger.Logger
	period kernel.Period
	state  State

	start    kernel.Tick
	deadline kernel.Tick
	buf      bytes.Buffer
	rows     int

	request *kernel.Queue[kernel.Signal]
}

// New wires the task to the plant shares on b.
func New(cfg Config, b *board.Board, st store.Store, log *logger.Logger) *Task {
	return &Task{
		cfg:     cfg,
		board:   b,
		store:   st,
		log:     log,
		period:  kernel.Every(cfg.Period),
		request: b.StartDataLog,
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
		t.state = StateUpdate

	case StateUpdate:
		if !t.request.Take() {
			return
		}
		if err := t.store.WriteFile(t.cfg.File, nil); err != nil {
			t.log.Printf("truncate %s: %v", t.cfg.File, err)
			return
		}
		t.start = now
		t.deadline = now.Add(t.cfg.DurationMS * 1000)
		t.buf.Reset()
		t.buf.WriteString(Header)
		t.buf.WriteByte('\n')
		t.rows = 0
		t.log.Printf("capturing %d ms to %s", t.cfg.DurationMS, t.cfg.File)
		t.state = StateCollectData

	case StateCollectData:
		if !now.Reached(t.deadline) {
			t.sample(now)
			return
		}
		if err := t.store.AppendFile(t.cfg.File, t.buf.Bytes()); err != nil {
			t.log.Printf("write %s: %v", t.cfg.File, err)
		} else {
			t.log.Printf("%d samples written to %s", t.rows, t.cfg.File)
		}
		t.buf.Reset()
		t.state = StateUpdate
	}
}

func (t *Task) sample(now kernel.Tick) {
	s := t.board.Snapshot()
	fmt.Fprintf(&t.buf, "%d, %t, %g, %g, %g, %g, %g, %g, %g, %g\n",
		kernel.Elapsed(t.start, now)/1000, s.Contact,
		s.XPos, s.YPos, s.XVel, s.YVel,
		s.ThetaX, s.ThetaY, s.ThetaXVel, s.ThetaYVel)
	t.rows++
}
