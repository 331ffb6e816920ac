// Package board holds every Share and Mailbox of the balancer.
//
// A Board is built once at startup and handed to the task constructors, each
// of which keeps references to only the cells it reads or writes. Each Share
// has exactly one writing task, noted on its field.
package board

import (
	"balancer/hal"
	"balancer/kernel"
)

// Board is the context object that replaces module-level globals.
type Board struct {
	// Written by the Position Task.
	XPos    *kernel.Share[float64]
	YPos    *kernel.Share[float64]
	XVel    *kernel.Share[float64]
	YVel    *kernel.Share[float64]
	Contact *kernel.Share[bool]

	// Written by the Sensor Fusion Task.
	ThetaX    *kernel.Share[float64]
	ThetaY    *kernel.Share[float64]
	ThetaXVel *kernel.Share[float64]
	ThetaYVel *kernel.Share[float64]
	IMUStatus *kernel.Share[hal.CalStatus]

	// Written by the Controller Task.
	MotorX    *kernel.Share[float64]
	MotorY    *kernel.Share[float64]
	Balancing *kernel.Share[bool]

	// Operator Interface to tasks.
	BeginBalancing *kernel.Queue[kernel.Signal]
	StopBalancing  *kernel.Queue[kernel.Signal]
	StartDataLog   *kernel.Queue[kernel.Signal]
	GetIMUStatus   *kernel.Queue[kernel.Signal]
	CalibrateTouch *kernel.Queue[kernel.Signal]
	TouchConfirm   *kernel.Queue[kernel.Signal]

	// Position Task to Operator Interface.
	TouchNeedInput *kernel.Queue[kernel.Signal]
	TouchPointDone *kernel.Queue[kernel.Signal]
	TouchCalDone   *kernel.Queue[kernel.Signal]
}

// New builds a board whose mailboxes hold queueSlots items each.
func New(queueSlots int) *Board {
	q := func() *kernel.Queue[kernel.Signal] { return kernel.NewQueue[kernel.Signal](queueSlots) }
	f := func() *kernel.Share[float64] { return kernel.NewShare(0.0) }
	return &Board{
		XPos:      f(),
		YPos:      f(),
		XVel:      f(),
		YVel:      f(),
		Contact:   kernel.NewShare(false),
		ThetaX:    f(),
		ThetaY:    f(),
		ThetaXVel: f(),
		ThetaYVel: f(),
		IMUStatus: kernel.NewShare(hal.CalStatus{}),
		MotorX:    f(),
		MotorY:    f(),
		Balancing: kernel.NewShare(false),

		BeginBalancing: q(),
		StopBalancing:  q(),
		StartDataLog:   q(),
		GetIMUStatus:   q(),
		CalibrateTouch: q(),
		TouchConfirm:   q(),

		TouchNeedInput: q(),
		TouchPointDone: q(),
		TouchCalDone:   q(),
	}
}

// Snapshot is one consistent-enough read of the plant state, used by
// telemetry and the console.
type Snapshot struct {
	Contact              bool
	XPos, YPos           float64
	XVel, YVel           float64
	ThetaX, ThetaY       float64
	ThetaXVel, ThetaYVel float64
	MotorX, MotorY       float64
}

// Snapshot reads every plant Share once.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		Contact:   b.Contact.Read(),
		XPos:      b.XPos.Read(),
		YPos:      b.YPos.Read(),
		XVel:      b.XVel.Read(),
		YVel:      b.YVel.Read(),
		ThetaX:    b.ThetaX.Read(),
		ThetaY:    b.ThetaY.Read(),
		ThetaXVel: b.ThetaXVel.Read(),
		ThetaYVel: b.ThetaYVel.Read(),
		MotorX:    b.MotorX.Read(),
		MotorY:    b.MotorY.Read(),
	}
}
