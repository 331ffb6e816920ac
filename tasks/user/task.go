// Package user is the Operator Interface Task: a single-key command menu on
// the operator serial stream.
package user

import (
	"bytes"
	"fmt"
	"io"

	"balancer/board"
	"balancer/hal"
	"balancer/kernel"
	"balancer/services/logger"
)

// State is the Operator Interface Task state.
type State uint8

const (
	StateInit State = iota
	StatePrintMenu
	StateWaitForInput
	StateBeginBalancing
	StateStopBalancing
	StateGetStatus
	StateCalibrateTouchpanel
	StateStartTelemetry
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StatePrintMenu:
		return "print-menu"
	case StateWaitForInput:
		return "wait-for-input"
	case StateBeginBalancing:
		return "begin-balancing"
	case StateStopBalancing:
		return "stop-balancing"
	case StateGetStatus:
		return "get-status"
	case StateCalibrateTouchpanel:
		return "calibrate-touchpanel"
	case StateStartTelemetry:
		return "start-telemetry"
	default:
		return "unknown"
	}
}

const (
	longRule  = "-------------------------------------------------------------------------------------------"
	shortRule = "----------------------------------------------------"
)

var menu = []string{
	longRule,
	"",
	"",
	"Choose one of the following commands:",
	"",
	"'b'\tBegin balancing of the platform",
	"'s'\tStop balancing of the platform",
	"'d'\tCollect position and velocity data of the platform and the ball",
	"'t'\tCalibrate touchpanel",
	"'i'\tDisplay IMU Status",
	longRule,
}

// Task is the Operator Interface Task.
//
// Each pass reads at most one byte. Output produced during a pass is written
// to out in one call.
type Task struct {
	in     hal.Serial
	out    io.Writer
	log    *logger.Logger
	period kernel.Period
	state  State
	buf    bytes.Buffer

	imuStatus *kernel.Share[hal.CalStatus]

	begin, stop, dataLog, getStatus *kernel.Queue[kernel.Signal]
	calibrate, confirm              *kernel.Queue[kernel.Signal]
	needInput, pointDone, calDone   *kernel.Queue[kernel.Signal]
}

// New wires the task to the operator stream and the mailboxes on b.
func New(period uint32, b *board.Board, in hal.Serial, out io.Writer, log *logger.Logger) *Task {
	return &Task{
		in:        in,
		out:       out,
		log:       log,
		period:    kernel.Every(period),
		imuStatus: b.IMUStatus,
		begin:     b.BeginBalancing,
		stop:      b.StopBalancing,
		dataLog:   b.StartDataLog,
		getStatus: b.GetIMUStatus,
		calibrate: b.CalibrateTouch,
		confirm:   b.TouchConfirm,
		needInput: b.TouchNeedInput,
		pointDone: b.TouchPointDone,
		calDone:   b.TouchCalDone,
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
		t.state = StatePrintMenu

	case StatePrintMenu:
		t.println(menu...)
		t.waitForInput()

	case StateWaitForInput:
		t.dispatch()

	case StateBeginBalancing:
		t.send(t.begin, "begin")
		t.waitForInput()

	case StateStopBalancing:
		t.send(t.stop, "stop")
		t.waitForInput()

	case StateGetStatus:
		st := t.imuStatus.Read()
		sys, gyro, accel, mag := st.Flags()
		t.println(fmt.Sprintf("Calibration Status is: Magnetometer: %t, Acceloremeter: %t, Gyroscope: %t, System: %t",
			mag, accel, gyro, sys))
		t.waitForInput()

	case StateCalibrateTouchpanel:
		t.calibrateTouchpanel()

	case StateStartTelemetry:
		t.send(t.dataLog, "data log")
		t.waitForInput()
	}
	t.flush()
}

func (t *Task) dispatch() {
	c, ok := t.read()
	if !ok {
		return
	}
	switch c {
	case 'b':
		t.state = StateBeginBalancing
	case 's':
		t.state = StateStopBalancing
	case 'i':
		t.send(t.getStatus, "imu status")
		t.state = StateGetStatus
	case 't':
		t.send(t.calibrate, "calibrate")
		t.state = StateCalibrateTouchpanel
	case 'd':
		t.state = StateStartTelemetry
	case '\r', '\n', ' ':
	default:
		t.framed("Unknown user input: Try again")
	}
}

func (t *Task) calibrateTouchpanel() {
	if t.needInput.Take() {
		t.println(shortRule,
			"Calibration of Touchpanel",
			"Touch first point and press g one time and wait until you get a verfication that the point is calibrated.",
			"Then continue doing that for 9 points total.",
			shortRule)
	}
	if c, ok := t.read(); ok && c == 'g' {
		t.send(t.confirm, "confirm")
	}
	if t.pointDone.Take() {
		t.framed("Point calibrated")
	}
	if t.calDone.Take() {
		t.framed("Calibration is finished.")
		t.waitForInput()
	}
}

func (t *Task) waitForInput() {
	t.state = StateWaitForInput
	t.framed("Wait for user input...")
}

func (t *Task) read() (byte, bool) {
	if t.in.Buffered() == 0 {
		return 0, false
	}
	c, err := t.in.ReadByte()
	if err != nil {
		return 0, false
	}
	return c, true
}

func (t *Task) send(q *kernel.Queue[kernel.Signal], what string) {
	if !q.Put(kernel.Signal{}) {
		t.log.Printf("%s request dropped, mailbox full", what)
	}
}

func (t *Task) framed(line string) {
	t.println(shortRule, line, shortRule)
}

func (t *Task) println(lines ...string) {
	for _, l := range lines {
		t.buf.WriteString(l)
		t.buf.WriteString("\r\n")
	}
}

func (t *Task) flush() {
	if t.buf.Len() == 0 {
		return
	}
	if _, err := t.out.Write(t.buf.Bytes()); err != nil {
		t.log.Printf("write: %v", err)
	}
	t.buf.Reset()
}

// Shutdown writes the final message.
func (t *Task) Shutdown() {
	t.println("Program terminating")
	t.flush()
}
