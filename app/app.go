// Package app assembles the balancer: one Board, the tasks in their fixed
// order, and the supporting logger and console services.
package app

import (
	"context"
	"fmt"
	"io"

	"balancer/board"
	"balancer/config"
	"balancer/hal"
	"balancer/internal/buildinfo"
	"balancer/kernel"
	"balancer/services/console"
	"balancer/services/logger"
	"balancer/store"
	"balancer/tasks/controller"
	"balancer/tasks/datalog"
	"balancer/tasks/imu"
	"balancer/tasks/motor"
	"balancer/tasks/touchpanel"
	"balancer/tasks/user"
)

// Order is the scheduler order of the tasks, by name.
var Order = []string{"user", "touchpanel", "imu", "controller", "motor", "datalog", "console", "logger"}

// System is a wired balancer ready to run.
type System struct {
	Config config.Config
	Board  *board.Board

	sched   *kernel.Scheduler
	logs    *logger.Service
	console *console.Service
	user    *user.Task

	Touch      *touchpanel.Task
	IMU        *imu.Task
	Controller *controller.Task
	Motor      *motor.Task
	Datalog    *datalog.Task
}

// New builds the system on h, persisting records to st.
func New(h hal.HAL, st store.Store, cfg config.Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := cfg.Periods
	b := board.New(cfg.QueueSlots)
	logs := logger.New(h.Logger(), p.Logger, logger.DefaultSlots)

	s := &System{
		Config: cfg,
		Board:  b,
		logs:   logs,
	}
	s.console = console.New(console.Config{Period: p.Console, Geometry: geometry(cfg.Touch)}, b, h.Display(), h.LED())

	var out io.Writer = s.console
	if ser := h.Serial(); ser != nil {
		out = io.MultiWriter(ser, s.console)
	}
	s.user = user.New(p.User, b, h.Serial(), out, logs.Tagged("user"))

	s.Touch = touchpanel.New(touchpanel.Config{
		Period:     p.Touchpanel,
		Geometry:   geometry(cfg.Touch),
		Alpha:      cfg.Touch.Alpha,
		Beta:       cfg.Touch.Beta,
		SampleTime: cfg.Touch.FilterPeriod(p.Touchpanel),
		CalFile:    cfg.Touch.CalFile,
		Sequential: cfg.Touch.SequentialMap,
		ColumnFit:  cfg.Touch.ColumnFit,
		Reference:  cfg.Touch.Points(),
	}, b, h.TouchPanel(), st, logs.Tagged("touchpanel"))

	s.IMU = imu.New(imu.Config{
		Period:      p.IMU,
		CalFile:     cfg.IMU.CalFile,
		Mode:        cfg.IMU.Mode,
		InvertYRate: cfg.IMU.InvertYRate,
	}, b, h.IMU(), st, logs.Tagged("imu"))

	s.Controller = controller.New(controller.Config{
		Period: p.Controller,
		Gains:  cfg.Controller.Gains,
	}, b, logs.Tagged("controller"))

	s.Motor = motor.New(motor.Config{
		Period:        p.Motor,
		PWMHz:         cfg.Motor.PWMHz,
		DutyPerTorque: cfg.Motor.DutyPerTorque(),
		MaxDuty:       cfg.Motor.MaxDuty,
	}, b, h.Motors(), logs.Tagged("motor"))

	s.Datalog = datalog.New(datalog.Config{
		Period:     p.Datalog,
		File:       cfg.Telemetry.File,
		DurationMS: cfg.Telemetry.DurationMS,
	}, b, st, logs.Tagged("datalog"))

	clock := h.Clock()
	s.sched = kernel.NewScheduler(kernel.ClockFunc(func() kernel.Tick {
		return kernel.Tick(clock.Micros())
	}))
	tasks := []kernel.Task{s.user, s.Touch, s.IMU, s.Controller, s.Motor, s.Datalog, s.console, logs}
	for i, t := range tasks {
		s.sched.Add(Order[i], t)
	}
	s.sched.SetPanicHandler(newPanicHandler(h.Logger(), s.console).handle)

	if l := h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("balancer %s: %d tasks", buildinfo.Short(), len(tasks)))
	}
	return s, nil
}

// Pass runs every task once.
func (s *System) Pass() { s.sched.Pass() }

// Run runs passes until ctx is cancelled.
func (s *System) Run(ctx context.Context) error { return s.sched.Run(ctx) }

// Faults returns how many times the named task has panicked.
func (s *System) Faults(name string) uint32 { return s.sched.Faults(name) }

// Shutdown drains the log queue and prints the final operator message.
func (s *System) Shutdown() {
	s.logs.Flush()
	s.user.Shutdown()
}

func geometry(t config.Touch) hal.PanelGeometry {
	return hal.PanelGeometry{Width: t.Width, Length: t.Length, XCenter: t.XCenter, YCenter: t.YCenter}
}
