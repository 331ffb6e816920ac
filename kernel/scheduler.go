package kernel

import "context"

// Task is a cooperative unit of work.
//
// Step must return promptly: it checks its own deadline, runs at most one
// state-machine step and never blocks or sleeps.
type Task interface {
	Step(now Tick)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(now Tick)

func (f TaskFunc) Step(now Tick) { f(now) }

type taskEntry struct {
	name   string
	task   Task
	faults uint32
}

// Scheduler runs a fixed list of tasks in registration order, forever.
type Scheduler struct {
	clock   Clock
	tasks   []taskEntry
	passes  uint64
	onPanic func(PanicInfo)
}

// NewScheduler creates a scheduler reading time from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Add appends a task. The order of Add calls is the execution order.
func (s *Scheduler) Add(name string, t Task) {
	s.tasks = append(s.tasks, taskEntry{name: name, task: t})
}

// SetPanicHandler installs the handler called when a task step panics.
func (s *Scheduler) SetPanicHandler(fn func(PanicInfo)) {
	s.onPanic = fn
}

// Pass invokes every task once. The clock is sampled right before each task.
func (s *Scheduler) Pass() {
	for i := range s.tasks {
		s.step(&s.tasks[i])
	}
	s.passes++
}

func (s *Scheduler) step(e *taskEntry) {
	defer func() {
		if r := recover(); r != nil {
			e.faults++
			if s.onPanic != nil {
				s.onPanic(PanicInfo{Task: e.name, Value: r, Count: e.faults, Stack: captureStack()})
			}
		}
	}()
	e.task.Step(s.clock.Now())
}

// Run executes passes until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Pass()
	}
}

// Passes returns the number of completed passes.
func (s *Scheduler) Passes() uint64 { return s.passes }

// Names returns the task names in execution order.
func (s *Scheduler) Names() []string {
	names := make([]string, len(s.tasks))
	for i, e := range s.tasks {
		names[i] = e.name
	}
	return names
}

// Faults returns how many times the named task has panicked.
func (s *Scheduler) Faults(name string) uint32 {
	for _, e := range s.tasks {
		if e.name == name {
			return e.faults
		}
	}
	return 0
}
