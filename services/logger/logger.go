// Package logger queues log lines from tasks and writes them out from its
// own scheduler slot, so no task step waits on the log device.
package logger

import (
	"fmt"

	"balancer/hal"
	"balancer/kernel"
)

// DefaultSlots is the line queue depth.
const DefaultSlots = 64

// Service drains queued lines into a hal.Logger.
type Service struct {
	out    hal.Logger
	q      *kernel.Queue[string]
	period kernel.Period

	reported uint32
}

// New returns a service writing to out every period microseconds.
func New(out hal.Logger, period uint32, slots int) *Service {
	if slots <= 0 {
		slots = DefaultSlots
	}
	return &Service{out: out, q: kernel.NewQueue[string](slots), period: kernel.Every(period)}
}

// Tagged returns a Logger prefixing its lines with tag.
func (s *Service) Tagged(tag string) *Logger {
	return &Logger{tag: tag, q: s.q}
}

func (s *Service) Step(now kernel.Tick) {
	if !s.period.Due(now) {
		return
	}
	s.Flush()
}

// Flush writes every queued line.
func (s *Service) Flush() {
	if s.out == nil {
		return
	}
	for {
		line, ok := s.q.Get()
		if !ok {
			break
		}
		s.out.WriteLineString(line)
	}
	if d := s.q.Dropped(); d != s.reported {
		s.out.WriteLineString(fmt.Sprintf("logger: dropped %d lines", d-s.reported))
		s.reported = d
	}
}

// Logger formats lines for one component.
type Logger struct {
	tag string
	q   *kernel.Queue[string]
}

// Printf queues one formatted line. It never blocks; lines are dropped when
// the queue is full.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.q.Put(l.tag + ": " + fmt.Sprintf(format, args...))
}
