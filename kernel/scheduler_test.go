package kernel

import (
	"context"
	"reflect"
	"testing"
)

type fakeClock struct{ now Tick }

func (c *fakeClock) Now() Tick { return c.now }

func TestSchedulerRunsTasksInOrder(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock)

	var got []string
	for _, name := range []string{"user", "touchpanel", "imu", "controller"} {
		name := name
		s.Add(name, TaskFunc(func(Tick) { got = append(got, name) }))
	}
	s.Pass()
	s.Pass()

	want := []string{"user", "touchpanel", "imu", "controller", "user", "touchpanel", "imu", "controller"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if s.Passes() != 2 {
		t.Fatalf("Passes() = %d, want 2", s.Passes())
	}
	if names := s.Names(); len(names) != 4 || names[0] != "user" {
		t.Fatalf("Names() = %v", names)
	}
}

func TestSchedulerIsolatesPanics(t *testing.T) {
	s := NewScheduler(&fakeClock{})

	var infos []PanicInfo
	s.SetPanicHandler(func(info PanicInfo) { infos = append(infos, info) })

	ran := 0
	s.Add("bad", TaskFunc(func(Tick) { panic("boom") }))
	s.Add("good", TaskFunc(func(Tick) { ran++ }))

	s.Pass()
	s.Pass()

	if ran != 2 {
		t.Fatalf("task after a panicking one ran %d times, want 2", ran)
	}
	if len(infos) != 2 {
		t.Fatalf("panic handler called %d times, want 2", len(infos))
	}
	if infos[0].Task != "bad" || infos[0].Value != "boom" || infos[1].Count != 2 {
		t.Fatalf("unexpected panic info: %+v", infos)
	}
	if got := s.Faults("bad"); got != 2 {
		t.Fatalf("Faults(bad) = %d, want 2", got)
	}
	if got := s.Faults("good"); got != 0 {
		t.Fatalf("Faults(good) = %d, want 0", got)
	}
}

func TestSchedulerSamplesClockPerTask(t *testing.T) {
	clock := &fakeClock{now: 100}
	s := NewScheduler(clock)

	var seen []Tick
	s.Add("a", TaskFunc(func(now Tick) { seen = append(seen, now); clock.now += 7 }))
	s.Add("b", TaskFunc(func(now Tick) { seen = append(seen, now) }))
	s.Pass()

	if seen[0] != 100 || seen[1] != 107 {
		t.Fatalf("ticks seen = %v, want [100 107]", seen)
	}
}

func TestSchedulerPeriodicGating(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock)

	p := NewPeriod(0, 5000)
	fired := 0
	s.Add("periodic", TaskFunc(func(now Tick) {
		if p.Due(now) {
			fired++
		}
	}))

	for clock.now = 0; clock.now < 50_000; clock.now += 250 {
		s.Pass()
	}
	if fired != 9 {
		t.Fatalf("fired %d times in 50 ms at 5 ms period, want 9", fired)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	s := NewScheduler(&fakeClock{})
	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	s.Add("stopper", TaskFunc(func(Tick) {
		n++
		if n == 3 {
			cancel()
		}
	}))
	if err := s.Run(ctx); err != context.Canceled {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if n != 3 {
		t.Fatalf("ran %d passes, want 3", n)
	}
}
