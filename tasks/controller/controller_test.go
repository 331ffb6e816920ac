package controller

import (
	"math"
	"testing"

	"balancer/board"
	"balancer/kernel"
)

var gains = []float64{0, -5, 0, -0.2}

type harness struct {
	task *Task
	b    *board.Board
	now  kernel.Tick
}

func newHarness() *harness {
	h := &harness{b: board.New(8)}
	h.task = New(Config{Period: 10_000, Gains: gains}, h.b, nil)
	h.task.Step(h.now)
	h.step()
	return h
}

func (h *harness) step() {
	h.now = h.now.Add(10_000)
	h.task.Step(h.now)
}

func (h *harness) setPlant(x, y, vx, vy, tx, ty, wx, wy float64) {
	h.b.XPos.Write(x)
	h.b.YPos.Write(y)
	h.b.XVel.Write(vx)
	h.b.YVel.Write(vy)
	h.b.ThetaX.Write(tx)
	h.b.ThetaY.Write(ty)
	h.b.ThetaXVel.Write(wx)
	h.b.ThetaYVel.Write(wy)
}

func TestAxisCommand(t *testing.T) {
	a := NewAxis([]float64{1, 2, 3, 4})
	got := a.Command(StateVector(1, 1, 1, 1))
	// -(1 + 2 + 3 - 4)
	if got != -2 {
		t.Fatalf("Command() = %v, want -2", got)
	}
}

func TestInitZeroesAndStops(t *testing.T) {
	b := board.New(8)
	b.MotorX.Write(3)
	b.MotorY.Write(-3)
	task := New(Config{Period: 10_000, Gains: gains}, b, nil)
	task.Step(0)
	task.Step(10_000)
	if task.State() != StateStopBalancing {
		t.Fatalf("state = %v", task.State())
	}
	if b.MotorX.Read() != 0 || b.MotorY.Read() != 0 {
		t.Fatal("outputs not zeroed at init")
	}
	if b.Balancing.Read() {
		t.Fatal("balancing flag set at init")
	}
}

func TestStoppedIgnoresPlant(t *testing.T) {
	h := newHarness()
	h.b.Contact.Write(true)
	h.setPlant(10, 10, 1, 1, 2, 2, 3, 3)
	h.step()
	if h.b.MotorX.Read() != 0 || h.b.MotorY.Read() != 0 {
		t.Fatal("outputs driven while stopped")
	}
}

func TestBalancingOutputIsNegatedGainDot(t *testing.T) {
	h := newHarness()
	h.b.BeginBalancing.Put(kernel.Signal{})
	h.step()
	if h.task.State() != StateBalancing || !h.b.Balancing.Read() {
		t.Fatalf("state = %v, want balancing", h.task.State())
	}

	h.b.Contact.Write(true)
	h.setPlant(10, -20, 1, 2, 1.5, -2.5, 4, -8)
	h.step()

	wantX := -(0*10 + -5*-2.5 + 0*1 + -0.2*8)
	wantY := -(0*-20 + -5*1.5 + 0*2 + -0.2*-4)
	if got := h.b.MotorX.Read(); math.Abs(got-wantX) > 1e-12 {
		t.Fatalf("MotorX = %v, want %v", got, wantX)
	}
	if got := h.b.MotorY.Read(); math.Abs(got-wantY) > 1e-12 {
		t.Fatalf("MotorY = %v, want %v", got, wantY)
	}
}

func TestContactLossZeroesOutputs(t *testing.T) {
	h := newHarness()
	h.b.BeginBalancing.Put(kernel.Signal{})
	h.step()
	h.b.Contact.Write(true)
	h.setPlant(1, 1, 1, 1, 5, 5, 5, 5)
	h.step()
	if h.b.MotorX.Read() == 0 {
		t.Fatal("expected a nonzero command with contact")
	}

	h.b.Contact.Write(false)
	h.setPlant(50, -50, 9, 9, 12, -12, 40, -40)
	h.step()
	if h.b.MotorX.Read() != 0 || h.b.MotorY.Read() != 0 {
		t.Fatalf("outputs = %v, %v, want 0 without contact", h.b.MotorX.Read(), h.b.MotorY.Read())
	}
	if h.task.State() != StateBalancing {
		t.Fatal("contact loss left the balancing state")
	}
}

func TestBeginThenNoContact(t *testing.T) {
	h := newHarness()
	h.b.MotorX.Write(7)
	h.b.MotorY.Write(7)
	h.b.BeginBalancing.Put(kernel.Signal{})
	h.step()
	h.setPlant(3, 3, 3, 3, 3, 3, 3, 3)
	h.step()
	if h.b.MotorX.Read() != 0 || h.b.MotorY.Read() != 0 {
		t.Fatal("outputs not zero after begin with no contact")
	}
}

func TestStopZeroesAndReturns(t *testing.T) {
	h := newHarness()
	h.b.BeginBalancing.Put(kernel.Signal{})
	h.step()
	h.b.Contact.Write(true)
	h.setPlant(0, 0, 0, 0, 4, 4, 0, 0)
	h.step()

	h.b.StopBalancing.Put(kernel.Signal{})
	h.step()
	if h.task.State() != StateStopBalancing || h.b.Balancing.Read() {
		t.Fatalf("state = %v, want stopped", h.task.State())
	}
	if h.b.MotorX.Read() != 0 || h.b.MotorY.Read() != 0 {
		t.Fatal("outputs not zeroed on stop")
	}
}

func TestRepeatedRequestsAreConsumed(t *testing.T) {
	h := newHarness()
	h.b.StopBalancing.Put(kernel.Signal{})
	h.step()
	if h.b.StopBalancing.Len() != 0 {
		t.Fatal("stale stop left queued")
	}

	h.b.BeginBalancing.Put(kernel.Signal{})
	h.step()
	h.b.BeginBalancing.Put(kernel.Signal{})
	h.step()
	h.b.StopBalancing.Put(kernel.Signal{})
	h.step()
	h.step()
	if h.task.State() != StateStopBalancing {
		t.Fatalf("state = %v, a stale begin restarted balancing", h.task.State())
	}
}
