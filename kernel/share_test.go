package kernel

import (
	"runtime"
	"sync"
	"testing"
)

func TestShareReadReturnsLastWrite(t *testing.T) {
	s := NewShare(1.5)
	if got := s.Read(); got != 1.5 {
		t.Fatalf("Read() = %v, want initial 1.5", got)
	}
	s.Write(-2.25)
	for i := 0; i < 5; i++ {
		if got := s.Read(); got != -2.25 {
			t.Fatalf("Read() #%d = %v, want -2.25", i, got)
		}
	}
	if got := s.Seq(); got != 1 {
		t.Fatalf("Seq() = %d, want 1", got)
	}
}

func TestShareZeroValueDefault(t *testing.T) {
	var s Share[bool]
	if s.Read() {
		t.Fatal("zero Share[bool] read true")
	}
}

type pair struct{ a, b int }

func TestShareNeverTorn(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(4)
	defer runtime.GOMAXPROCS(oldProcs)

	s := NewShare(pair{})
	const writes = 20_000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= writes; i++ {
			s.Write(pair{a: i, b: -i})
		}
	}()

	for i := 0; i < writes; i++ {
		v := s.Read()
		if v.a != -v.b {
			t.Fatalf("torn read: %+v", v)
		}
	}
	wg.Wait()
}
