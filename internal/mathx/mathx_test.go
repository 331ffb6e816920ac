package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(150.0, -100, 100); got != 100 {
		t.Fatalf("Clamp(150) = %v, want 100", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Fatalf("Clamp(-3) = %v, want 0", got)
	}
	if got := Clamp(uint8(7), 0, 10); got != 7 {
		t.Fatalf("Clamp(7) = %v, want 7", got)
	}
}

func TestMapRange(t *testing.T) {
	cases := []struct {
		v, want float64
	}{
		{v: -88, want: 0},
		{v: 0, want: 160},
		{v: 88, want: 320},
	}
	for _, tc := range cases {
		if got := MapRange(tc.v, -88, 88, 0, 320); got != tc.want {
			t.Fatalf("MapRange(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestAbsDot(t *testing.T) {
	if Abs(-2.5) != 2.5 || Abs(int32(-4)) != 4 {
		t.Fatal("Abs mismatch")
	}
	if got := Dot([]float64{1, 2, 3}, []float64{4, -5, 6}); got != 12 {
		t.Fatalf("Dot() = %v, want 12", got)
	}
}
