package console

import (
	"image/color"
	"testing"

	"balancer/board"
	"balancer/hal"
	"balancer/kernel"
)

type fakeFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newFakeFB(w, h int) *fakeFB { return &fakeFB{w: w, h: h, buf: make([]byte, w*h*2)} }

func (f *fakeFB) Width() int                   { return f.w }
func (f *fakeFB) Height() int                  { return f.h }
func (f *fakeFB) Format() hal.PixelFormat      { return hal.PixelFormatRGB565 }
func (f *fakeFB) StrideBytes() int             { return f.w * 2 }
func (f *fakeFB) Buffer() []byte               { return f.buf }
func (f *fakeFB) ClearRGB(r, g, b uint8)       { clear(f.buf) }
func (f *fakeFB) Framebuffer() hal.Framebuffer { return f }

func (f *fakeFB) Present() error {
	f.presents++
	return nil
}

func (f *fakeFB) pixel(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

type fakeLED struct {
	on      bool
	changes int
}

func (l *fakeLED) High() {
	l.on = true
	l.changes++
}

func (l *fakeLED) Low() {
	l.on = false
	l.changes++
}

var geometry = hal.PanelGeometry{Width: 176, Length: 100, XCenter: 88, YCenter: 50}

func rgb(c color.RGBA) uint16 { return hal.RGB565(c.R, c.G, c.B) }

type harness struct {
	svc *Service
	fb  *fakeFB
	led *fakeLED
	b   *board.Board
	now kernel.Tick
}

func newHarness() *harness {
	h := &harness{fb: newFakeFB(320, 240), led: &fakeLED{}, b: board.New(8)}
	h.svc = New(Config{Period: 50_000, Geometry: geometry}, h.b, h.fb, h.led)
	h.svc.Step(h.now)
	return h
}

func (h *harness) step() {
	h.now = h.now.Add(50_000)
	h.svc.Step(h.now)
}

func TestLEDFollowsBalancing(t *testing.T) {
	h := newHarness()
	h.step()
	if h.led.on || h.led.changes != 1 {
		t.Fatalf("led on=%v changes=%d, want off once", h.led.on, h.led.changes)
	}
	h.b.Balancing.Write(true)
	h.step()
	h.step()
	if !h.led.on || h.led.changes != 2 {
		t.Fatalf("led on=%v changes=%d, want on after one change", h.led.on, h.led.changes)
	}
}

func TestBallDrawnAtPlateCentre(t *testing.T) {
	h := newHarness()
	h.b.Contact.Write(true)
	h.step()

	x0, y0, x1, y1 := h.svc.plateBox()
	cx := int((x0 + x1) / 2)
	cy := statusHeight + int((y0+y1)/2)
	if got := h.fb.pixel(cx, cy); got != rgb(colorBall) {
		t.Fatalf("centre pixel = %#04x, want ball", got)
	}
	if h.fb.presents == 0 {
		t.Fatal("frame not presented")
	}

	h.b.Contact.Write(false)
	h.step()
	if got := h.fb.pixel(cx, cy); got != rgb(colorPlate) {
		t.Fatalf("centre pixel = %#04x without contact, want plate", got)
	}
}

func TestPlateBoxKeepsAspect(t *testing.T) {
	h := newHarness()
	x0, y0, x1, y1 := h.svc.plateBox()
	ratio := (x1 - x0) / (y1 - y0)
	if ratio < 1.75 || ratio > 1.77 {
		t.Fatalf("aspect = %v, want 1.76", ratio)
	}
}

func TestOperatorOutputReachesTerminal(t *testing.T) {
	h := newHarness()
	h.step()
	top := statusHeight + plateHeight
	lit := func() int {
		n := 0
		for y := top; y < h.fb.h; y++ {
			for x := 0; x < h.fb.w; x++ {
				if h.fb.pixel(x, y) != 0 {
					n++
				}
			}
		}
		return n
	}
	if lit() != 0 {
		t.Fatal("terminal pane not blank")
	}
	_, _ = h.svc.Write([]byte("'b'\tBegin balancing of the platform\r\n"))
	h.step()
	if lit() == 0 {
		t.Fatal("terminal pane still blank after output")
	}
	if len(h.svc.pending) != 0 {
		t.Fatal("pending output not drained")
	}
}

func TestFaultBanner(t *testing.T) {
	h := newHarness()
	h.svc.Fault("controller panicked")
	h.step()
	if got := h.fb.pixel(h.fb.w-1, 0); got != rgb(colorFault) {
		t.Fatalf("status pixel = %#04x, want fault colour", got)
	}
	h.svc.Fault("")
	h.step()
	if got := h.fb.pixel(h.fb.w-1, 0); got != rgb(colorHeader) {
		t.Fatalf("status pixel = %#04x after clearing, want header colour", got)
	}
}

func TestWithoutDisplay(t *testing.T) {
	led := &fakeLED{}
	b := board.New(8)
	s := New(Config{Period: 50_000, Geometry: geometry}, b, nil, led)
	if n, err := s.Write([]byte("hello")); n != 5 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	b.Balancing.Write(true)
	s.Step(0)
	s.Step(50_000)
	if !led.on {
		t.Fatal("led not driven without a display")
	}
}

func TestRegionScrollUp(t *testing.T) {
	fb := newFakeFB(4, 10)
	r := newRegion(fb, 2, 4)
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	_ = r.FillRectangle(0, 3, 4, 1, white)
	_ = r.ScrollUp(2, colorBG)
	if fb.pixel(0, 2+1) != 0xffff {
		t.Fatal("row not moved up")
	}
	if fb.pixel(0, 2+3) != 0 {
		t.Fatal("exposed row not cleared")
	}
	if fb.pixel(0, 1) != 0 || fb.pixel(0, 6) != 0 {
		t.Fatal("scroll touched rows outside the region")
	}
}
