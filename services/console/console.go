// Package console draws the on-screen operator console: a status line, a top
// view of the plate with the ball, and a scrolling copy of the operator
// output. It also drives the status LED.
package console

import (
	"fmt"
	"image/color"

	"balancer/board"
	"balancer/hal"
	"balancer/internal/mathx"
	"balancer/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	fontHeight = 10
	fontOffset = 6

	statusHeight = 12
	plateHeight  = 76
	ballSize     = 5

	// pendingLimit bounds operator output held between passes.
	pendingLimit = 4096
)

var (
	colorBG      = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	colorFG      = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorHeader  = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}
	colorFault   = color.RGBA{R: 0xb0, G: 0x10, B: 0x10, A: 0xff}
	colorPlate   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	colorEdge    = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	colorBall    = color.RGBA{R: 0xff, G: 0xdd, B: 0x66, A: 0xff}
	colorActive  = color.RGBA{R: 0x4a, G: 0xdf, B: 0x6a, A: 0xff}
	colorStopped = color.RGBA{R: 0xdf, G: 0x8a, B: 0x4a, A: 0xff}
)

// Config holds the fixed parameters of the console.
type Config struct {
	Period   uint32
	Geometry hal.PanelGeometry
}

// Service is the console task.
type Service struct {
	cfg    Config
	board  *board.Board
	led    hal.LED
	period kernel.Period

	fb      hal.Framebuffer
	status  *region
	plate   *region
	term    *tinyterm.Terminal
	pending []byte
	fault   string

	ledOn, ledKnown bool
}

// New returns a console drawing on disp. A nil display, or one without a
// pixel buffer, leaves only the LED.
func New(cfg Config, b *board.Board, disp hal.Display, led hal.LED) *Service {
	s := &Service{cfg: cfg, board: b, led: led, period: kernel.Every(cfg.Period)}
	if disp == nil {
		return s
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 || fb.Buffer() == nil {
		return s
	}
	s.fb = fb
	s.status = newRegion(fb, 0, statusHeight)
	s.plate = newRegion(fb, statusHeight, plateHeight)
	s.term = tinyterm.NewTerminal(newRegion(fb, statusHeight+plateHeight, fb.Height()-statusHeight-plateHeight))
	s.term.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        fontHeight,
		FontOffset:        fontOffset,
		UseSoftwareScroll: true,
	})
	fb.ClearRGB(0, 0, 0)
	return s
}

// Write queues operator output for the terminal pane. Tabs are expanded.
func (s *Service) Write(p []byte) (int, error) {
	if s.term == nil {
		return len(p), nil
	}
	for _, c := range p {
		if c == '\t' {
			s.pending = append(s.pending, "    "...)
			continue
		}
		s.pending = append(s.pending, c)
	}
	if over := len(s.pending) - pendingLimit; over > 0 {
		s.pending = s.pending[over:]
	}
	return len(p), nil
}

// Fault replaces the status line with a fault banner until the next call.
func (s *Service) Fault(msg string) {
	s.fault = msg
}

func (s *Service) Step(now kernel.Tick) {
	if !s.period.Due(now) {
		return
	}

	balancing := s.board.Balancing.Read()
	s.setLED(balancing)
	if s.fb == nil {
		return
	}

	snap := s.board.Snapshot()
	s.drawStatus(balancing, snap)
	s.drawPlate(snap)
	if len(s.pending) > 0 {
		_, _ = s.term.Write(s.pending)
		s.pending = s.pending[:0]
	}
	_ = s.fb.Present()
}

func (s *Service) setLED(on bool) {
	if s.led == nil || (s.ledKnown && s.ledOn == on) {
		return
	}
	if on {
		s.led.High()
	} else {
		s.led.Low()
	}
	s.ledOn, s.ledKnown = on, true
}

func (s *Service) drawStatus(balancing bool, snap board.Snapshot) {
	w, h := s.status.Size()
	if s.fault != "" {
		_ = s.status.FillRectangle(0, 0, w, h, colorFault)
		tinyfont.WriteLine(s.status, &proggy.TinySZ8pt7b, 2, h-3, "FAULT "+s.fault, colorFG)
		return
	}

	_ = s.status.FillRectangle(0, 0, w, h, colorHeader)
	mode, c := "STOPPED", colorStopped
	if balancing {
		mode, c = "BALANCING", colorActive
	}
	tinyfont.WriteLine(s.status, &proggy.TinySZ8pt7b, 2, h-3, mode, c)

	ball := "no ball"
	if snap.Contact {
		ball = fmt.Sprintf("x %+6.1f y %+6.1f", snap.XPos, snap.YPos)
	}
	text := fmt.Sprintf("%s  tilt %+5.1f %+5.1f", ball, snap.ThetaX, snap.ThetaY)
	tinyfont.WriteLine(s.status, &proggy.TinySZ8pt7b, 70, h-3, text, colorFG)
}

// plateBox returns the on-screen rectangle of the plate, keeping its aspect.
func (s *Service) plateBox() (x0, y0, x1, y1 float64) {
	w, h := s.plate.Size()
	g := s.cfg.Geometry
	pad := 4.0
	boxH := float64(h) - 2*pad
	boxW := boxH * g.Width / g.Length
	if boxW > float64(w)-2*pad {
		boxW = float64(w) - 2*pad
		boxH = boxW * g.Length / g.Width
	}
	x0 = (float64(w) - boxW) / 2
	y0 = (float64(h) - boxH) / 2
	return x0, y0, x0 + boxW, y0 + boxH
}

func (s *Service) drawPlate(snap board.Snapshot) {
	w, h := s.plate.Size()
	_ = s.plate.FillRectangle(0, 0, w, h, colorBG)
	g := s.cfg.Geometry
	if g.Width <= 0 || g.Length <= 0 {
		return
	}

	x0, y0, x1, y1 := s.plateBox()
	_ = s.plate.FillRectangle(int16(x0)-1, int16(y0)-1, int16(x1-x0)+2, int16(y1-y0)+2, colorEdge)
	_ = s.plate.FillRectangle(int16(x0), int16(y0), int16(x1-x0), int16(y1-y0), colorPlate)
	if !snap.Contact {
		return
	}

	hw, hl := g.Width/2, g.Length/2
	px := mathx.MapRange(mathx.Clamp(snap.XPos, -hw, hw), -hw, hw, x0, x1)
	// Screen y grows downwards.
	py := mathx.MapRange(mathx.Clamp(snap.YPos, -hl, hl), -hl, hl, y1, y0)
	_ = s.plate.FillRectangle(int16(px)-ballSize/2, int16(py)-ballSize/2, ballSize, ballSize, colorBall)
}
