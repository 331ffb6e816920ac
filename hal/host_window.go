//go:build !tinygo && cgo

package hal

import (
	"context"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	windowScale = 2
	windowTPS   = 60
	maxCatchUp  = 100 * time.Millisecond
)

// RunWindow starts a desktop window that displays the framebuffer and feeds
// typed characters to the operator serial line. It blocks until the window
// closes or ctx is done, and returns nil in both cases.
func RunWindow(ctx context.Context, h *Host, step func() error, title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(h.fb.width*windowScale, h.fb.height*windowScale)
	ebiten.SetTPS(windowTPS)
	return ebiten.RunGame(&hostGame{ctx: ctx, h: h, step: step})
}

type hostGame struct {
	ctx   context.Context
	h     *Host
	step  func() error
	last  time.Time
	runes []rune

	shown   uint64
	scratch []byte
	img     *image.RGBA
	fbImg   *ebiten.Image
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.runes = ebiten.AppendInputChars(g.runes[:0])
	for _, r := range g.runes {
		if r < 0x80 {
			g.h.Feed([]byte{byte(r)})
		}
	}
	return RunFor(g.h, g.step, g.elapsed())
}

// elapsed returns wall time since the last update, capped so a stalled or
// dragged window does not make the plant jump.
func (g *hostGame) elapsed() time.Duration {
	now := time.Now()
	if g.last.IsZero() {
		g.last = now
	}
	d := now.Sub(g.last)
	g.last = now
	return min(d, maxCatchUp)
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.fbImg == nil {
		g.scratch = make([]byte, len(fb.front))
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}
	if n := fb.frame(g.scratch, g.shown); n != g.shown {
		g.shown = n
		pix := g.img.Pix
		for i := 0; i+1 < len(g.scratch); i += 2 {
			c := ExpandRGB565(uint16(g.scratch[i]) | uint16(g.scratch[i+1])<<8)
			j := i * 2
			pix[j], pix[j+1], pix[j+2], pix[j+3] = c.R, c.G, c.B, c.A
		}
		g.fbImg.WritePixels(pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
