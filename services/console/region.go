package console

import (
	"image/color"

	"balancer/hal"
	"balancer/internal/mathx"

	"tinygo.org/x/drivers"
)

// region is a horizontal band of an RGB565 framebuffer, addressed from its
// own top-left corner. It satisfies tinyterm.Displayer and tinyfont.Displayer.
type region struct {
	fb     hal.Framebuffer
	top    int
	height int
}

func newRegion(fb hal.Framebuffer, top, height int) *region {
	top = mathx.Clamp(top, 0, fb.Height())
	height = mathx.Clamp(height, 0, fb.Height()-top)
	return &region{fb: fb, top: top, height: height}
}

func (r *region) Size() (x, y int16) {
	return int16(r.fb.Width()), int16(r.height)
}

func (r *region) SetPixel(x, y int16, c color.RGBA) {
	buf := r.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= r.fb.Width() || iy < 0 || iy >= r.height {
		return
	}
	off := (r.top+iy)*r.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	hal.PutRGB565(buf, off, hal.ColorRGB565(c))
}

// Display is a no-op; the service presents the whole frame once per pass.
func (r *region) Display() error { return nil }

func (r *region) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	buf := r.fb.Buffer()
	w := r.fb.Width()
	x0 := mathx.Clamp(int(x), 0, w)
	y0 := mathx.Clamp(int(y), 0, r.height)
	x1 := mathx.Clamp(int(x)+int(width), 0, w)
	y1 := mathx.Clamp(int(y)+int(height), 0, r.height)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	p := hal.ColorRGB565(c)
	stride := r.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := (r.top + py) * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				return nil
			}
			hal.PutRGB565(buf, off, p)
		}
	}
	return nil
}

// ScrollUp moves the band content up by lines pixels and clears the exposed
// rows. tinyterm uses it for software scrolling.
func (r *region) ScrollUp(lines int16, bg color.RGBA) error {
	n := int(lines)
	if n <= 0 {
		return nil
	}
	w := r.fb.Width()
	if n >= r.height {
		return r.FillRectangle(0, 0, int16(w), int16(r.height), bg)
	}

	buf := r.fb.Buffer()
	stride := r.fb.StrideBytes()
	start := r.top * stride
	end := (r.top + r.height) * stride
	if end > len(buf) {
		end = len(buf)
	}
	if end-start <= n*stride {
		return r.FillRectangle(0, 0, int16(w), int16(r.height), bg)
	}
	copy(buf[start:end-n*stride], buf[start+n*stride:end])
	return r.FillRectangle(0, int16(r.height-n), int16(w), int16(n), bg)
}

func (r *region) SetScroll(line int16) {}

func (r *region) SetRotation(rotation drivers.Rotation) error { return nil }
