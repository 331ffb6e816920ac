//go:build !tinygo

package hal

import "sync"

// hostFramebuffer is the simulator screen. The console draws into back and
// Present publishes it, so the window never shows a half-drawn frame.
type hostFramebuffer struct {
	width, height int
	back          []byte

	mu     sync.Mutex
	front  []byte
	frames uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	n := width * height * 2
	return &hostFramebuffer{width: width, height: height, back: make([]byte, n), front: make([]byte, n)}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.width * 2 }
func (f *hostFramebuffer) Buffer() []byte      { return f.back }

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	p := RGB565(r, g, b)
	for off := 0; off+1 < len(f.back); off += 2 {
		PutRGB565(f.back, off, p)
	}
}

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	copy(f.front, f.back)
	f.frames++
	f.mu.Unlock()
	return nil
}

// frame copies the last presented frame into dst when it differs from seen,
// and returns its number.
func (f *hostFramebuffer) frame(dst []byte, seen uint64) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frames != seen {
		copy(dst, f.front)
	}
	return f.frames
}
