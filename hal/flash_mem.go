package hal

import "fmt"

// MemFlash is a RAM-backed Flash with NOR semantics: erase sets bytes to
// 0xFF and writes can only clear bits.
type MemFlash struct {
	block uint32
	buf   []byte
}

// NewMemFlash returns blocks erase blocks of blockSize bytes, all erased.
func NewMemFlash(blockSize, blocks uint32) *MemFlash {
	f := &MemFlash{block: blockSize, buf: make([]byte, blockSize*blocks)}
	for i := range f.buf {
		f.buf[i] = 0xFF
	}
	return f
}

func (f *MemFlash) SizeBytes() uint32       { return uint32(len(f.buf)) }
func (f *MemFlash) EraseBlockBytes() uint32 { return f.block }

func (f *MemFlash) ReadAt(p []byte, off uint32) (int, error) {
	if uint64(off)+uint64(len(p)) > uint64(len(f.buf)) {
		return 0, fmt.Errorf("flash read at %d len %d: out of range", off, len(p))
	}
	return copy(p, f.buf[off:]), nil
}

func (f *MemFlash) WriteAt(p []byte, off uint32) (int, error) {
	if uint64(off)+uint64(len(p)) > uint64(len(f.buf)) {
		return 0, fmt.Errorf("flash write at %d len %d: out of range", off, len(p))
	}
	for i, b := range p {
		f.buf[int(off)+i] &= b
	}
	return len(p), nil
}

func (f *MemFlash) Erase(off, size uint32) error {
	if off%f.block != 0 || size%f.block != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: unaligned to %d", off, size, f.block)
	}
	if uint64(off)+uint64(size) > uint64(len(f.buf)) {
		return fmt.Errorf("flash erase off=%d size=%d: out of range", off, size)
	}
	for i := off; i < off+size; i++ {
		f.buf[i] = 0xFF
	}
	return nil
}
