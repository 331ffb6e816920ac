//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"
)

// storeFlashMax caps the record store; calibration records and one telemetry
// capture fit with room for littlefs metadata.
const storeFlashMax = 256 << 10

// rp2Flash is the record store partition at the start of the data area
// machine.Flash reserves past the program image.
type rp2Flash struct {
	size  uint32
	block uint32
}

func newRP2Flash() Flash {
	block := uint32(machine.Flash.EraseBlockSize())
	avail := machine.Flash.Size()
	if block == 0 || avail < int64(block) {
		return rp2Flash{}
	}
	size := uint32(min(avail, storeFlashMax))
	return rp2Flash{size: size - size%block, block: block}
}

func (f rp2Flash) SizeBytes() uint32       { return f.size }
func (f rp2Flash) EraseBlockBytes() uint32 { return f.block }

func (f rp2Flash) inRange(off uint32, n int) error {
	if uint64(off)+uint64(n) > uint64(f.size) {
		return fmt.Errorf("flash access at %d len %d: past %d-byte partition", off, n, f.size)
	}
	return nil
}

func (f rp2Flash) ReadAt(p []byte, off uint32) (int, error) {
	if err := f.inRange(off, len(p)); err != nil {
		return 0, err
	}
	return machine.Flash.ReadAt(p, int64(off))
}

func (f rp2Flash) WriteAt(p []byte, off uint32) (int, error) {
	if err := f.inRange(off, len(p)); err != nil {
		return 0, err
	}
	return machine.Flash.WriteAt(p, int64(off))
}

func (f rp2Flash) Erase(off, size uint32) error {
	if f.block == 0 {
		return ErrNotImplemented
	}
	if off%f.block != 0 || size%f.block != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: unaligned to %d", off, size, f.block)
	}
	if err := f.inRange(off, int(size)); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	return machine.Flash.EraseBlocks(int64(off/f.block), int64(size/f.block))
}
