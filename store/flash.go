//go:build tinygo || cgo

package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"balancer/hal"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

// Flash is a Store on a littlefs volume spanning a hal.Flash region.
type Flash struct {
	lfs *littlefs.LFS
}

// NewFlash mounts littlefs on f, formatting the region if it holds no
// valid filesystem.
func NewFlash(f hal.Flash) (*Flash, error) {
	dev := &blockDevice{f: f}
	if dev.EraseBlockSize() == 0 || dev.Size() == 0 {
		return nil, fmt.Errorf("flash store: %w", hal.ErrNotImplemented)
	}
	lfs := littlefs.New(dev).Configure(&littlefs.Config{
		CacheSize:     256,
		LookaheadSize: 32,
		BlockCycles:   500,
	})
	if err := lfs.Mount(); err != nil {
		if err := lfs.Format(); err != nil {
			return nil, fmt.Errorf("flash store format: %w", err)
		}
		if err := lfs.Mount(); err != nil {
			return nil, fmt.Errorf("flash store mount: %w", err)
		}
	}
	return &Flash{lfs: lfs}, nil
}

// Close unmounts the volume.
func (s *Flash) Close() error { return s.lfs.Unmount() }

func (s *Flash) ReadFile(name string) ([]byte, error) {
	if _, err := s.lfs.Stat(name); err != nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	f, err := s.lfs.OpenFile(name, os.O_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return b, nil
}

func (s *Flash) WriteFile(name string, data []byte) error {
	return s.write(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, data)
}

func (s *Flash) AppendFile(name string, data []byte) error {
	return s.write(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, data)
}

func (s *Flash) write(name string, flags int, data []byte) error {
	f, err := s.lfs.OpenFile(name, flags)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// blockDevice presents a hal.Flash as a tinyfs block device.
type blockDevice struct {
	f hal.Flash
}

var _ tinyfs.BlockDevice = (*blockDevice)(nil)

func (d *blockDevice) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, uint32(off))
}

func (d *blockDevice) WriteAt(p []byte, off int64) (int, error) {
	return d.f.WriteAt(p, uint32(off))
}

func (d *blockDevice) Size() int64           { return int64(d.f.SizeBytes()) }
func (d *blockDevice) WriteBlockSize() int64 { return 256 }
func (d *blockDevice) EraseBlockSize() int64 { return int64(d.f.EraseBlockBytes()) }

func (d *blockDevice) EraseBlocks(start, n int64) error {
	bs := uint32(d.EraseBlockSize())
	return d.f.Erase(uint32(start)*bs, uint32(n)*bs)
}
