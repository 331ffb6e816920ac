//go:build cgo && !tinygo

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// imageFile is a hal.Flash backed by a flash image on disk. Writes follow NOR
// rules: bits only clear until the block is erased.
type imageFile struct {
	f         *os.File
	size      uint32
	eraseSize uint32
	blank     []byte
}

// createImage makes an erased image of size bytes at path.
func createImage(path string, size, eraseSize uint32) (*imageFile, error) {
	if eraseSize == 0 || eraseSize%256 != 0 {
		return nil, fmt.Errorf("image: invalid erase size %d", eraseSize)
	}
	if size == 0 || size%eraseSize != 0 {
		return nil, fmt.Errorf("image: size %d not a multiple of erase size %d", size, eraseSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	img := newImageFile(f, size, eraseSize)
	if err := img.Erase(0, size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("erase image %q: %w", path, err)
	}
	return img, nil
}

// openImage opens an existing image for reading back.
func openImage(path string, eraseSize uint32) (*imageFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if eraseSize == 0 || st.Size()%int64(eraseSize) != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("image %q: size %d not a multiple of erase size %d", path, st.Size(), eraseSize)
	}
	return newImageFile(f, uint32(st.Size()), eraseSize), nil
}

func newImageFile(f *os.File, size, eraseSize uint32) *imageFile {
	blank := make([]byte, eraseSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	return &imageFile{f: f, size: size, eraseSize: eraseSize, blank: blank}
}

func (m *imageFile) Close() error { return m.f.Close() }

func (m *imageFile) SizeBytes() uint32       { return m.size }
func (m *imageFile) EraseBlockBytes() uint32 { return m.eraseSize }

func (m *imageFile) clip(p []byte, off uint32) ([]byte, error) {
	if off >= m.size {
		return nil, fmt.Errorf("image offset %d: %w", off, os.ErrInvalid)
	}
	if rest := int(m.size - off); len(p) > rest {
		p = p[:rest]
	}
	return p, nil
}

func (m *imageFile) ReadAt(p []byte, off uint32) (int, error) {
	p, err := m.clip(p, off)
	if err != nil {
		return 0, err
	}
	return m.f.ReadAt(p, int64(off))
}

func (m *imageFile) WriteAt(p []byte, off uint32) (int, error) {
	p, err := m.clip(p, off)
	if err != nil {
		return 0, err
	}
	prev := make([]byte, len(p))
	if _, err := m.f.ReadAt(prev, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("image read before write at %d: %w", off, err)
	}
	for i := range p {
		if prev[i]&p[i] != p[i] {
			return 0, fmt.Errorf("image write at %d: block not erased", off+uint32(i))
		}
	}
	return m.f.WriteAt(p, int64(off))
}

func (m *imageFile) Erase(off, size uint32) error {
	if off%m.eraseSize != 0 || size%m.eraseSize != 0 || off+size > m.size {
		return fmt.Errorf("image erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	for ; size > 0; size -= m.eraseSize {
		if _, err := m.f.WriteAt(m.blank, int64(off)); err != nil {
			return fmt.Errorf("image erase block at %d: %w", off, err)
		}
		off += m.eraseSize
	}
	return nil
}
