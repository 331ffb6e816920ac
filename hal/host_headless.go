//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"io"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz    int
	Ticks uint64
	Input io.Reader
}

// maxSlice bounds how far simulated time moves between two passes.
const maxSlice = 500 * time.Microsecond

// RunHeadless drives the simulator from a wall-clock ticker until ctx is done
// or cfg.Ticks ticks have elapsed. Operator input is read from cfg.Input.
func RunHeadless(ctx context.Context, h *Host, step func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 2000
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	if cfg.Input != nil {
		go pump(ctx, h, cfg.Input)
	}

	t := time.NewTicker(d)
	defer t.Stop()

	last := time.Now()
	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			if err := RunFor(h, step, now.Sub(last)); err != nil {
				return err
			}
			last = now
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

// RunFor advances simulated time by elapsed in short slices, calling step
// after each one.
func RunFor(h *Host, step func() error, elapsed time.Duration) error {
	for elapsed > 0 {
		s := elapsed
		if s > maxSlice {
			s = maxSlice
		}
		h.Advance(s)
		elapsed -= s
		if step != nil {
			if err := step(); err != nil {
				return err
			}
		}
	}
	return nil
}

func pump(ctx context.Context, h *Host, r io.Reader) {
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := r.Read(buf)
		if n > 0 {
			h.Feed(buf[:n])
		}
		if err != nil {
			return
		}
	}
}
