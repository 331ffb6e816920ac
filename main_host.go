//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"balancer/app"
	"balancer/config"
	"balancer/hal"
	"balancer/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	st, err := store.NewDir(cfg.Host.DataDir)
	if err != nil {
		return err
	}

	h := hal.NewHost(os.Stdout)
	h.SetFingerPoints(cfg.Touch.Points())
	sys, err := app.New(h, st, cfg)
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg.Host, h, sys, os.Stdin)
}

// serve runs passes in a window or headless until ctx is done, the window is
// closed or the configured tick count runs out.
func serve(ctx context.Context, hc config.Host, h *hal.Host, sys *app.System, in io.Reader) error {
	step := func() error {
		sys.Pass()
		return nil
	}
	var err error
	if hc.Window {
		err = hal.RunWindow(ctx, h, step, "balancer")
	} else {
		err = hal.RunHeadless(ctx, h, step, hal.HeadlessConfig{
			Hz:    hc.Hz,
			Ticks: hc.Ticks,
			Input: in,
		})
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
