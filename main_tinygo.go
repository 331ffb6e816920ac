//go:build tinygo

package main

import (
	"context"

	"balancer/app"
	"balancer/config"
	"balancer/hal"
	"balancer/store"
)

func main() {
	h := hal.New()
	l := h.Logger()

	st, err := store.NewFlash(h.Flash())
	if err != nil {
		l.WriteLineString("flash store: " + err.Error())
		select {}
	}
	sys, err := app.New(h, st, config.Default())
	if err != nil {
		l.WriteLineString("config: " + err.Error())
		select {}
	}
	_ = sys.Run(context.Background())
}
