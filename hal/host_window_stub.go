//go:build !tinygo && !cgo

package hal

import (
	"context"
	"errors"
)

// ErrNoWindow is returned by RunWindow in builds without cgo.
var ErrNoWindow = errors.New("hal: window mode needs a cgo build; set host.window to false or CGO_ENABLED=1")

func RunWindow(context.Context, *Host, func() error, string) error { return ErrNoWindow }
