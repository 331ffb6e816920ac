//go:build !tinygo

package kernel

import "runtime/debug"

// maxStack bounds the trace kept per panic.
const maxStack = 8 << 10

func captureStack() []byte {
	s := debug.Stack()
	if len(s) > maxStack {
		s = s[:maxStack]
	}
	return s
}
