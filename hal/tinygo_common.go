//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

// tinyGoClock counts microseconds since boot. It wraps after about 71 minutes
// like the tick it feeds.
type tinyGoClock struct {
	start time.Time
}

func (c *tinyGoClock) Micros() uint32 {
	return uint32(time.Since(c.start).Microseconds())
}

// uartLogger shares the operator UART. Lines end in CRLF for serial terminals.
type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	_, _ = l.uart.Write([]byte(s))
	l.crlf()
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	_, _ = l.uart.Write(b)
	l.crlf()
}

func (l *uartLogger) crlf() {
	_ = l.uart.WriteByte('\r')
	_ = l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

// uartSerial is the operator byte stream. ReadByte is only called after
// Buffered reports data, so it never waits.
type uartSerial struct {
	uart *machine.UART
}

func (s *uartSerial) Buffered() int { return s.uart.Buffered() }

func (s *uartSerial) ReadByte() (byte, error) { return s.uart.ReadByte() }

func (s *uartSerial) Write(p []byte) (int, error) { return s.uart.Write(p) }
