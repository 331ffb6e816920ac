// Package store persists the flat records of the balancer: the two
// calibration records and the telemetry log.
//
// Records are whole files addressed by name. A missing record is reported as
// ErrNotFound, which callers treat as a normal condition.
package store

import (
	"bytes"
	"errors"
)

var ErrNotFound = errors.New("store: record not found")

// Store reads and writes named records.
type Store interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	AppendFile(name string, data []byte) error
}

// ReadLine returns the first line of a record without its terminator.
func ReadLine(s Store, name string) (string, error) {
	b, err := s.ReadFile(name)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, "\r")), nil
}
