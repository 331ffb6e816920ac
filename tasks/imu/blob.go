package imu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"balancer/hal"
)

var (
	ErrBlobLength = errors.New("imu: calibration record has the wrong length")
	ErrBlobSyntax = errors.New("imu: malformed calibration record")
)

// FormatBlob renders the sensor offsets as comma-separated hex bytes.
func FormatBlob(b []byte) []byte {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = "0x" + strconv.FormatUint(uint64(v), 16)
	}
	return []byte(strings.Join(parts, ","))
}

// ParseBlob reads a record written by FormatBlob. Decimal tokens are also
// accepted.
func ParseBlob(line string) ([]byte, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("%w: empty", ErrBlobLength)
	}
	tokens := strings.Split(line, ",")
	if len(tokens) != hal.CalibrationBlobLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlobLength, len(tokens))
	}
	blob := make([]byte, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseUint(strings.TrimSpace(tok), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: byte %d: %v", ErrBlobSyntax, i, err)
		}
		blob[i] = byte(v)
	}
	return blob, nil
}
