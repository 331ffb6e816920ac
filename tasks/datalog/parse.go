package datalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrHeader = errors.New("datalog: not a telemetry capture")

// Row is one telemetry sample.
type Row struct {
	TimeMS               uint32
	Contact              bool
	XPos, YPos           float64
	XVel, YVel           float64
	ThetaX, ThetaY       float64
	ThetaXVel, ThetaYVel float64
}

// Parse reads a capture written by the Telemetry Task.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 10

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if strings.Join(head, ", ") != Header {
		return nil, fmt.Errorf("%w: header %q", ErrHeader, strings.Join(head, ", "))
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func parseRow(rec []string) (Row, error) {
	var row Row
	t, err := strconv.ParseUint(rec[0], 10, 32)
	if err != nil {
		return row, err
	}
	row.TimeMS = uint32(t)
	if row.Contact, err = strconv.ParseBool(rec[1]); err != nil {
		return row, err
	}
	dst := []*float64{&row.XPos, &row.YPos, &row.XVel, &row.YVel, &row.ThetaX, &row.ThetaY, &row.ThetaXVel, &row.ThetaYVel}
	for i, p := range dst {
		if *p, err = strconv.ParseFloat(rec[i+2], 64); err != nil {
			return row, err
		}
	}
	return row, nil
}
