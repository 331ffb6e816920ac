package touchpanel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrSingular      = errors.New("touchpanel: calibration points are degenerate")
	ErrBadRecord     = errors.New("touchpanel: malformed calibration record")
	ErrPointMismatch = errors.New("touchpanel: reference and sample counts differ")
)

// Calibration maps raw panel coordinates to plate millimetres:
//
//	x' = Kxx·x + Kxy·y + Xc
//	y' = Kyx·x + Kyy·y + Yc
type Calibration struct {
	Kxx, Kxy float64
	Kyx, Kyy float64
	Xc, Yc   float64
}

// Identity leaves raw readings unchanged.
func Identity() Calibration {
	return Calibration{Kxx: 1, Kyy: 1}
}

// Apply maps a raw reading. Both equations take the raw x unless sequential
// is set, in which case y' is computed from the already mapped x'.
func (c Calibration) Apply(x, y float64, sequential bool) (float64, float64) {
	xc := c.Kxx*x + c.Kxy*y + c.Xc
	if sequential {
		x = xc
	}
	yc := c.Kyx*x + c.Kyy*y + c.Yc
	return xc, yc
}

// Fit solves the least-squares problem β = (AᵀA)⁻¹AᵀB, where A holds the raw
// samples with a constant column and B the reference points.
//
// The 2×2 linear block of β is read row by row: Kxy = β[0][1], Kyx = β[1][0].
// byColumn reads it column by column instead (Kxy = β[1][0], Kyx = β[0][1]),
// which makes Apply the exact least-squares inverse of a skewed panel.
func Fit(ref, raw [][2]float64, byColumn bool) (Calibration, error) {
	n := len(raw)
	if n != len(ref) {
		return Calibration{}, fmt.Errorf("%w: %d references, %d samples", ErrPointMismatch, len(ref), n)
	}
	if n < 3 {
		return Calibration{}, fmt.Errorf("%w: %d points", ErrSingular, n)
	}

	a := mat.NewDense(n, 3, nil)
	b := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		a.Set(i, 0, raw[i][0])
		a.Set(i, 1, raw[i][1])
		a.Set(i, 2, 1)
		b.Set(i, 0, ref[i][0])
		b.Set(i, 1, ref[i][1])
	}

	var ata, inv, atb, beta mat.Dense
	ata.Mul(a.T(), a)
	if err := inv.Inverse(&ata); err != nil {
		return Calibration{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	atb.Mul(a.T(), b)
	beta.Mul(&inv, &atb)

	c := Calibration{
		Kxx: beta.At(0, 0), Kxy: beta.At(0, 1),
		Kyx: beta.At(1, 0), Kyy: beta.At(1, 1),
		Xc: beta.At(2, 0), Yc: beta.At(2, 1),
	}
	if byColumn {
		c.Kxy, c.Kyx = c.Kyx, c.Kxy
	}
	if !c.finite() {
		return Calibration{}, fmt.Errorf("%w: non-finite coefficients", ErrSingular)
	}
	return c, nil
}

func (c Calibration) coeffs() [6]float64 {
	return [6]float64{c.Kxx, c.Kxy, c.Kyx, c.Kyy, c.Xc, c.Yc}
}

func (c Calibration) finite() bool {
	for _, v := range c.coeffs() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Record formats the calibration as one "Kxx, Kxy, Kyx, Kyy, Xc, Yc" line.
func (c Calibration) Record() []byte {
	vals := c.coeffs()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return []byte(strings.Join(parts, ", ") + "\r\n")
}

// ParseRecord reads a line written by Record.
func ParseRecord(line string) (Calibration, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 6 {
		return Calibration{}, fmt.Errorf("%w: %d fields", ErrBadRecord, len(fields))
	}
	var v [6]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Calibration{}, fmt.Errorf("%w: field %d: %v", ErrBadRecord, i, err)
		}
		v[i] = x
	}
	c := Calibration{Kxx: v[0], Kxy: v[1], Kyx: v[2], Kyy: v[3], Xc: v[4], Yc: v[5]}
	if !c.finite() {
		return Calibration{}, fmt.Errorf("%w: non-finite coefficient", ErrBadRecord)
	}
	return c, nil
}
