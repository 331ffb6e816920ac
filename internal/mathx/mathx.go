// Package mathx holds small numeric helpers shared by tasks and the console.
package mathx

import "golang.org/x/exp/constraints"

// Number is any integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MapRange linearly maps v from [fromMin, fromMax] onto [toMin, toMax].
func MapRange[T constraints.Float](v, fromMin, fromMax, toMin, toMax T) T {
	return (v-fromMin)/(fromMax-fromMin)*(toMax-toMin) + toMin
}

// Abs returns the absolute value of v.
func Abs[T Number](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Dot returns the dot product of two equal-length vectors.
func Dot[T constraints.Float](a, b []T) T {
	var sum T
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
