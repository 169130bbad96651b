// Package vecmath provides the low-level dense and binary vector primitives
// the embedding engine is built on. Dense operations run on float32 slices
// via vek SIMD kernels; binary codes are sign bits packed into uint64 words
// compared with hardware popcount.
package vecmath

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Dot returns the inner product of a and b.
func Dot(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(vek32.Dot(v, v))))
}

// NormalizeInPlace scales v to unit length. A zero vector is left unchanged
// rather than producing NaN components.
func NormalizeInPlace(v []float32) {
	n := Norm(v)
	if n == 0 {
		return
	}
	vek32.MulNumber_Inplace(v, 1/n)
}

// NormalizedCopy returns unit-length copies of rows without mutating them.
func NormalizedCopy(rows [][]float32) [][]float32 {
	out := make([][]float32, len(rows))
	for i, r := range rows {
		c := make([]float32, len(r))
		copy(c, r)
		NormalizeInPlace(c)
		out[i] = c
	}
	return out
}

// AccumulateScaled adds src*scale into acc elementwise. The scale==1 fast
// path dominates in practice since attention masks are 0/1 after padding.
func AccumulateScaled(acc, src []float32, scale float32) {
	if scale == 1 {
		vek32.Add_Inplace(acc, src)
		return
	}
	for i, v := range src {
		acc[i] += v * scale
	}
}

// ScaleInPlace multiplies every component of v by s.
func ScaleInPlace(v []float32, s float32) {
	vek32.MulNumber_Inplace(v, s)
}
