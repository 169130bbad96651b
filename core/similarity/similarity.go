// Package similarity scores pooled embeddings. Two interchangeable engines
// share one contract: given two operand sets they return an [|a|, |b|]
// score matrix with every entry in [-1, 1]. Cosine serves dense vectors;
// Hamming serves packed sign codes. The mode is fixed once at construction
// so no consumer branches on it.
package similarity

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/adalundhe/semvec/core/embedding"
	"github.com/adalundhe/semvec/core/vecmath"
)

var (
	ErrDimensionMismatch = errors.New("operands have different dimensions")
	ErrEmptyOperand      = errors.New("similarity operands must be non-empty")
	ErrModeMismatch      = errors.New("operand vector kind does not match scorer mode")
)

// Kind selects the similarity engine at construction.
type Kind int

const (
	Dense Kind = iota
	Binary
)

func (k Kind) String() string {
	if k == Binary {
		return "binary"
	}
	return "dense"
}

// Scorer dispatches to cosine or Hamming similarity based on the kind
// fixed at construction.
type Scorer struct {
	kind Kind
}

// NewScorer returns a scorer for the given mode.
func NewScorer(kind Kind) Scorer {
	return Scorer{kind: kind}
}

// Kind returns the mode fixed at construction.
func (s Scorer) Kind() Kind { return s.kind }

// Matrix scores every pair of rows between a and b.
func (s Scorer) Matrix(a, b *embedding.Vectors) ([][]float32, error) {
	switch s.kind {
	case Binary:
		if a.Codes == nil || b.Codes == nil {
			return nil, ErrModeMismatch
		}
		return Hamming(a.Codes, b.Codes)
	default:
		if a.Dense == nil || b.Dense == nil {
			return nil, ErrModeMismatch
		}
		return Cosine(a.Dense, b.Dense)
	}
}

// Cosine returns the pairwise cosine similarity matrix. Operands are
// L2-normalized on private copies; when a and b are the identical slice
// the normalization is computed once and shared, which must not change
// the result. Zero vectors score zero against everything.
func Cosine(a, b [][]float32) ([][]float32, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyOperand
	}
	dim := len(a[0])
	if len(b[0]) != dim {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, dim, len(b[0]))
	}

	na := flatNormalized(a, dim)
	var nb []float32
	if sameSlice(a, b) {
		nb = na
	} else {
		nb = flatNormalized(b, dim)
	}

	n, m := len(a), len(b)
	flat := make([]float32, n*m)
	blas32.Gemm(blas.NoTrans, blas.Trans,
		1,
		blas32.General{Rows: n, Cols: dim, Stride: dim, Data: na},
		blas32.General{Rows: m, Cols: dim, Stride: dim, Data: nb},
		0,
		blas32.General{Rows: n, Cols: m, Stride: m, Data: flat},
	)

	out := make([][]float32, n)
	for i := range out {
		out[i] = flat[i*m : (i+1)*m]
	}
	return out, nil
}

// Hamming returns pairwise Hamming similarity for packed sign codes,
// mapped onto cosine's range: zero differing bits scores 1, all bits
// differing scores -1, so downstream thresholds are mode-agnostic.
func Hamming(a, b [][]uint64) ([][]float32, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyOperand
	}
	words := len(a[0])
	if len(b[0]) != words {
		return nil, fmt.Errorf("%w: %d vs %d code words", ErrDimensionMismatch, words, len(b[0]))
	}

	maxDist := float32(words * vecmath.WordBits)
	out := make([][]float32, len(a))
	for i, ca := range a {
		row := make([]float32, len(b))
		for j, cb := range b {
			row[j] = 1 - 2*(float32(vecmath.Hamming(ca, cb))/maxDist)
		}
		out[i] = row
	}
	return out, nil
}

// flatNormalized packs unit-length copies of rows into one contiguous
// buffer for GEMM.
func flatNormalized(rows [][]float32, dim int) []float32 {
	flat := make([]float32, len(rows)*dim)
	for i, r := range rows {
		dst := flat[i*dim : (i+1)*dim]
		copy(dst, r)
		vecmath.NormalizeInPlace(dst)
	}
	return flat
}

// sameSlice reports whether a and b are the identical slice (same backing
// rows), not merely equal-valued.
func sameSlice(a, b [][]float32) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}
