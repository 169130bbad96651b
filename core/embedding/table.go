// Package embedding turns raw text into pooled fixed-size vectors using a
// precomputed token-embedding table. No neural forward pass is involved:
// embedding a text is a table lookup per token followed by masked average
// pooling.
package embedding

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Table is an immutable row-major token-embedding matrix of shape
// [vocab, dim]. It is constructed once and shared read-only by every
// operation; nothing in this package mutates it after construction.
type Table struct {
	data  []float32
	vocab int
	dim   int
}

// NewTable wraps a flat row-major weight slice. The slice is retained, not
// copied; the caller must not modify it afterwards.
func NewTable(data []float32, vocab, dim int) (*Table, error) {
	if vocab <= 0 || dim <= 0 {
		return nil, fmt.Errorf("invalid table shape [%d, %d]", vocab, dim)
	}
	if len(data) != vocab*dim {
		return nil, fmt.Errorf("%w: have %d floats, want %d", ErrDimensionMismatch, len(data), vocab*dim)
	}
	return &Table{data: data, vocab: vocab, dim: dim}, nil
}

// NewTableFromRows copies rows into a contiguous table.
func NewTableFromRows(rows [][]float32) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("invalid table shape [0, ?]")
	}
	dim := len(rows[0])
	flat := make([]float32, 0, len(rows)*dim)
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrDimensionMismatch, i, len(r), dim)
		}
		flat = append(flat, r...)
	}
	return NewTable(flat, len(rows), dim)
}

// LoadTable reads a raw little-endian float32 weight file of exactly
// vocab*dim values.
func LoadTable(path string, vocab, dim int) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	want := vocab * dim * 4
	if len(raw) != want {
		return nil, fmt.Errorf("%w: file has %d bytes, want %d", ErrDimensionMismatch, len(raw), want)
	}
	data := make([]float32, vocab*dim)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return NewTable(data, vocab, dim)
}

// Row returns a read-only view of the embedding for token id.
// id must already be clamped into [0, vocab).
func (t *Table) Row(id int) []float32 {
	return t.data[id*t.dim : (id+1)*t.dim]
}

// Clamp redirects out-of-range token ids to the nearest valid row. Ids past
// the end of the vocabulary land on the last row; negative ids land on row
// zero. Out-of-range ids are a fail-soft condition, not an error.
func (t *Table) Clamp(id int32) int {
	if id < 0 {
		return 0
	}
	if int(id) >= t.vocab {
		return t.vocab - 1
	}
	return int(id)
}

func (t *Table) Vocab() int { return t.vocab }
func (t *Table) Dim() int   { return t.dim }
