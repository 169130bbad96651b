package embedding

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adalundhe/semvec/core/vecmath"
)

// DefaultBatchSize bounds the tokenizer intermediates held at once.
const DefaultBatchSize = 32

// Vectors holds one pooled embedding per input text. Exactly one of the two
// fields is populated, fixed by the embedder's mode at construction: Dense
// rows of length dim, or Codes of dim/64 packed sign words.
type Vectors struct {
	Dense [][]float32
	Codes [][]uint64
}

// Len returns the number of embedded texts.
func (v *Vectors) Len() int {
	if v.Codes != nil {
		return len(v.Codes)
	}
	return len(v.Dense)
}

// Binary reports whether the vectors are packed sign codes.
func (v *Vectors) Binary() bool { return v.Codes != nil }

// Slice returns a view of rows [lo, hi) without copying.
func (v *Vectors) Slice(lo, hi int) *Vectors {
	if v.Codes != nil {
		return &Vectors{Codes: v.Codes[lo:hi]}
	}
	return &Vectors{Dense: v.Dense[lo:hi]}
}

// EmbedOptions control one Embed call. The output container type never
// varies per call; it is fixed by the embedder's mode.
type EmbedOptions struct {
	// Normalize scales each pooled vector to unit length, after pooling.
	Normalize bool

	// BatchSize caps how many texts are tokenized and gathered at once.
	// Zero means DefaultBatchSize.
	BatchSize int
}

// Embedder materializes pooled embeddings batch by batch into a
// preallocated output, bounding peak memory to one batch's intermediates
// plus the final container.
type Embedder struct {
	table  *Table
	tok    Tokenizer
	binary bool
	words  int // code words per vector in binary mode
	log    *slog.Logger

	denseCache *lru.Cache[string, []float32]
	codeCache  *lru.Cache[string, []uint64]
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithCache keeps up to size pooled results keyed by text and normalize
// flag. Cached slices are copied out, never aliased.
func WithCache(size int) Option {
	return func(e *Embedder) {
		if e.binary {
			e.codeCache, _ = lru.New[string, []uint64](size)
		} else {
			e.denseCache, _ = lru.New[string, []float32](size)
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Embedder) { e.log = l }
}

// NewEmbedder builds an embedder over an immutable table. In binary mode
// the table dimension must be a multiple of 64 so sign bits pack evenly
// into words; anything else is rejected here rather than silently padded.
func NewEmbedder(table *Table, tok Tokenizer, binary bool, opts ...Option) (*Embedder, error) {
	if binary && table.Dim()%vecmath.WordBits != 0 {
		return nil, fmt.Errorf("%w: dim=%d", ErrDimNotMultipleOf64, table.Dim())
	}
	e := &Embedder{
		table:  table,
		tok:    tok,
		binary: binary,
		log:    slog.Default(),
	}
	if binary {
		e.words = vecmath.CodeWords(table.Dim())
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Binary reports the mode fixed at construction.
func (e *Embedder) Binary() bool { return e.binary }

// Dim returns the dense embedding dimension.
func (e *Embedder) Dim() int { return e.table.Dim() }

// Embed pools one vector per text. The full output is allocated up front
// and filled slice-by-slice as batches complete.
func (e *Embedder) Embed(texts []string, opts EmbedOptions) (*Vectors, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	n := len(texts)
	out := &Vectors{}
	if e.binary {
		out.Codes = make([][]uint64, n)
		for i := range out.Codes {
			out.Codes[i] = make([]uint64, e.words)
		}
	} else {
		out.Dense = make([][]float32, n)
		for i := range out.Dense {
			out.Dense[i] = make([]float32, e.table.Dim())
		}
	}

	// Resolve cache hits first so batching only covers the misses.
	pending := make([]int, 0, n)
	for i, text := range texts {
		if !e.cacheGet(text, opts.Normalize, out, i) {
			pending = append(pending, i)
		}
	}

	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		if err := e.embedBatch(texts, pending[start:end], opts, out); err != nil {
			return nil, err
		}
	}

	e.log.Debug("embedded texts",
		"count", n, "cached", n-len(pending), "binary", e.binary)
	return out, nil
}

// embedBatch tokenizes one batch of texts and fills their output rows.
func (e *Embedder) embedBatch(texts []string, indices []int, opts EmbedOptions, out *Vectors) error {
	batch := make([]string, len(indices))
	for i, idx := range indices {
		batch[i] = texts[idx]
	}
	encs, err := e.tok.EncodeBatch(batch)
	if err != nil {
		return fmt.Errorf("tokenize batch: %w", err)
	}
	if len(encs) != len(batch) {
		return fmt.Errorf("%w: %d encodings for %d texts", ErrEncodingMismatch, len(encs), len(batch))
	}

	var scratch []float32
	if e.binary {
		scratch = make([]float32, e.table.Dim())
	}

	for bi, enc := range encs {
		idx := indices[bi]
		dst := scratch
		if !e.binary {
			dst = out.Dense[idx]
		} else {
			clear(dst)
		}
		if err := e.poolInto(dst, enc); err != nil {
			return err
		}
		if opts.Normalize {
			vecmath.NormalizeInPlace(dst)
		}
		if e.binary {
			vecmath.PackSign(dst, out.Codes[idx])
		}
		e.cachePut(texts[idx], opts.Normalize, out, idx)
	}
	return nil
}

// poolInto writes the masked average of the text's token rows into dst.
// Token ids are clamped into the vocabulary before lookup. The mask-sum
// floor of 1 turns an all-masked sequence into a zero vector instead of a
// division by zero.
func (e *Embedder) poolInto(dst []float32, enc Encoding) error {
	if len(enc.IDs) != len(enc.AttentionMask) {
		return fmt.Errorf("%w: %d ids, %d mask values", ErrEncodingMismatch, len(enc.IDs), len(enc.AttentionMask))
	}
	var maskSum float32
	for j, id := range enc.IDs {
		m := enc.AttentionMask[j]
		if m == 0 {
			continue
		}
		vecmath.AccumulateScaled(dst, e.table.Row(e.table.Clamp(id)), m)
		maskSum += m
	}
	if maskSum < 1 {
		maskSum = 1
	}
	vecmath.ScaleInPlace(dst, 1/maskSum)
	return nil
}

// EmbedUnpooled returns the clamped per-token rows for each text without
// pooling, one [seqLen][dim] matrix per text. Binary mode has no unpooled
// form; sign packing is defined on pooled vectors only.
func (e *Embedder) EmbedUnpooled(texts []string, batchSize int) ([][][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	if e.binary {
		return nil, ErrPoolingRequired
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	out := make([][][]float32, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		encs, err := e.tok.EncodeBatch(texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("tokenize batch: %w", err)
		}
		for bi, enc := range encs {
			rows := make([][]float32, len(enc.IDs))
			for j, id := range enc.IDs {
				row := make([]float32, e.table.Dim())
				copy(row, e.table.Row(e.table.Clamp(id)))
				rows[j] = row
			}
			out[start+bi] = rows
		}
	}
	return out, nil
}

func cacheKey(text string, normalize bool) string {
	if normalize {
		return "n\x00" + text
	}
	return "r\x00" + text
}

func (e *Embedder) cacheGet(text string, normalize bool, out *Vectors, idx int) bool {
	if e.binary {
		if e.codeCache == nil {
			return false
		}
		code, ok := e.codeCache.Get(cacheKey(text, normalize))
		if ok {
			copy(out.Codes[idx], code)
		}
		return ok
	}
	if e.denseCache == nil {
		return false
	}
	row, ok := e.denseCache.Get(cacheKey(text, normalize))
	if ok {
		copy(out.Dense[idx], row)
	}
	return ok
}

func (e *Embedder) cachePut(text string, normalize bool, out *Vectors, idx int) {
	if e.binary {
		if e.codeCache == nil {
			return
		}
		code := make([]uint64, e.words)
		copy(code, out.Codes[idx])
		e.codeCache.Add(cacheKey(text, normalize), code)
		return
	}
	if e.denseCache == nil {
		return
	}
	row := make([]float32, e.table.Dim())
	copy(row, out.Dense[idx])
	e.denseCache.Add(cacheKey(text, normalize), row)
}
