// Package engine exposes the text-level operations of the embedding
// engine: similarity, ranking, filtering, top-k, deduplication,
// clustering, and semantic splitting. An Engine owns one immutable
// embedding table and one tokenizer, and is fixed in dense or binary mode
// at construction; the mode-specific similarity strategy is selected once
// here so no downstream code branches on it.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/adalundhe/semvec/core/cluster"
	"github.com/adalundhe/semvec/core/dedup"
	"github.com/adalundhe/semvec/core/embedding"
	"github.com/adalundhe/semvec/core/rank"
	"github.com/adalundhe/semvec/core/similarity"
	"github.com/adalundhe/semvec/core/split"
)

// ErrBinaryUnsupported marks operations defined on dense embeddings only.
var ErrBinaryUnsupported = errors.New("operation requires a dense-mode engine")

// Engine runs every operation synchronously to completion. The embedding
// table is shared read-only; each call's output is independently
// allocated, so an Engine is safe for concurrent readers.
type Engine struct {
	embedder *embedding.Embedder
	scorer   similarity.Scorer
	splitter *split.Splitter
	log      *slog.Logger
}

// Option configures an Engine at construction.
type Option func(*settings)

type settings struct {
	cacheSize int
	log       *slog.Logger
}

// WithCache enables an LRU cache of pooled embeddings keyed by text.
func WithCache(size int) Option {
	return func(s *settings) { s.cacheSize = size }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// New builds an engine over table and tok. binary selects packed sign
// codes and Hamming similarity instead of dense vectors and cosine; it
// requires the table dimension to be a multiple of 64.
func New(table *embedding.Table, tok embedding.Tokenizer, binary bool, opts ...Option) (*Engine, error) {
	cfg := settings{log: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	embOpts := []embedding.Option{embedding.WithLogger(cfg.log)}
	if cfg.cacheSize > 0 {
		embOpts = append(embOpts, embedding.WithCache(cfg.cacheSize))
	}
	embedder, err := embedding.NewEmbedder(table, tok, binary, embOpts...)
	if err != nil {
		return nil, err
	}

	kind := similarity.Dense
	if binary {
		kind = similarity.Binary
	}

	e := &Engine{
		embedder: embedder,
		scorer:   similarity.NewScorer(kind),
		log:      cfg.log,
	}
	e.splitter = split.New(e.embedDense)
	return e, nil
}

// Binary reports the mode fixed at construction.
func (e *Engine) Binary() bool { return e.embedder.Binary() }

// Dim returns the dense embedding dimension.
func (e *Engine) Dim() int { return e.embedder.Dim() }

// Embed pools one vector per text in the engine's mode.
func (e *Engine) Embed(texts []string, opts embedding.EmbedOptions) (*embedding.Vectors, error) {
	return e.embedder.Embed(texts, opts)
}

// Similarity scores two texts against each other.
func (e *Engine) Similarity(text1, text2 string) (float32, error) {
	sims, err := e.scoreRow(text1, []string{text2})
	if err != nil {
		return 0, err
	}
	return sims[0], nil
}

// Rank orders docs by descending similarity to query. Equal scores keep
// their original document order.
func (e *Engine) Rank(query string, docs []string) ([]rank.Scored, error) {
	scores, err := e.scoreRow(query, docs)
	if err != nil {
		return nil, err
	}
	return rank.Rank(docs, scores)
}

// TopK returns the k docs most similar to query. len(docs) must exceed k.
func (e *Engine) TopK(query string, docs []string, k int) ([]string, error) {
	if k <= 0 {
		return nil, rank.ErrNonPositiveK
	}
	if len(docs) <= k {
		return nil, fmt.Errorf("%w: %d candidates for k=%d", rank.ErrNotEnoughCandidates, len(docs), k)
	}
	scores, err := e.scoreRow(query, docs)
	if err != nil {
		return nil, err
	}
	return rank.TopK(docs, scores, k)
}

// Filter returns the docs scoring strictly above threshold against query,
// in their original order.
func (e *Engine) Filter(query string, docs []string, threshold float32) ([]string, error) {
	scores, err := e.scoreRow(query, docs)
	if err != nil {
		return nil, err
	}
	return rank.Filter(docs, scores, threshold)
}

// Deduplicate removes near-duplicates above threshold, keeping the first
// occurrence of each group. batchSize <= 0 uses the mode's default.
func (e *Engine) Deduplicate(docs []string, threshold float32, batchSize int) ([]string, error) {
	vecs, err := e.embedder.Embed(docs, embedding.EmbedOptions{Normalize: !e.Binary()})
	if err != nil {
		return nil, err
	}
	return dedup.Deduplicate(docs, vecs, e.scorer, threshold, batchSize)
}

// Cluster groups docs into k clusters by k-means over normalized dense
// embeddings, returning per-doc labels and the winning restart's inertia.
// Binary-mode engines do not support clustering.
func (e *Engine) Cluster(docs []string, k int, opts cluster.Options) ([]int, float64, error) {
	if e.Binary() {
		return nil, 0, fmt.Errorf("cluster: %w", ErrBinaryUnsupported)
	}
	vecs, err := e.embedder.Embed(docs, embedding.EmbedOptions{Normalize: true})
	if err != nil {
		return nil, 0, err
	}
	return cluster.KMeans(vecs.Dense, k, opts)
}

// Split partitions text into chunks at semantic boundaries; the chunks
// concatenate back to text exactly. The similarity signal is computed on
// dense pooled vectors, so binary-mode engines do not support splitting.
func (e *Engine) Split(text string, opts split.Options) ([]string, error) {
	if e.Binary() {
		return nil, fmt.Errorf("split: %w", ErrBinaryUnsupported)
	}
	return e.splitter.Split(text, opts)
}

// scoreRow embeds the query and docs and returns the 1xN similarity row.
func (e *Engine) scoreRow(query string, docs []string) ([]float32, error) {
	qv, err := e.embedder.Embed([]string{query}, embedding.EmbedOptions{})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	dv, err := e.embedder.Embed(docs, embedding.EmbedOptions{})
	if err != nil {
		return nil, fmt.Errorf("embed docs: %w", err)
	}
	sims, err := e.scorer.Matrix(qv, dv)
	if err != nil {
		return nil, err
	}
	return sims[0], nil
}

// embedDense feeds the splitter normalized dense vectors.
func (e *Engine) embedDense(texts []string) ([][]float32, error) {
	vecs, err := e.embedder.Embed(texts, embedding.EmbedOptions{Normalize: true})
	if err != nil {
		return nil, err
	}
	return vecs.Dense, nil
}
