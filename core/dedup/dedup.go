// Package dedup removes near-duplicate documents from a corpus using
// pairwise similarity over precomputed embeddings. The corpus is scanned
// in order and the first occurrence of each near-duplicate group
// survives; comparisons are batched so the working similarity matrix
// stays bounded on large corpora.
package dedup

import (
	"errors"
	"log/slog"

	"github.com/adalundhe/semvec/core/embedding"
	"github.com/adalundhe/semvec/core/similarity"
)

// Default batch sizes trade the O(n^2) comparison matrix size against
// throughput. Packed codes are 64x smaller per comparison, so the binary
// default is far lower than the dense one for a similar memory bound.
const (
	DefaultBatchSizeBinary = 500
	DefaultBatchSizeDense  = 5000
)

var ErrLengthMismatch = errors.New("docs and vectors have different lengths")

// Deduplicate returns the subsequence of docs with no two surviving
// elements scoring above threshold. vecs must hold one embedding per doc
// in the scorer's mode (normalized dense, or raw packed codes).
//
// Marking happens in global index order: a document already marked as a
// duplicate never eliminates later documents, so the result is identical
// under any batch size.
func Deduplicate(docs []string, vecs *embedding.Vectors, scorer similarity.Scorer, threshold float32, batchSize int) ([]string, error) {
	if len(docs) != vecs.Len() {
		return nil, ErrLengthMismatch
	}
	if batchSize <= 0 {
		if scorer.Kind() == similarity.Binary {
			batchSize = DefaultBatchSizeBinary
		} else {
			batchSize = DefaultBatchSizeDense
		}
	}

	n := len(docs)
	duplicate := make([]bool, n)

	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)

		// Each batch row is compared against the whole remaining suffix;
		// earlier documents were already handled by earlier batches.
		sims, err := scorer.Matrix(vecs.Slice(start, end), vecs.Slice(start, n))
		if err != nil {
			return nil, err
		}

		for i := start; i < end; i++ {
			if duplicate[i] {
				continue
			}
			row := sims[i-start]
			for j := i + 1; j < n; j++ {
				if !duplicate[j] && row[j-start] > threshold {
					duplicate[j] = true
				}
			}
		}
	}

	unique := make([]string, 0, n)
	for i, doc := range docs {
		if !duplicate[i] {
			unique = append(unique, doc)
		}
	}
	slog.Debug("deduplicated corpus",
		"input", n, "kept", len(unique), "threshold", threshold, "batch_size", batchSize)
	return unique, nil
}
