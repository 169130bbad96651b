// Package rank orders, filters, and truncates documents by similarity
// score. It holds no algorithm of its own beyond stable sorting and
// thresholding; the scores come from the similarity engine.
package rank

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrLengthMismatch      = errors.New("docs and scores have different lengths")
	ErrNotEnoughCandidates = errors.New("number of candidates must be greater than k")
	ErrNonPositiveK        = errors.New("k must be positive")
)

// Scored pairs a document with its similarity score against the query.
// Index is the document's position in the original input.
type Scored struct {
	Doc   string
	Score float32
	Index int
}

// Rank sorts documents by descending score. The sort is stable: equal
// scores keep their original document order, so tie-breaking is
// deterministic.
func Rank(docs []string, scores []float32) ([]Scored, error) {
	if len(docs) != len(scores) {
		return nil, fmt.Errorf("%w: %d docs, %d scores", ErrLengthMismatch, len(docs), len(scores))
	}
	ranked := make([]Scored, len(docs))
	for i, doc := range docs {
		ranked[i] = Scored{Doc: doc, Score: scores[i], Index: i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// Filter keeps documents scoring strictly greater than threshold,
// preserving input order.
func Filter(docs []string, scores []float32, threshold float32) ([]string, error) {
	if len(docs) != len(scores) {
		return nil, fmt.Errorf("%w: %d docs, %d scores", ErrLengthMismatch, len(docs), len(scores))
	}
	kept := make([]string, 0, len(docs))
	for i, doc := range docs {
		if scores[i] > threshold {
			kept = append(kept, doc)
		}
	}
	return kept, nil
}

// TopK returns the k best-scoring documents. The candidate pool must be
// strictly larger than k.
func TopK(docs []string, scores []float32, k int) ([]string, error) {
	if k <= 0 {
		return nil, ErrNonPositiveK
	}
	if len(docs) <= k {
		return nil, fmt.Errorf("%w: %d candidates for k=%d", ErrNotEnoughCandidates, len(docs), k)
	}
	ranked, err := Rank(docs, scores)
	if err != nil {
		return nil, err
	}
	top := make([]string, k)
	for i := range k {
		top[i] = ranked[i].Doc
	}
	return top, nil
}
