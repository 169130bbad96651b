package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/semvec/core/embedding"
	"github.com/adalundhe/semvec/core/similarity"
)

// axisVectors builds unit vectors along the given axes so duplicates are
// exact (similarity 1) and distinct docs are orthogonal (similarity 0).
func axisVectors(axes []int, dim int) *embedding.Vectors {
	dense := make([][]float32, len(axes))
	for i, axis := range axes {
		v := make([]float32, dim)
		v[axis] = 1
		dense[i] = v
	}
	return &embedding.Vectors{Dense: dense}
}

func TestDeduplicateKeepsFirstOccurrence(t *testing.T) {
	docs := []string{"a1", "b1", "a2", "c1", "b2"}
	vecs := axisVectors([]int{0, 1, 0, 2, 1}, 8)

	unique, err := Deduplicate(docs, vecs, similarity.NewScorer(similarity.Dense), 0.9, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1", "c1"}, unique)
}

func TestDeduplicateIdempotent(t *testing.T) {
	docs := []string{"a1", "a2", "b1", "b2", "c1"}
	axes := []int{0, 0, 1, 1, 2}
	vecs := axisVectors(axes, 8)
	scorer := similarity.NewScorer(similarity.Dense)

	once, err := Deduplicate(docs, vecs, scorer, 0.9, 0)
	require.NoError(t, err)

	// Re-embed the survivors and dedup again: nothing further to remove.
	surviving := []int{0, 2, 4}
	again, err := Deduplicate(once, axisVectors(surviving, 8), scorer, 0.9, 0)
	require.NoError(t, err)
	assert.Equal(t, once, again)
}

func TestDeduplicateStableUnderBatchSize(t *testing.T) {
	docs := []string{"a1", "b1", "a2", "b2", "a3", "c1", "c2"}
	axes := []int{0, 1, 0, 1, 0, 2, 2}

	var want []string
	for _, batchSize := range []int{1, 2, 3, 5, 100} {
		vecs := axisVectors(axes, 8)
		got, err := Deduplicate(docs, vecs, similarity.NewScorer(similarity.Dense), 0.9, batchSize)
		require.NoError(t, err)
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "batch size %d changed the result", batchSize)
	}
	assert.Equal(t, []string{"a1", "b1", "c1"}, want)
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	docs := []string{"a", "b", "c"}
	vecs := axisVectors([]int{0, 1, 2}, 8)

	unique, err := Deduplicate(docs, vecs, similarity.NewScorer(similarity.Dense), 0.9, 0)
	require.NoError(t, err)
	assert.Equal(t, docs, unique)
}

func TestDeduplicateBinaryMode(t *testing.T) {
	// Identical codes are duplicates; a code with many differing bits
	// survives.
	codes := [][]uint64{
		{0xFFFF},
		{0xFFFF},
		{0},
	}
	docs := []string{"x1", "x2", "y"}
	vecs := &embedding.Vectors{Codes: codes}

	unique, err := Deduplicate(docs, vecs, similarity.NewScorer(similarity.Binary), 0.9, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "y"}, unique)
}

func TestDeduplicateLengthMismatch(t *testing.T) {
	vecs := axisVectors([]int{0}, 8)
	_, err := Deduplicate([]string{"a", "b"}, vecs, similarity.NewScorer(similarity.Dense), 0.9, 0)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
