package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankDescending(t *testing.T) {
	ranked, err := Rank([]string{"low", "high", "mid"}, []float32{0.1, 0.9, 0.5})
	require.NoError(t, err)

	assert.Equal(t, []string{"high", "mid", "low"}, docsOf(ranked))
	assert.Equal(t, 1, ranked[0].Index)
}

func TestRankStableTies(t *testing.T) {
	// Equal scores must preserve original document order.
	ranked, err := Rank([]string{"a", "b", "c"}, []float32{0.5, 0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, docsOf(ranked))
}

func TestRankLengthMismatch(t *testing.T) {
	_, err := Rank([]string{"a"}, []float32{0.1, 0.2})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFilterStrictlyGreater(t *testing.T) {
	kept, err := Filter([]string{"a", "b", "c"}, []float32{0.3, 0.30001, 0.8}, 0.3)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, kept, "boundary score must be excluded")
}

func TestTopK(t *testing.T) {
	docs := []string{"a", "b", "c", "d"}
	scores := []float32{0.1, 0.9, 0.5, 0.7}

	top, err := TopK(docs, scores, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, top)
}

func TestTopKRequiresMoreCandidatesThanK(t *testing.T) {
	docs := []string{"a", "b", "c"}
	scores := []float32{0.1, 0.2, 0.3}

	_, err := TopK(docs, scores, 3)
	assert.ErrorIs(t, err, ErrNotEnoughCandidates)

	_, err = TopK(docs, scores, 0)
	assert.ErrorIs(t, err, ErrNonPositiveK)
}

func docsOf(ranked []Scored) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Doc
	}
	return out
}
