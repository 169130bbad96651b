package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/semvec/core/cluster"
	"github.com/adalundhe/semvec/core/embedding"
	"github.com/adalundhe/semvec/core/rank"
	"github.com/adalundhe/semvec/core/split"
)

var testVocab = []string{
	"cat", "sat", "on", "mat",
	"dog", "rug",
	"quantum", "entanglement", "physics",
}

// testEngine builds an engine over a 128-dim one-hot table so cosine
// scores are exact word-overlap ratios.
func testEngine(t *testing.T, binary bool) *Engine {
	t.Helper()
	const dim = 128
	rows := make([][]float32, len(testVocab))
	for i := range rows {
		rows[i] = make([]float32, dim)
		rows[i][i] = 1
	}
	table, err := embedding.NewTableFromRows(rows)
	require.NoError(t, err)

	e, err := New(table, embedding.NewWordTokenizer(testVocab), binary)
	require.NoError(t, err)
	return e
}

func TestRankEndToEnd(t *testing.T) {
	e := testEngine(t, false)
	docs := []string{
		"cat sat on mat",
		"dog sat on rug",
		"quantum entanglement physics",
	}

	ranked, err := e.Rank("cat sat on mat", docs)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "cat sat on mat", ranked[0].Doc)
	assert.InDelta(t, 1.0, float64(ranked[0].Score), 1e-5)
	assert.Equal(t, "quantum entanglement physics", ranked[2].Doc)
	assert.Less(t, ranked[2].Score, ranked[1].Score)
}

func TestRankEndToEndBinary(t *testing.T) {
	e := testEngine(t, true)
	docs := []string{
		"cat sat on mat",
		"dog sat on rug",
		"quantum entanglement physics",
	}

	ranked, err := e.Rank("cat sat on mat", docs)
	require.NoError(t, err)

	assert.Equal(t, "cat sat on mat", ranked[0].Doc)
	assert.InDelta(t, 1.0, float64(ranked[0].Score), 1e-6)
	assert.Equal(t, "quantum entanglement physics", ranked[2].Doc)
}

func TestRankStableOnTies(t *testing.T) {
	e := testEngine(t, false)
	// All docs are disjoint from the query, so every score ties at zero
	// and the original order must survive.
	ranked, err := e.Rank("quantum", []string{"cat", "sat", "on"})
	require.NoError(t, err)
	assert.Equal(t, "cat", ranked[0].Doc)
	assert.Equal(t, "sat", ranked[1].Doc)
	assert.Equal(t, "on", ranked[2].Doc)
}

func TestSimilarity(t *testing.T) {
	e := testEngine(t, false)

	same, err := e.Similarity("cat sat on mat", "cat sat on mat")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(same), 1e-5)

	disjoint, err := e.Similarity("cat sat on mat", "quantum entanglement physics")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, float64(disjoint), 1e-5)
}

func TestTopKPrecondition(t *testing.T) {
	e := testEngine(t, false)
	docs := []string{"cat", "dog", "mat"}

	_, err := e.TopK("cat", docs, 3)
	assert.ErrorIs(t, err, rank.ErrNotEnoughCandidates)

	top, err := e.TopK("cat", docs, 2)
	require.NoError(t, err)
	assert.Equal(t, "cat", top[0])
}

func TestFilterStrictThreshold(t *testing.T) {
	e := testEngine(t, false)
	docs := []string{"cat sat", "dog rug", "cat mat"}

	kept, err := e.Filter("cat sat on mat", docs, 0.4)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat sat", "cat mat"}, kept)
}

func TestDeduplicate(t *testing.T) {
	e := testEngine(t, false)
	docs := []string{"cat sat", "cat sat", "dog rug", "cat sat", "physics"}

	unique, err := e.Deduplicate(docs, 0.9, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat sat", "dog rug", "physics"}, unique)

	// Idempotence: a second pass removes nothing.
	again, err := e.Deduplicate(unique, 0.9, 0)
	require.NoError(t, err)
	assert.Equal(t, unique, again)
}

func TestClusterEndToEnd(t *testing.T) {
	e := testEngine(t, false)
	docs := []string{
		"cat sat", "cat mat", "cat sat mat",
		"quantum physics", "quantum entanglement", "entanglement physics",
	}

	labels, inertia, err := e.Cluster(docs, 2, cluster.Options{Seed: 42})
	require.NoError(t, err)
	require.Len(t, labels, 6)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
	assert.GreaterOrEqual(t, inertia, 0.0)

	// Same seed, same result.
	labels2, inertia2, err := e.Cluster(docs, 2, cluster.Options{Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, labels, labels2)
	assert.Equal(t, inertia, inertia2)
}

func TestClusterBinaryUnsupported(t *testing.T) {
	e := testEngine(t, true)
	_, _, err := e.Cluster([]string{"cat", "dog"}, 2, cluster.Options{})
	assert.ErrorIs(t, err, ErrBinaryUnsupported)
}

func TestSplitRoundTrip(t *testing.T) {
	e := testEngine(t, false)
	text := "cat sat on mat\ncat sat\ncat mat on\nquantum entanglement physics\nquantum physics\nentanglement physics now\n"

	chunks, err := e.Split(text, split.Options{InitialSplitSize: 24, TargetSize: 96})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitBinaryUnsupported(t *testing.T) {
	e := testEngine(t, true)
	_, err := e.Split("cat\ndog\n", split.Options{})
	assert.ErrorIs(t, err, ErrBinaryUnsupported)
}

func TestEmbedModeFixedAtConstruction(t *testing.T) {
	dense := testEngine(t, false)
	binary := testEngine(t, true)

	dv, err := dense.Embed([]string{"cat"}, embedding.EmbedOptions{})
	require.NoError(t, err)
	assert.NotNil(t, dv.Dense)
	assert.Nil(t, dv.Codes)

	bv, err := binary.Embed([]string{"cat"}, embedding.EmbedOptions{})
	require.NoError(t, err)
	assert.Nil(t, bv.Dense)
	assert.NotNil(t, bv.Codes)
	assert.Len(t, bv.Codes[0], 2)
}
