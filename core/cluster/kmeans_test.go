package cluster

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusteredVectors places n points in tight groups around k well-separated
// centers.
func clusteredVectors(n, dim, k int, seed uint64) ([][]float32, []int) {
	rng := rand.New(rand.NewPCG(seed, seed))

	centers := make([][]float32, k)
	for c := range centers {
		centers[c] = make([]float32, dim)
		for d := range centers[c] {
			centers[c][d] = rng.Float32()*10 - 5
		}
	}

	vectors := make([][]float32, n)
	membership := make([]int, n)
	for i := range vectors {
		c := i % k
		membership[i] = c
		vectors[i] = make([]float32, dim)
		for d := range vectors[i] {
			vectors[i][d] = centers[c][d] + rng.Float32()*0.1 - 0.05
		}
	}
	return vectors, membership
}

func TestKMeansRecoversSeparatedClusters(t *testing.T) {
	vectors, membership := clusteredVectors(60, 16, 3, 1)

	labels, inertia, err := KMeans(vectors, 3, Options{Seed: 42})
	require.NoError(t, err)
	require.Len(t, labels, 60)

	// Points from the same generating cluster must share a label and
	// points from different clusters must not.
	for i := range labels {
		assert.GreaterOrEqual(t, labels[i], 0)
		assert.Less(t, labels[i], 3)
		for j := i + 1; j < len(labels); j++ {
			if membership[i] == membership[j] {
				assert.Equal(t, labels[i], labels[j], "points %d and %d", i, j)
			} else {
				assert.NotEqual(t, labels[i], labels[j], "points %d and %d", i, j)
			}
		}
	}

	// Tight clusters around separated centers have tiny inertia.
	assert.Less(t, inertia, 1.0)
}

func TestKMeansReproducibleWithSeed(t *testing.T) {
	vectors, _ := clusteredVectors(40, 8, 4, 2)

	labels1, inertia1, err := KMeans(vectors, 4, Options{Seed: 7})
	require.NoError(t, err)
	labels2, inertia2, err := KMeans(vectors, 4, Options{Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, labels1, labels2)
	assert.Equal(t, inertia1, inertia2)
}

func TestKMeansKEqualsN(t *testing.T) {
	vectors, _ := clusteredVectors(5, 8, 5, 3)
	labels, inertia, err := KMeans(vectors, 5, Options{Seed: 1})
	require.NoError(t, err)

	// Every point gets its own centroid.
	seen := make(map[int]bool)
	for _, l := range labels {
		seen[l] = true
	}
	assert.Len(t, seen, 5)
	assert.InDelta(t, 0, inertia, 1e-6)
}

func TestKMeansValidation(t *testing.T) {
	vectors, _ := clusteredVectors(3, 4, 1, 4)

	_, _, err := KMeans(vectors, 5, Options{})
	assert.ErrorIs(t, err, ErrTooFewVectors)

	_, _, err = KMeans(vectors, 0, Options{})
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestKMeansSingleCluster(t *testing.T) {
	vectors, _ := clusteredVectors(10, 4, 1, 5)
	labels, _, err := KMeans(vectors, 1, Options{Seed: 9, NInit: 1})
	require.NoError(t, err)
	for _, l := range labels {
		assert.Zero(t, l)
	}
}
