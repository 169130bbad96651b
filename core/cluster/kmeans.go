// Package cluster implements multi-restart k-means over L2-normalized
// dense embeddings. Distances use the expansion
// ||x - c||^2 = ||x||^2 + ||c||^2 - 2(x.c) with all dot products computed
// in one BLAS GEMM per iteration.
package cluster

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

var (
	ErrTooFewVectors = errors.New("number of clusters cannot exceed number of vectors")
	ErrInvalidK      = errors.New("k must be positive")
)

// Options control one clustering call. Zero values take the defaults.
type Options struct {
	// MaxIterations caps Lloyd iterations per restart. Default 100.
	MaxIterations int

	// Tolerance is the centroid-shift threshold for convergence. A restart
	// stops once the total centroid movement between iterations drops
	// below it, provided MinIterations have elapsed. Default 1e-4.
	Tolerance float64

	// NInit is the number of independent restarts; the restart with the
	// lowest inertia wins, first encountered on ties. Default 10.
	NInit int

	// MinIterations is the floor before the tolerance check applies.
	// Default 5.
	MinIterations int

	// Seed makes centroid initialization reproducible. Restart r uses
	// Seed+r. Zero derives a seed from the clock.
	Seed int64
}

// DefaultOptions mirrors the engine's documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 100,
		Tolerance:     1e-4,
		NInit:         10,
		MinIterations: 5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.NInit <= 0 {
		o.NInit = d.NInit
	}
	if o.MinIterations <= 0 {
		o.MinIterations = d.MinIterations
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// KMeans clusters vectors into k groups and returns one label per vector
// in [0, k) plus the winning restart's inertia (sum of squared distances
// to assigned centroids). Restarts run strictly sequentially; batching and
// restarts exist for memory and quality, not concurrency.
func KMeans(vectors [][]float32, k int, opts Options) ([]int, float64, error) {
	if k <= 0 {
		return nil, 0, ErrInvalidK
	}
	if len(vectors) < k {
		return nil, 0, fmt.Errorf("%w: %d vectors for k=%d", ErrTooFewVectors, len(vectors), k)
	}
	opts = opts.withDefaults()

	state := newState(vectors, k)
	bestLabels := make([]int, state.n)
	bestInertia := math.MaxFloat64

	for restart := range opts.NInit {
		state.reset()
		rng := rand.New(rand.NewPCG(uint64(opts.Seed+int64(restart)), uint64(opts.Seed+int64(restart))))
		inertia := state.run(opts, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, state.assignments)
		}
		slog.Debug("kmeans restart finished",
			"restart", restart, "inertia", inertia, "best", bestInertia)
	}

	return bestLabels, bestInertia, nil
}

// state holds one restart's working memory, reused across restarts.
// Matrices are flat row-major float64 for BLAS.
type state struct {
	n, k, dim int

	vectors   []float64 // [n x dim]
	centroids []float64 // [k x dim]
	previous  []float64 // [k x dim] centroids from the prior iteration
	dots      []float64 // [n x k]

	vectorNorms   []float64
	centroidNorms []float64

	assignments []int
	counts      []int
	inertia     float64
}

func newState(vectors [][]float32, k int) *state {
	n := len(vectors)
	dim := len(vectors[0])
	s := &state{
		n:             n,
		k:             k,
		dim:           dim,
		vectors:       make([]float64, n*dim),
		centroids:     make([]float64, k*dim),
		previous:      make([]float64, k*dim),
		dots:          make([]float64, n*k),
		vectorNorms:   make([]float64, n),
		centroidNorms: make([]float64, k),
		assignments:   make([]int, n),
		counts:        make([]int, k),
	}
	for i, v := range vectors {
		var norm float64
		for d, x := range v {
			val := float64(x)
			s.vectors[i*dim+d] = val
			norm += val * val
		}
		s.vectorNorms[i] = norm
	}
	return s
}

// reset clears everything except the vectors, which are shared across
// restarts.
func (s *state) reset() {
	clear(s.centroids)
	clear(s.previous)
	clear(s.dots)
	clear(s.centroidNorms)
	clear(s.counts)
	for i := range s.assignments {
		s.assignments[i] = 0
	}
	s.inertia = 0
}

// run executes one restart and returns its final inertia.
func (s *state) run(opts Options, rng *rand.Rand) float64 {
	s.initPlusPlus(rng)
	s.computeCentroidNorms()

	for iter := range opts.MaxIterations {
		s.computeDots()
		s.assign()

		copy(s.previous, s.centroids)
		s.updateCentroids()
		s.reseedEmpty(rng)
		s.computeCentroidNorms()

		if iter+1 >= opts.MinIterations && s.centroidShift() < opts.Tolerance {
			break
		}
	}

	// Final assignment against the converged centroids so labels and
	// inertia agree with the centroids actually returned.
	s.computeDots()
	s.assign()
	return s.inertia
}

// initPlusPlus seeds centroids with k-means++: the first uniformly, each
// subsequent one sampled proportional to squared distance from the nearest
// centroid chosen so far.
func (s *state) initPlusPlus(rng *rand.Rand) {
	first := rng.IntN(s.n)
	copy(s.centroids[:s.dim], s.vectors[first*s.dim:(first+1)*s.dim])

	distances := make([]float64, s.n)
	for i := range distances {
		distances[i] = math.MaxFloat64
	}
	dotBuf := make([]float64, s.n)

	for c := 1; c < s.k; c++ {
		prev := s.centroids[(c-1)*s.dim : c*s.dim]
		prevNorm := dotSelf(prev)

		blas64.Gemv(blas.NoTrans,
			1,
			blas64.General{Rows: s.n, Cols: s.dim, Stride: s.dim, Data: s.vectors},
			blas64.Vector{N: s.dim, Inc: 1, Data: prev},
			0,
			blas64.Vector{N: s.n, Inc: 1, Data: dotBuf},
		)

		var total float64
		for i := range s.n {
			d := s.vectorNorms[i] + prevNorm - 2*dotBuf[i]
			if d < 0 {
				d = 0
			}
			if d < distances[i] {
				distances[i] = d
			}
			total += distances[i]
		}

		if total == 0 {
			idx := rng.IntN(s.n)
			copy(s.centroids[c*s.dim:(c+1)*s.dim], s.vectors[idx*s.dim:(idx+1)*s.dim])
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		selected := s.n - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				selected = i
				break
			}
		}
		copy(s.centroids[c*s.dim:(c+1)*s.dim], s.vectors[selected*s.dim:(selected+1)*s.dim])
	}
}

// computeDots fills dots = vectors @ centroids.T in one GEMM.
func (s *state) computeDots() {
	blas64.Gemm(blas.NoTrans, blas.Trans,
		1,
		blas64.General{Rows: s.n, Cols: s.dim, Stride: s.dim, Data: s.vectors},
		blas64.General{Rows: s.k, Cols: s.dim, Stride: s.dim, Data: s.centroids},
		0,
		blas64.General{Rows: s.n, Cols: s.k, Stride: s.k, Data: s.dots},
	)
}

// assign labels every vector with its nearest centroid and accumulates the
// inertia, clamping tiny negative distances from floating point error.
func (s *state) assign() {
	clear(s.counts)
	var total float64
	for i := range s.n {
		xNorm := s.vectorNorms[i]
		best := 0
		bestDist := math.MaxFloat64
		row := i * s.k
		for j := range s.k {
			d := xNorm + s.centroidNorms[j] - 2*s.dots[row+j]
			if d < 0 {
				d = 0
			}
			if d < bestDist {
				bestDist = d
				best = j
			}
		}
		s.assignments[i] = best
		s.counts[best]++
		total += bestDist
	}
	s.inertia = total
}

func (s *state) updateCentroids() {
	clear(s.centroids)
	for i := range s.n {
		c := s.assignments[i]
		vec := s.vectors[i*s.dim : (i+1)*s.dim]
		dst := s.centroids[c*s.dim : (c+1)*s.dim]
		for d, v := range vec {
			dst[d] += v
		}
	}
	for j := range s.k {
		if s.counts[j] == 0 {
			continue
		}
		inv := 1 / float64(s.counts[j])
		dst := s.centroids[j*s.dim : (j+1)*s.dim]
		for d := range dst {
			dst[d] *= inv
		}
	}
}

// reseedEmpty reinitializes empty clusters from the point farthest from
// its assigned centroid.
func (s *state) reseedEmpty(rng *rand.Rand) {
	for j := range s.k {
		if s.counts[j] != 0 {
			continue
		}
		maxDist := -1.0
		maxIdx := -1
		for i := range s.n {
			c := s.assignments[i]
			d := s.vectorNorms[i] + s.centroidNorms[c] - 2*s.dots[i*s.k+c]
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}
		if maxIdx < 0 {
			maxIdx = rng.IntN(s.n)
		}
		copy(s.centroids[j*s.dim:(j+1)*s.dim], s.vectors[maxIdx*s.dim:(maxIdx+1)*s.dim])
	}
}

// centroidShift is the Frobenius norm of the centroid movement since the
// previous iteration.
func (s *state) centroidShift() float64 {
	var sum float64
	for i, c := range s.centroids {
		diff := c - s.previous[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func (s *state) computeCentroidNorms() {
	for j := range s.k {
		s.centroidNorms[j] = dotSelf(s.centroids[j*s.dim : (j+1)*s.dim])
	}
}

func dotSelf(v []float64) float64 {
	vec := blas64.Vector{N: len(v), Inc: 1, Data: v}
	return blas64.Dot(vec, vec)
}
