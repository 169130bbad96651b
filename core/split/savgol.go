package split

import "gonum.org/v1/gonum/mat"

// savgol applies a Savitzky-Golay filter: each point is replaced by the
// value at the center of a least-squares polynomial fit over its window.
// Edges clamp to the signal boundary. Signals shorter than the window are
// returned unsmoothed; even windows widen by one and the polynomial order
// shrinks to fit if needed.
func savgol(signal []float64, window, order int) []float64 {
	if window%2 == 0 {
		window++
	}
	if window > len(signal) {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}
	if order >= window {
		order = window - 1
	}

	weights := savgolWeights(window, order)
	if weights == nil {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}

	half := window / 2
	n := len(signal)
	out := make([]float64, n)
	for i := range n {
		var sum float64
		for j, w := range weights {
			idx := i + j - half
			if idx < 0 {
				idx = 0
			} else if idx >= n {
				idx = n - 1
			}
			sum += w * signal[idx]
		}
		out[i] = sum
	}
	return out
}

// savgolWeights computes the convolution weights as the center row of the
// projection matrix A (A^T A)^-1 A^T, where A is the Vandermonde matrix of
// window offsets up to the polynomial order.
func savgolWeights(window, order int) []float64 {
	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for r := range window {
		x := float64(r - half)
		pow := 1.0
		for p := 0; p <= order; p++ {
			a.Set(r, p, pow)
			pow *= x
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil
	}
	var proj mat.Dense
	proj.Product(a, &inv, a.T())
	return mat.Row(nil, half, &proj)
}
