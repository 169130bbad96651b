package vecmath

import "math/bits"

// WordBits is the number of sign bits packed into one code word.
const WordBits = 64

// CodeWords returns the number of uint64 words needed for dim sign bits.
// dim must be a multiple of WordBits; callers validate at construction.
func CodeWords(dim int) int {
	return dim / WordBits
}

// PackSign writes the sign bits of v into code, one bit per dimension,
// 64 consecutive dimensions per word. A component contributes a set bit
// when it is strictly positive. len(code) must equal len(v)/WordBits.
func PackSign(v []float32, code []uint64) {
	for w := range code {
		var word uint64
		base := w * WordBits
		for b := range WordBits {
			if v[base+b] > 0 {
				word |= 1 << uint(b)
			}
		}
		code[w] = word
	}
}

// Hamming returns the number of differing bits between two packed codes.
func Hamming(a, b []uint64) int {
	dist := 0
	for i := range a {
		dist += bits.OnesCount64(a[i] ^ b[i])
	}
	return dist
}
