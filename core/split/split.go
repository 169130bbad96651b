// Package split segments text at semantic boundaries. The text is first
// broken into small atomic units on newline structure, every unit is
// embedded, and a smoothed cross-similarity signal over neighboring units
// picks the merge boundaries: chunks end where local similarity dips,
// which is where topics tend to change.
//
// The partition is lossless: concatenating the returned chunks reproduces
// the input byte for byte.
package split

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/adalundhe/semvec/core/similarity"
)

var ErrEmptyText = errors.New("text must be non-empty")

// EmbedFunc embeds units as L2-normalized dense vectors, one per input.
type EmbedFunc func(texts []string) ([][]float32, error)

// Options control one Split call. Zero values take the defaults.
type Options struct {
	// TargetSize is the soft upper bound on chunk bytes. Default 1536.
	TargetSize int

	// WindowSize is how many neighbors on each side feed a unit's
	// cross-similarity signal. Default 3.
	WindowSize int

	// InitialSplitSize bounds the atomic units produced by the structural
	// split. Default 64.
	InitialSplitSize int

	// PolyOrder is the Savitzky-Golay polynomial order. Default 3.
	PolyOrder int

	// SavgolWindow is the Savitzky-Golay window length. Default 5.
	SavgolWindow int
}

// DefaultOptions mirrors the engine's documented defaults.
func DefaultOptions() Options {
	return Options{
		TargetSize:       1536,
		WindowSize:       3,
		InitialSplitSize: 64,
		PolyOrder:        3,
		SavgolWindow:     5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TargetSize <= 0 {
		o.TargetSize = d.TargetSize
	}
	if o.WindowSize <= 0 {
		o.WindowSize = d.WindowSize
	}
	if o.InitialSplitSize <= 0 {
		o.InitialSplitSize = d.InitialSplitSize
	}
	if o.PolyOrder <= 0 {
		o.PolyOrder = d.PolyOrder
	}
	if o.SavgolWindow <= 0 {
		o.SavgolWindow = d.SavgolWindow
	}
	return o
}

// Splitter is stateless beyond the embedding function it consults.
type Splitter struct {
	embed EmbedFunc
	log   *slog.Logger
}

// New builds a splitter around an embedding function.
func New(embed EmbedFunc) *Splitter {
	return &Splitter{embed: embed, log: slog.Default()}
}

// Split partitions text into contiguous chunks at semantic boundaries.
func (s *Splitter) Split(text string, opts Options) ([]string, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	opts = opts.withDefaults()

	units := initialSplit(text, opts.InitialSplitSize)
	if len(units) < 3 {
		return []string{text}, nil
	}

	embeddings, err := s.embed(units)
	if err != nil {
		return nil, err
	}
	sims, err := similarity.Cosine(embeddings, embeddings)
	if err != nil {
		return nil, err
	}

	signal := windowedCross(sims, opts.WindowSize)
	smoothed := savgol(signal, opts.SavgolWindow, opts.PolyOrder)
	boundaries := localMinima(smoothed)

	chunks := merge(units, boundaries, opts.TargetSize)
	s.log.Debug("split text",
		"bytes", len(text), "units", len(units), "boundaries", len(boundaries), "chunks", len(chunks))
	return chunks, nil
}

// initialSplit breaks text into units of at most size bytes without losing
// a single byte: split after newlines, hard-wrap oversized pieces at rune
// boundaries (preferring spaces), then coalesce runs of small neighbors
// back up to the size bound.
func initialSplit(text string, size int) []string {
	var pieces []string
	for _, piece := range strings.SplitAfter(text, "\n") {
		if piece == "" {
			continue
		}
		if len(piece) <= size {
			pieces = append(pieces, piece)
			continue
		}
		pieces = append(pieces, hardWrap(piece, size)...)
	}
	return coalesce(pieces, size)
}

// hardWrap cuts piece into fragments of roughly size bytes. Cuts land on
// rune boundaries, after the last space inside the window when one exists.
func hardWrap(piece string, size int) []string {
	var out []string
	for len(piece) > size {
		cut := size
		for cut < len(piece) && !utf8.RuneStart(piece[cut]) {
			cut++
		}
		if idx := strings.LastIndexByte(piece[:cut], ' '); idx >= 1 {
			cut = idx + 1
		}
		out = append(out, piece[:cut])
		piece = piece[cut:]
	}
	if piece != "" {
		out = append(out, piece)
	}
	return out
}

// coalesce greedily merges consecutive pieces while the merged unit stays
// within size bytes.
func coalesce(pieces []string, size int) []string {
	var out []string
	cur := ""
	for _, p := range pieces {
		switch {
		case cur == "":
			cur = p
		case len(cur)+len(p) <= size:
			cur += p
		default:
			out = append(out, cur)
			cur = p
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// windowedCross averages each unit's similarity to its window neighbors,
// excluding itself.
func windowedCross(sims [][]float32, window int) []float64 {
	n := len(sims)
	signal := make([]float64, n)
	for i := range n {
		lo := max(i-window, 0)
		hi := min(i+window, n-1)
		var sum float64
		count := 0
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			sum += float64(sims[i][j])
			count++
		}
		if count > 0 {
			signal[i] = sum / float64(count)
		}
	}
	return signal
}

// localMinima returns interior indices that dip below both neighbors.
func localMinima(signal []float64) []int {
	var minima []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] < signal[i-1] && signal[i] < signal[i+1] {
			minima = append(minima, i)
		}
	}
	return minima
}

// merge concatenates consecutive units into chunks, cutting before each
// boundary unit and whenever the running chunk would exceed the soft
// target size.
func merge(units []string, boundaries []int, target int) []string {
	isBoundary := make(map[int]bool, len(boundaries))
	for _, b := range boundaries {
		isBoundary[b] = true
	}

	var chunks []string
	var cur strings.Builder
	for i, unit := range units {
		if cur.Len() > 0 && (isBoundary[i] || cur.Len()+len(unit) > target) {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(unit)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
