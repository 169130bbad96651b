package embedding

import "strings"

// Encoding is one tokenized text: token ids and an attention mask of equal
// length, padded to the batch's sequence length.
type Encoding struct {
	IDs           []int32
	AttentionMask []float32
}

// Tokenizer is the external collaborator that maps texts to padded id
// sequences. Implementations must pad within a batch and must not truncate;
// the pad id has to clamp to a valid table row.
type Tokenizer interface {
	EncodeBatch(texts []string) ([]Encoding, error)
}

// WordTokenizer is a deterministic whitespace tokenizer backed by a fixed
// vocabulary. It serves vocab-file configurations and tests; production
// setups use HFTokenizer.
type WordTokenizer struct {
	vocab map[string]int32

	// UnknownID is assigned to words missing from the vocabulary.
	UnknownID int32
}

// NewWordTokenizer assigns ids 0..len(words)-1 in order.
func NewWordTokenizer(words []string) *WordTokenizer {
	vocab := make(map[string]int32, len(words))
	for i, w := range words {
		vocab[w] = int32(i)
	}
	return &WordTokenizer{vocab: vocab}
}

// EncodeBatch splits each text on whitespace and pads the batch to its
// longest sequence with id 0 and mask 0.
func (w *WordTokenizer) EncodeBatch(texts []string) ([]Encoding, error) {
	encs := make([]Encoding, len(texts))
	maxLen := 0
	for i, text := range texts {
		words := strings.Fields(text)
		ids := make([]int32, len(words))
		for j, word := range words {
			if id, ok := w.vocab[word]; ok {
				ids[j] = id
			} else {
				ids[j] = w.UnknownID
			}
		}
		encs[i] = Encoding{IDs: ids}
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}

	for i := range encs {
		n := len(encs[i].IDs)
		ids := make([]int32, maxLen)
		mask := make([]float32, maxLen)
		copy(ids, encs[i].IDs)
		for j := range n {
			mask[j] = 1
		}
		encs[i] = Encoding{IDs: ids, AttentionMask: mask}
	}
	return encs, nil
}
