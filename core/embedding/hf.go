package embedding

import (
	"fmt"

	"github.com/daulet/tokenizers"
)

// HFTokenizer adapts a HuggingFace tokenizer.json to the Tokenizer
// interface. Truncation is never applied; padding to the batch's longest
// sequence happens here with PadID and a zero attention mask.
type HFTokenizer struct {
	tk    *tokenizers.Tokenizer
	padID int32

	// AddSpecialTokens controls whether special tokens (CLS/SEP style)
	// are inserted. Static-embedding models are trained without them.
	AddSpecialTokens bool
}

// NewHFTokenizer loads a tokenizer.json from path. padID must clamp to a
// valid embedding row; row 0 is the usual choice.
func NewHFTokenizer(path string, padID int32) (*HFTokenizer, error) {
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &HFTokenizer{tk: tk, padID: padID}, nil
}

// EncodeBatch encodes every text and pads the batch to equal length.
func (h *HFTokenizer) EncodeBatch(texts []string) ([]Encoding, error) {
	encs := make([]Encoding, len(texts))
	maxLen := 0
	for i, text := range texts {
		enc := h.tk.EncodeWithOptions(text, h.AddSpecialTokens,
			tokenizers.WithReturnAttentionMask())
		ids := make([]int32, len(enc.IDs))
		mask := make([]float32, len(enc.IDs))
		for j, id := range enc.IDs {
			ids[j] = int32(id)
			if j < len(enc.AttentionMask) {
				mask[j] = float32(enc.AttentionMask[j])
			} else {
				mask[j] = 1
			}
		}
		encs[i] = Encoding{IDs: ids, AttentionMask: mask}
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}

	for i := range encs {
		if len(encs[i].IDs) == maxLen {
			continue
		}
		ids := make([]int32, maxLen)
		mask := make([]float32, maxLen)
		for j := range ids {
			ids[j] = h.padID
		}
		copy(ids, encs[i].IDs)
		copy(mask, encs[i].AttentionMask)
		encs[i] = Encoding{IDs: ids, AttentionMask: mask}
	}
	return encs, nil
}

// Close releases the native tokenizer.
func (h *HFTokenizer) Close() error {
	h.tk.Close()
	return nil
}
