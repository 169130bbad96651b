package embedding

import "errors"

var (
	ErrEmptyInput         = errors.New("input must contain at least one text")
	ErrDimNotMultipleOf64 = errors.New("binary mode requires a dimension divisible by 64")
	ErrDimensionMismatch  = errors.New("weight data size does not match vocab size and dimension")
	ErrEncodingMismatch   = errors.New("tokenizer returned mismatched ids and attention mask")
	ErrPoolingRequired    = errors.New("binary embeddings require pooling")
)
