// Package config loads and validates the YAML model configuration
// consumed by the CLI: table shape, weight file location, similarity
// mode, and tokenizer settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDim       = errors.New("model dim must be positive")
	ErrInvalidVocab     = errors.New("model vocab_size must be positive")
	ErrMissingWeights   = errors.New("model weights_path is required")
	ErrBinaryDim        = errors.New("binary mode requires dim divisible by 64")
	ErrUnknownTokenizer = errors.New("tokenizer kind must be \"hf\" or \"vocab\"")
	ErrMissingTokenizer = errors.New("tokenizer path is required")
)

// Config is the full model configuration.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
}

// ModelConfig describes the embedding table and similarity mode.
type ModelConfig struct {
	// Dim is the embedding dimension.
	Dim int `yaml:"dim"`

	// VocabSize is the number of rows in the table.
	VocabSize int `yaml:"vocab_size"`

	// WeightsPath locates the raw little-endian float32 weight file.
	WeightsPath string `yaml:"weights_path"`

	// Binary selects packed sign codes and Hamming similarity.
	Binary bool `yaml:"binary"`
}

// TokenizerConfig selects and configures the tokenizer collaborator.
type TokenizerConfig struct {
	// Kind is "hf" for a HuggingFace tokenizer.json or "vocab" for a
	// plain newline-separated word list.
	Kind string `yaml:"kind"`

	// Path locates the tokenizer.json or vocab file.
	Path string `yaml:"path"`

	// PadID is the id used for batch padding; it must clamp to a valid
	// table row.
	PadID int32 `yaml:"pad_id"`

	// AddSpecialTokens inserts model special tokens when encoding.
	// Static-embedding models are trained without them.
	AddSpecialTokens bool `yaml:"add_special_tokens"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Model.Dim <= 0 {
		return ErrInvalidDim
	}
	if c.Model.VocabSize <= 0 {
		return ErrInvalidVocab
	}
	if c.Model.WeightsPath == "" {
		return ErrMissingWeights
	}
	if c.Model.Binary && c.Model.Dim%64 != 0 {
		return fmt.Errorf("%w: dim=%d", ErrBinaryDim, c.Model.Dim)
	}
	switch c.Tokenizer.Kind {
	case "hf", "vocab":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTokenizer, c.Tokenizer.Kind)
	}
	if c.Tokenizer.Path == "" {
		return ErrMissingTokenizer
	}
	return nil
}
