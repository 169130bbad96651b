// Package cmd provides the semvec CLI: text similarity, ranking,
// deduplication, clustering, and semantic splitting over a static
// token-embedding table.
package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adalundhe/semvec/core/config"
	"github.com/adalundhe/semvec/core/embedding"
	"github.com/adalundhe/semvec/core/engine"
)

var (
	flagConfig  string
	flagDocs    string
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "semvec",
	Short: "Fast semantic text operations on static token embeddings",
	Long: `semvec embeds text with a precomputed token-embedding table (no neural
forward pass) and runs vector-space operations on the result: similarity
scoring, ranking, near-duplicate filtering, k-means clustering, and
similarity-guided text splitting.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "semvec.yaml", "Path to the model config file")
	rootCmd.PersistentFlags().StringVarP(&flagDocs, "docs", "d", "", "File with one document per line (default: stdin)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadEngine builds the engine described by the config file.
func loadEngine() (*engine.Engine, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	table, err := embedding.LoadTable(cfg.Model.WeightsPath, cfg.Model.VocabSize, cfg.Model.Dim)
	if err != nil {
		return nil, err
	}

	var tok embedding.Tokenizer
	switch cfg.Tokenizer.Kind {
	case "hf":
		hf, err := embedding.NewHFTokenizer(cfg.Tokenizer.Path, cfg.Tokenizer.PadID)
		if err != nil {
			return nil, err
		}
		hf.AddSpecialTokens = cfg.Tokenizer.AddSpecialTokens
		tok = hf
	case "vocab":
		words, err := readLines(cfg.Tokenizer.Path)
		if err != nil {
			return nil, fmt.Errorf("read vocab: %w", err)
		}
		tok = embedding.NewWordTokenizer(words)
	}

	return engine.New(table, tok, cfg.Model.Binary)
}

// readDocs reads documents, one per line, from --docs or stdin.
func readDocs() ([]string, error) {
	if flagDocs != "" {
		return readLines(flagDocs)
	}
	var docs []string
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			docs = append(docs, line)
		}
	}
	return docs, scanner.Err()
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
