package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/semvec/core/embedding"
)

var embedNormalize bool

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Emit pooled embeddings as JSON",
	Long: `Embed documents and write one pooled vector per document as JSON: dense
float rows, or packed 64-bit code words for a binary-mode model.

Examples:
  semvec embed --docs corpus.txt --normalize`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	embedCmd.Flags().BoolVarP(&embedNormalize, "normalize", "n", false, "L2-normalize pooled vectors")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	docs, err := readDocs()
	if err != nil {
		return err
	}
	vecs, err := eng.Embed(docs, embedding.EmbedOptions{Normalize: embedNormalize})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if vecs.Binary() {
		return enc.Encode(vecs.Codes)
	}
	return enc.Encode(vecs.Dense)
}
