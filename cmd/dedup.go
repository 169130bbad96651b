package cmd

import (
	"github.com/spf13/cobra"
)

var (
	dedupThreshold float64
	dedupBatchSize int
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Remove near-duplicate documents",
	Long: `Remove near-duplicate documents, keeping the first occurrence of each
near-duplicate group and preserving document order.

Examples:
  semvec dedup --docs corpus.txt
  semvec dedup --docs corpus.txt --threshold 0.85`,
	Args: cobra.NoArgs,
	RunE: runDedup,
}

func init() {
	rootCmd.AddCommand(dedupCmd)
	dedupCmd.Flags().Float64VarP(&dedupThreshold, "threshold", "t", 0.9, "Similarity above which documents are duplicates")
	dedupCmd.Flags().IntVarP(&dedupBatchSize, "batch-size", "b", 0, "Comparison batch size (0 = mode default)")
}

func runDedup(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	docs, err := readDocs()
	if err != nil {
		return err
	}
	unique, err := eng.Deduplicate(docs, float32(dedupThreshold), dedupBatchSize)
	if err != nil {
		return err
	}
	return printStrings(unique)
}
