package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rankTopK      int
	rankThreshold float64
	rankFilter    bool
)

var rankCmd = &cobra.Command{
	Use:   "rank <query>",
	Short: "Rank documents by similarity to a query",
	Long: `Rank documents by descending similarity to the query.

Examples:
  semvec rank "database migrations" --docs corpus.txt
  semvec rank "database migrations" --docs corpus.txt --topk 5
  semvec rank "database migrations" --docs corpus.txt --filter --threshold 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().IntVarP(&rankTopK, "topk", "k", 0, "Return only the top k documents")
	rankCmd.Flags().Float64VarP(&rankThreshold, "threshold", "t", 0.3, "Similarity threshold for --filter")
	rankCmd.Flags().BoolVar(&rankFilter, "filter", false, "Keep only documents scoring above --threshold")
}

func runRank(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	docs, err := readDocs()
	if err != nil {
		return err
	}

	query := args[0]

	switch {
	case rankTopK > 0:
		top, err := eng.TopK(query, docs, rankTopK)
		if err != nil {
			return err
		}
		return printStrings(top)
	case rankFilter:
		kept, err := eng.Filter(query, docs, float32(rankThreshold))
		if err != nil {
			return err
		}
		return printStrings(kept)
	default:
		ranked, err := eng.Rank(query, docs)
		if err != nil {
			return err
		}
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(ranked)
		}
		for _, r := range ranked {
			fmt.Printf("%.4f\t%s\n", r.Score, r.Doc)
		}
		return nil
	}
}

func printStrings(items []string) error {
	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(items)
	}
	for _, item := range items {
		fmt.Println(item)
	}
	return nil
}
