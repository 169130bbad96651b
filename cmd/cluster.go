package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/semvec/core/cluster"
)

var (
	clusterK    int
	clusterSeed int64
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group documents with k-means",
	Long: `Cluster documents into k groups by k-means over normalized embeddings.
Requires a dense-mode model.

Examples:
  semvec cluster --docs corpus.txt -k 5
  semvec cluster --docs corpus.txt -k 5 --seed 42`,
	Args: cobra.NoArgs,
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().IntVarP(&clusterK, "clusters", "k", 2, "Number of clusters")
	clusterCmd.Flags().Int64Var(&clusterSeed, "seed", 0, "Random seed (0 = nondeterministic)")
}

func runCluster(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	docs, err := readDocs()
	if err != nil {
		return err
	}

	opts := cluster.DefaultOptions()
	opts.Seed = clusterSeed
	labels, inertia, err := eng.Cluster(docs, clusterK, opts)
	if err != nil {
		return err
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Labels  []int   `json:"labels"`
			Inertia float64 `json:"inertia"`
		}{labels, inertia})
	}
	for i, doc := range docs {
		fmt.Printf("%d\t%s\n", labels[i], doc)
	}
	fmt.Fprintf(os.Stderr, "inertia: %.6f\n", inertia)
	return nil
}
