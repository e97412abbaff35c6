// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Rank the reference cities most similar to a described city",
	Long: `Similar normalizes the city described in the query file against the
reference set and lists the closest cities with a similarity percentage.
Percentages are relative: the farthest city of the set scores 0.

With --details each city also shows its raw feature values and the
weighted features that contributed to its score.`,
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if metric, _ := cmd.Flags().GetString("metric"); metric != "" {
		cfg.Similarity.Metric = types.Metric(metric)
	}
	topK, _ := cmd.Flags().GetInt("top-k")
	details, _ := cmd.Flags().GetBool("details")
	jsonOut, _ := cmd.Flags().GetBool("json")

	q, err := readQuery(cmd)
	if err != nil {
		return err
	}
	adv, err := newAdvisor(cmd, cfg)
	if err != nil {
		return err
	}

	res, err := adv.Similar(q, topK)
	if err != nil {
		return userError(err)
	}
	if jsonOut {
		return writeJSON(os.Stdout, res)
	}
	fmt.Print(adv.RenderSimilar(res, details))
	return nil
}

func init() {
	similarCmd.Flags().String("query", "", "query file describing the city (YAML)")
	similarCmd.Flags().Int("top-k", 0, "number of cities to return (0 = configured default)")
	similarCmd.Flags().String("metric", "", "similarity metric: euclidean or cosine")
	similarCmd.Flags().Bool("details", false, "show raw values and feature contributions")
	similarCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(similarCmd)
}
