// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/smartcity-advisor/internal/advisor"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run the full pipeline for a query file",
	Long: `Recommend ranks similar cities and, depending on what the query file
provides, matches their projects (scope and duration), looks up EU funding
(region and scope), and picks the cheapest project within the budget.

Use --save to write the query together with its results to a YAML file
that can be passed back with --query.`,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	savePath, _ := cmd.Flags().GetString("save")
	jsonOut, _ := cmd.Flags().GetBool("json")

	q, err := readQuery(cmd)
	if err != nil {
		return err
	}
	adv, err := newAdvisor(cmd, cfg)
	if err != nil {
		return err
	}

	rec, err := adv.Recommend(q)
	if err != nil {
		return userError(err)
	}

	if savePath != "" {
		if err := advisor.WriteQueryFile(savePath, q, rec); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved results to %s\n", savePath)
	}

	if jsonOut {
		return writeJSON(os.Stdout, rec)
	}
	fmt.Print(adv.Text(rec))
	return nil
}

func init() {
	recommendCmd.Flags().String("query", "", "query file describing the city (YAML)")
	recommendCmd.Flags().String("scope", "", "intervention scope (overrides the query file)")
	recommendCmd.Flags().String("duration", "", "project duration (overrides the query file)")
	recommendCmd.Flags().String("region", "", "funding region (overrides the query file)")
	recommendCmd.Flags().Float64("budget", 0, "available budget in euro (overrides the query file)")
	recommendCmd.Flags().String("save", "", "write the query and its results to this YAML file")
	recommendCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(recommendCmd)
}
