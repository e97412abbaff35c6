// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/smartcity-advisor/internal/projects"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Find projects of similar cities matching a scope and duration",
	Long: `Projects ranks the cities most similar to the query city and checks
the projects of the closest five against the requested intervention scope
and duration. Projects matching both are perfect matches; projects matching
one are suggested as alternatives.

Scope accepts Smart_Mobility, Smart_Environment, Smart_Economy,
Smart_People, Smart_Living (spaces or underscores, any case). Duration
accepts the dataset labels or short, medium, long.`,
	RunE: runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jsonOut, _ := cmd.Flags().GetBool("json")

	q, err := readQuery(cmd)
	if err != nil {
		return err
	}
	adv, err := newAdvisor(cmd, cfg)
	if err != nil {
		return err
	}

	report, err := adv.Projects(q)
	if err != nil {
		return userError(err)
	}
	if jsonOut {
		return writeJSON(os.Stdout, report)
	}
	fmt.Print(report.Narrative)
	return nil
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Pick the cheapest project of similar cities within a budget",
	Long: `Budget ranks the cities most similar to the query city and selects,
among their projects with a known cost, the cheapest one that fits the
budget.`,
	RunE: runBudget,
}

func runBudget(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jsonOut, _ := cmd.Flags().GetBool("json")

	q, err := readQuery(cmd)
	if err != nil {
		return err
	}
	adv, err := newAdvisor(cmd, cfg)
	if err != nil {
		return err
	}

	res, err := adv.Budget(q)
	if err != nil {
		return userError(err)
	}
	if jsonOut {
		return writeJSON(os.Stdout, res)
	}
	fmt.Print(projects.RenderBudget(res))
	return nil
}

func init() {
	projectsCmd.Flags().String("query", "", "query file describing the city (YAML)")
	projectsCmd.Flags().String("scope", "", "intervention scope (overrides the query file)")
	projectsCmd.Flags().String("duration", "", "project duration (overrides the query file)")
	projectsCmd.Flags().Bool("json", false, "output the match report as JSON")

	budgetCmd.Flags().String("query", "", "query file describing the city (YAML)")
	budgetCmd.Flags().Float64("budget", 0, "available budget in euro (overrides the query file)")
	budgetCmd.Flags().Bool("json", false, "output the selection as JSON")

	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(budgetCmd)
}
