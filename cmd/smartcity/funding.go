// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

var fundingCmd = &cobra.Command{
	Use:   "funding",
	Short: "List EU funding available for a region and scope",
	Long: `Funding resolves the funding categories linked to a smart-city scope
and lists the EU-funded operations of the region in those categories.
Use --list-regions to see the regions present in the funding table.`,
	RunE: runFunding,
}

func runFunding(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	listRegions, _ := cmd.Flags().GetBool("list-regions")
	region, _ := cmd.Flags().GetString("region")
	scopeFlag, _ := cmd.Flags().GetString("scope")
	jsonOut, _ := cmd.Flags().GetBool("json")

	var scope types.Scope
	if !listRegions {
		if region == "" || scopeFlag == "" {
			return fmt.Errorf("--region and --scope are required")
		}
		if scope, err = types.ParseScope(scopeFlag); err != nil {
			return err
		}
	}

	adv, err := newAdvisor(cmd, cfg)
	if err != nil {
		return err
	}

	if listRegions {
		regions := adv.Regions()
		if jsonOut {
			return writeJSON(os.Stdout, regions)
		}
		for _, r := range regions {
			fmt.Println(r)
		}
		return nil
	}

	res := adv.Funding(region, scope)
	if jsonOut {
		return writeJSON(os.Stdout, res)
	}
	fmt.Println(res.Text())
	return nil
}

func init() {
	fundingCmd.Flags().String("region", "", "region or province to look up")
	fundingCmd.Flags().String("scope", "", "smart-city scope, e.g. Smart_Mobility")
	fundingCmd.Flags().Bool("list-regions", false, "list the regions of the funding table")
	fundingCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(fundingCmd)
}
