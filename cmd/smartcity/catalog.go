// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/smartcity-advisor/internal/catalog"
	"github.com/pdiddy/smartcity-advisor/internal/dataset"
	"github.com/pdiddy/smartcity-advisor/internal/normalize"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the SQLite snapshot of the reference tables",
	Long: `Catalog keeps a local SQLite snapshot of the reference tables. Import
it once from the configured sources, then pass --from-catalog to the other
commands to skip re-reading or re-downloading the CSV files.`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Read the configured sources into the catalog",
	Long: `Import reads every configured table, checks that the city dataset
fits, and replaces the catalog contents in one transaction.`,
	RunE: runCatalogImport,
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tables, err := dataset.NewLoader(logger, cfg.Data.HTTPConfig).LoadTables(cmd.Context(), cfg.Data)
	if err != nil {
		return err
	}
	// The snapshot must be usable, so the city set has to fit.
	if _, err := dataset.Build(tables, normalize.DefaultSchema(), logger); err != nil {
		return err
	}

	c, err := catalog.Open(cfg.Data.CatalogDir, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := c.Import(cmd.Context(), tables)
	if err != nil {
		return err
	}
	printSummary(s)
	return nil
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	RunE:  runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	c, err := catalog.Open(cfg.Data.CatalogDir, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = c.ExportYAML(cmd.Context())
	case "json":
		path, err = c.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported catalog to %s\n", path)
	return nil
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts of the latest import",
	RunE:  runCatalogStats,
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jsonOut, _ := cmd.Flags().GetBool("json")

	c, err := catalog.Open(cfg.Data.CatalogDir, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := c.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(os.Stdout, s)
	}
	printSummary(s)
	return nil
}

func printSummary(s catalog.ImportSummary) {
	fmt.Printf("imported:       %s\n", s.ImportedAt.Local().Format(time.RFC3339))
	fmt.Printf("cities:         %d\n", s.Cities)
	fmt.Printf("project cities: %d\n", s.ProjectCities)
	fmt.Printf("funding rows:   %d\n", s.Funding)
	fmt.Printf("categories:     %d\n", s.Categories)
}

func init() {
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogStatsCmd.Flags().Bool("json", false, "output as JSON")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}
