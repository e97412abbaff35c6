// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the smartcity CLI.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/smartcity-advisor/internal/advisor"
	"github.com/pdiddy/smartcity-advisor/internal/catalog"
	"github.com/pdiddy/smartcity-advisor/internal/dataset"
	"github.com/pdiddy/smartcity-advisor/internal/normalize"
	"github.com/pdiddy/smartcity-advisor/internal/secrets"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is configured in PersistentPreRunE from --verbose.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// rootCmd is the base command for the smartcity CLI.
var rootCmd = &cobra.Command{
	Use:   "smartcity",
	Short: "Smart-city project and funding advisor",
	Long: `smartcity helps plan smart-city interventions for a municipality. It
ranks the reference cities most similar to a described city, reports the
projects those cities run that fit a requested scope and duration, and lists
the EU funding available for a region and scope.

Reference tables come from the configured CSV sources (local paths or
http(s) URLs) or, with --from-catalog, from the SQLite snapshot written by
"smartcity catalog import".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", slog.Any("keys", keys))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./smartcity.yaml or ~/.config/smartcity/smartcity.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log at debug level")
	rootCmd.PersistentFlags().Bool("from-catalog", false, "read reference tables from the catalog snapshot")
	rootCmd.PersistentFlags().String("cities", "", "city dataset (path or URL)")
	rootCmd.PersistentFlags().String("projects", "", "project dataset (path or URL)")
	rootCmd.PersistentFlags().String("funding", "", "EU funding table (path or URL)")
	rootCmd.PersistentFlags().String("categories", "", "category crosswalk, CSV or YAML (path or URL)")
	rootCmd.PersistentFlags().String("catalog-dir", "", "catalog directory")

	for flag, key := range map[string]string{
		"cities":      "data.cities",
		"projects":    "data.projects",
		"funding":     "data.funding",
		"categories":  "data.categories",
		"catalog-dir": "data.catalog_dir",
	} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	d := types.DefaultAdvisorConfig()
	viper.SetDefault("data.timeout", d.Data.Timeout)
	viper.SetDefault("data.user_agent", d.Data.UserAgent)
	viper.SetDefault("data.max_retries", d.Data.MaxRetries)
	viper.SetDefault("data.cities", d.Data.Cities)
	viper.SetDefault("data.projects", d.Data.Projects)
	viper.SetDefault("data.catalog_dir", d.Data.CatalogDir)
	viper.SetDefault("similarity.top_k", d.Similarity.TopK)
	viper.SetDefault("similarity.metric", string(d.Similarity.Metric))
	viper.SetDefault("match.max_cities", d.Match.MaxCities)
	viper.SetDefault("match.partial_shown", d.Match.PartialShown)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("smartcity")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "smartcity"))
		}
	}

	viper.SetEnvPrefix("SMARTCITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged defaults, config file, environment, and
// flags.
func loadConfig() (types.AdvisorConfig, error) {
	var cfg types.AdvisorConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Data.Token == "" {
		cfg.Data.Token = loadedSecrets[secrets.DataSourceToken]
	}
	return cfg.WithDefaults(), nil
}

// loadTables reads the reference tables from the catalog or the sources.
func loadTables(ctx context.Context, cmd *cobra.Command, cfg types.AdvisorConfig) (*dataset.Tables, error) {
	if fromCatalog, _ := cmd.Flags().GetBool("from-catalog"); fromCatalog {
		c, err := catalog.Open(cfg.Data.CatalogDir, logger)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		return c.Load(ctx)
	}
	return dataset.NewLoader(logger, cfg.Data.HTTPConfig).LoadTables(ctx, cfg.Data)
}

// newAdvisor loads the reference data once and wires the pipeline.
func newAdvisor(cmd *cobra.Command, cfg types.AdvisorConfig) (*advisor.Advisor, error) {
	tables, err := loadTables(cmd.Context(), cmd, cfg)
	if err != nil {
		return nil, err
	}
	ref, err := dataset.Build(tables, normalize.DefaultSchema(), logger)
	if err != nil {
		return nil, err
	}
	return advisor.New(logger, ref, cfg)
}

// readQuery loads the --query file and applies the per-command overrides.
func readQuery(cmd *cobra.Command) (advisor.Query, error) {
	path, _ := cmd.Flags().GetString("query")
	if path == "" {
		return advisor.Query{}, fmt.Errorf("--query is required")
	}
	q, err := advisor.ReadQueryFile(path)
	if err != nil {
		return advisor.Query{}, err
	}
	for flag, dst := range map[string]*string{"scope": &q.Scope, "duration": &q.Duration, "region": &q.Region} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	if f := cmd.Flags().Lookup("budget"); f != nil && f.Changed {
		q.Budget, _ = cmd.Flags().GetFloat64("budget")
	}
	return *q, nil
}

// userError rewrites errors caused by user input into the messages the
// user is shown.
func userError(err error) error {
	if errors.Is(err, types.ErrParse) {
		return fmt.Errorf("enter valid numeric values: %w", err)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
