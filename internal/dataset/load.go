// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads the reference tables (cities, projects, funding,
// category crosswalk) from local files or URLs and fits the reference set
// the advisor queries.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/smartcity-advisor/internal/httputil"
	"github.com/pdiddy/smartcity-advisor/internal/normalize"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// Tables holds the raw reference tables as read from their sources.
type Tables struct {
	Cities     []types.RawCity
	Projects   types.ProjectTable
	Funding    []types.FundingRecord
	Categories []types.CategoryMapping
}

// categoriesFile is the YAML form of the category crosswalk.
type categoriesFile struct {
	Categories []types.CategoryMapping `yaml:"categories"`
}

// ReadCategoriesYAML parses the category crosswalk from YAML. Both a
// top-level list and a {categories: [...]} document are accepted.
func ReadCategoriesYAML(data []byte) ([]types.CategoryMapping, error) {
	var list []types.CategoryMapping
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc categoriesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &types.DataError{Source: "categories", Err: fmt.Errorf("%w: %v", types.ErrParse, err)}
	}
	return doc.Categories, nil
}

// Loader reads tables from paths or http(s) URLs.
type Loader struct {
	log     *slog.Logger
	fetcher *httputil.Fetcher
}

// NewLoader builds a loader. Remote sources use cfg's HTTP settings.
func NewLoader(log *slog.Logger, cfg types.HTTPConfig) *Loader {
	return &Loader{log: log, fetcher: httputil.NewFetcher(log, nil, cfg)}
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Open returns the contents of src.
func (l *Loader) Open(ctx context.Context, src string) ([]byte, error) {
	if isURL(src) {
		return l.fetcher.Get(ctx, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	return data, nil
}

// LoadTables reads every configured table. Cities and projects are
// required; funding and categories are skipped when unset.
func (l *Loader) LoadTables(ctx context.Context, cfg types.DataConfig) (*Tables, error) {
	t := &Tables{}

	data, err := l.Open(ctx, cfg.Cities)
	if err != nil {
		return nil, err
	}
	if t.Cities, err = ReadCities(data); err != nil {
		return nil, err
	}

	if data, err = l.Open(ctx, cfg.Projects); err != nil {
		return nil, err
	}
	if t.Projects, err = ReadProjects(data, l.log); err != nil {
		return nil, err
	}

	if cfg.Funding != "" {
		if data, err = l.Open(ctx, cfg.Funding); err != nil {
			return nil, err
		}
		if t.Funding, err = ReadFunding(data, l.log); err != nil {
			return nil, err
		}
	}

	if cfg.Categories != "" {
		if data, err = l.Open(ctx, cfg.Categories); err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(cfg.Categories)) {
		case ".yaml", ".yml":
			t.Categories, err = ReadCategoriesYAML(data)
		default:
			t.Categories, err = ReadCategoriesCSV(data)
		}
		if err != nil {
			return nil, err
		}
	}

	l.log.Info("reference tables loaded",
		slog.Int("cities", len(t.Cities)),
		slog.Int("project_cities", len(t.Projects)),
		slog.Int("funding_rows", len(t.Funding)),
		slog.Int("categories", len(t.Categories)))
	return t, nil
}

// ReferenceData is the fitted, read-only state every query runs against.
type ReferenceData struct {
	Schema     normalize.Schema
	Model      *normalize.Model
	Cities     []types.ReferenceCity
	Projects   types.ProjectTable
	Funding    []types.FundingRecord
	Categories []types.CategoryMapping
	Stats      normalize.FitStats
}

// Build fits the normalization model over t's cities.
func Build(t *Tables, schema normalize.Schema, log *slog.Logger) (*ReferenceData, error) {
	model, cities, stats, err := normalize.FitCities(schema, t.Cities, log)
	if err != nil {
		return nil, err
	}
	projects := t.Projects
	if projects == nil {
		projects = types.ProjectTable{}
	}
	return &ReferenceData{
		Schema:     schema,
		Model:      model,
		Cities:     cities,
		Projects:   projects,
		Funding:    t.Funding,
		Categories: t.Categories,
		Stats:      stats,
	}, nil
}

// City returns the reference row named name.
func (d *ReferenceData) City(name string) (types.ReferenceCity, bool) {
	for _, c := range d.Cities {
		if c.Name == name {
			return c, true
		}
	}
	return types.ReferenceCity{}, false
}

// CityNames lists the reference cities in source order.
func (d *ReferenceData) CityNames() []string {
	names := make([]string, len(d.Cities))
	for i, c := range d.Cities {
		names[i] = c.Name
	}
	return names
}
