// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// Snapshot is the exported form of the catalog.
type Snapshot struct {
	Import     ImportSummary           `json:"import" yaml:"import"`
	Cities     []types.RawCity         `json:"cities" yaml:"cities"`
	Projects   []types.CityProjects    `json:"projects" yaml:"projects"`
	Funding    []types.FundingRecord   `json:"funding" yaml:"funding"`
	Categories []types.CategoryMapping `json:"categories" yaml:"categories"`
}

// ExportYAML writes the snapshot to dir/export.yaml and returns the path.
func (c *Catalog) ExportYAML(ctx context.Context) (string, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(c.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the snapshot to dir/export.json and returns the path.
func (c *Catalog) ExportJSON(ctx context.Context) (string, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(c.dir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}

func (c *Catalog) snapshot(ctx context.Context) (*Snapshot, error) {
	summary, err := c.Stats(ctx)
	if err != nil {
		return nil, err
	}
	t, err := c.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading for export: %w", err)
	}

	snap := &Snapshot{
		Import:     summary,
		Cities:     t.Cities,
		Funding:    t.Funding,
		Categories: t.Categories,
	}
	for _, cp := range t.Projects {
		snap.Projects = append(snap.Projects, cp)
	}
	sort.Slice(snap.Projects, func(i, j int) bool {
		return snap.Projects[i].City < snap.Projects[j].City
	})
	return snap, nil
}
