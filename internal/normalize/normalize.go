// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize encodes raw city rows into numeric feature vectors and
// rescales them to [0,1] with per-feature min/max statistics fit once over
// the reference set.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// Model holds the per-feature (min, max) pairs of a fitted reference set.
// It is read-only after Fit.
type Model struct {
	Features []types.Feature `json:"features" yaml:"features"`
	Min      []float64       `json:"min" yaml:"min"`
	Max      []float64       `json:"max" yaml:"max"`
}

// Fit computes per-feature min and max over rows. Every row must already
// match the schema.
func Fit(schema Schema, rows [][]float64) (*Model, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: nothing to fit", types.ErrEmptyDataset)
	}
	n := schema.Len()
	data := mat.NewDense(len(rows), n, nil)
	for i, r := range rows {
		if err := schema.Check(r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		data.SetRow(i, r)
	}

	m := &Model{
		Features: append([]types.Feature(nil), schema.Features...),
		Min:      make([]float64, n),
		Max:      make([]float64, n),
	}
	col := make([]float64, len(rows))
	for j := 0; j < n; j++ {
		mat.Col(col, j, data)
		m.Min[j] = floats.Min(col)
		m.Max[j] = floats.Max(col)
	}
	return m, nil
}

// Transform rescales v with the fitted statistics: (v - min) / (max - min).
// A feature with zero range maps to 0. Values outside the fitted range are
// not clamped, so they land outside [0,1].
func (m *Model) Transform(v []float64) ([]float64, error) {
	if len(v) != len(m.Features) {
		return nil, fmt.Errorf("%w: vector has %d values, model has %d features",
			types.ErrSchemaMismatch, len(v), len(m.Features))
	}
	out := make([]float64, len(v))
	for i, x := range v {
		span := m.Max[i] - m.Min[i]
		if span == 0 {
			continue
		}
		out[i] = (x - m.Min[i]) / span
	}
	return out, nil
}

// Inverse maps a normalized vector back to raw units.
func (m *Model) Inverse(v []float64) ([]float64, error) {
	if len(v) != len(m.Features) {
		return nil, fmt.Errorf("%w: vector has %d values, model has %d features",
			types.ErrSchemaMismatch, len(v), len(m.Features))
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x*(m.Max[i]-m.Min[i]) + m.Min[i]
	}
	return out, nil
}

// Range returns the fitted bounds of f.
func (m *Model) Range(f types.Feature) (lo, hi float64, ok bool) {
	for i, mf := range m.Features {
		if mf == f {
			return m.Min[i], m.Max[i], true
		}
	}
	return 0, 0, false
}

// FitStats reports what happened to the source rows during fitting.
type FitStats struct {
	Rows    int
	Kept    int
	Dropped int
}

// FitCities encodes every raw row, drops rows with a missing feature, fits
// the model over the rest, and returns the normalized reference set in
// source order. Unmapped categories, unparseable cells, and duplicate city
// names fail the whole fit.
func FitCities(schema Schema, raws []types.RawCity, log *slog.Logger) (*Model, []types.ReferenceCity, FitStats, error) {
	stats := FitStats{Rows: len(raws)}
	seen := make(map[string]int, len(raws))

	var names []string
	var vectors [][]float64
	for i, raw := range raws {
		if raw.Name == "" {
			log.Debug("dropping city row without a name", slog.Int("row", i+1))
			stats.Dropped++
			continue
		}
		v, err := schema.Encode(raw)
		if errors.Is(err, ErrMissingFeature) {
			log.Debug("dropping incomplete city row",
				slog.Int("row", i+1), slog.String("city", raw.Name), slog.String("reason", err.Error()))
			stats.Dropped++
			continue
		}
		if err != nil {
			var de *types.DataError
			if errors.As(err, &de) {
				de.Source, de.Row = "cities", i+1
				return nil, nil, stats, de
			}
			return nil, nil, stats, &types.DataError{Source: "cities", Row: i + 1, Err: err}
		}
		if prev, dup := seen[raw.Name]; dup {
			return nil, nil, stats, &types.DataError{
				Source: "cities", Row: i + 1, Column: types.CityColumn,
				Err: fmt.Errorf("duplicate city %q (first at row %d)", raw.Name, prev),
			}
		}
		seen[raw.Name] = i + 1
		names = append(names, raw.Name)
		vectors = append(vectors, v)
	}
	stats.Kept = len(vectors)

	model, err := Fit(schema, vectors)
	if err != nil {
		return nil, nil, stats, err
	}

	cities := make([]types.ReferenceCity, len(vectors))
	for i, v := range vectors {
		norm, err := model.Transform(v)
		if err != nil {
			return nil, nil, stats, err
		}
		cities[i] = types.ReferenceCity{Name: names[i], Raw: v, Normalized: norm, Row: i}
	}

	log.Info("reference set fitted",
		slog.Int("rows", stats.Rows), slog.Int("kept", stats.Kept), slog.Int("dropped", stats.Dropped))
	return model, cities, stats, nil
}
