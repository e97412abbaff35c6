// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// ErrMissingFeature marks a row lacking a required feature. Such rows are
// dropped from the reference set rather than failing the load.
var ErrMissingFeature = errors.New("missing feature")

// IsMissingMarker reports whether a cell holds the "nan" marker that
// spreadsheet exports write for an empty value.
func IsMissingMarker(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), "nan")
}

// Schema is the ordered feature set of the vectors the pipeline compares.
type Schema struct {
	Features []types.Feature
}

// DefaultSchema returns the schema over every feature in types.FeatureOrder.
func DefaultSchema() Schema {
	return Schema{Features: append([]types.Feature(nil), types.FeatureOrder...)}
}

// Len returns the vector length.
func (s Schema) Len() int { return len(s.Features) }

// Index returns the position of f, or -1.
func (s Schema) Index(f types.Feature) int {
	for i, sf := range s.Features {
		if sf == f {
			return i
		}
	}
	return -1
}

// Check fails with ErrSchemaMismatch when v does not have one value per
// feature.
func (s Schema) Check(v []float64) error {
	if len(v) != len(s.Features) {
		return fmt.Errorf("%w: vector has %d values, schema has %d features",
			types.ErrSchemaMismatch, len(v), len(s.Features))
	}
	return nil
}

// Encode maps a raw city row to its numeric vector. Categorical cells go
// through the closed admin-importance and sector-strength mappings; the
// temperature features fall back to the climate range when they have no
// cell of their own. An empty cell yields ErrMissingFeature; anything
// unparseable or unmapped is a data error.
func (s Schema) Encode(raw types.RawCity) ([]float64, error) {
	var climateMin, climateMax float64
	climateParsed := false

	out := make([]float64, len(s.Features))
	for i, f := range s.Features {
		cell := strings.TrimSpace(raw.Fields[f])
		if IsMissingMarker(cell) {
			cell = ""
		}

		if cell == "" && (f == types.FeatureTempMin || f == types.FeatureTempMax) {
			if climate := strings.TrimSpace(raw.Climate); climate == "" || IsMissingMarker(climate) {
				return nil, fmt.Errorf("%w: %s", ErrMissingFeature, f)
			}
			if !climateParsed {
				lo, hi, err := ExtractTemperatureRange(raw.Climate)
				if err != nil {
					return nil, &types.DataError{Column: types.ClimateColumn, Err: err}
				}
				climateMin, climateMax, climateParsed = lo, hi, true
			}
			if f == types.FeatureTempMin {
				out[i] = climateMin
			} else {
				out[i] = climateMax
			}
			continue
		}

		if cell == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeature, f)
		}

		v, err := encodeCell(f, cell)
		if err != nil {
			return nil, &types.DataError{Column: f.Column(), Err: err}
		}
		out[i] = v
	}
	return out, nil
}

func encodeCell(f types.Feature, cell string) (float64, error) {
	switch {
	case f == types.FeatureAdminImportance:
		v, err := types.ParseAdminImportance(cell)
		return float64(v), err
	case f.IsSector():
		v, err := types.ParseSectorStrength(cell)
		return float64(v), err
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %q is not numeric", types.ErrData, types.ErrParse, cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %w: %q is not a finite number", types.ErrData, types.ErrParse, cell)
	}
	return v, nil
}
