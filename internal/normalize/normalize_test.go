// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"io"
	"log/slog"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rawCity builds a complete row; overrides replace individual cells.
func rawCity(name string, base float64, overrides map[types.Feature]string) types.RawCity {
	fields := map[types.Feature]string{
		types.FeaturePopulationDensity: ftoa(1000 + base*100),
		types.FeatureCostOfLiving:      ftoa(1200 + base*10),
		types.FeaturePublicTransport:   ftoa(300 + base),
		types.FeatureTouristPOIs:       ftoa(20 + base),
		types.FeatureAirports:          ftoa(1),
		types.FeaturePollution:         ftoa(10 + base),
		types.FeatureMedianAge:         ftoa(40 + base),
		types.FeatureAnnualEvents:      ftoa(50 + base),
		types.FeatureAdminImportance:   "Capitale regionale",
		types.FeaturePrimary:           "Limitato",
		types.FeatureSecondary:         "Moderato",
		types.FeatureTertiary:          "Forte",
		types.FeatureQuaternary:        "Dominante",
	}
	for f, v := range overrides {
		fields[f] = v
	}
	return types.RawCity{Name: name, Climate: "5°C / 30°C", Fields: fields}
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func TestExtractTemperatureRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMin float64
		wantMax float64
		wantErr bool
	}{
		{name: "integers", in: "10°C / 25°C", wantMin: 10, wantMax: 25},
		{name: "negative and decimals", in: "-3.5°C / 18.2°C", wantMin: -3.5, wantMax: 18.2},
		{name: "surrounding whitespace", in: "  0°C / 31°C ", wantMin: 0, wantMax: 31},
		{name: "missing separator", in: "10°C - 25°C", wantErr: true},
		{name: "missing suffix", in: "10 / 25", wantErr: true},
		{name: "three parts", in: "1°C / 2°C / 3°C", wantErr: true},
		{name: "not numeric", in: "cold°C / hot°C", wantErr: true},
		{name: "not finite", in: "NaN°C / Inf°C", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, err := ExtractTemperatureRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrData)
				assert.ErrorIs(t, err, types.ErrParse)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantMin, lo, 1e-9)
			assert.InDelta(t, tt.wantMax, hi, 1e-9)
		})
	}
}

func TestEncode_MapsCategoricalsAndClimate(t *testing.T) {
	s := DefaultSchema()
	v, err := s.Encode(rawCity("Roma", 0, map[types.Feature]string{
		types.FeatureAdminImportance: "Capitale nazionale",
	}))
	require.NoError(t, err)
	require.Len(t, v, len(types.FeatureOrder))

	assert.Equal(t, 4.0, v[s.Index(types.FeatureAdminImportance)])
	assert.Equal(t, 1.0, v[s.Index(types.FeaturePrimary)])
	assert.Equal(t, 2.0, v[s.Index(types.FeatureSecondary)])
	assert.Equal(t, 3.0, v[s.Index(types.FeatureTertiary)])
	assert.Equal(t, 4.0, v[s.Index(types.FeatureQuaternary)])
	assert.Equal(t, 5.0, v[s.Index(types.FeatureTempMin)])
	assert.Equal(t, 30.0, v[s.Index(types.FeatureTempMax)])
}

func TestEncode_Errors(t *testing.T) {
	s := DefaultSchema()

	_, err := s.Encode(rawCity("X", 0, map[types.Feature]string{types.FeatureTertiary: "Enorme"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrData)
	assert.NotErrorIs(t, err, ErrMissingFeature)

	_, err = s.Encode(rawCity("X", 0, map[types.Feature]string{types.FeatureAirports: ""}))
	assert.ErrorIs(t, err, ErrMissingFeature)

	_, err = s.Encode(rawCity("X", 0, map[types.Feature]string{types.FeatureAirports: "two"}))
	assert.ErrorIs(t, err, types.ErrParse)

	noClimate := rawCity("X", 0, nil)
	noClimate.Climate = ""
	_, err = s.Encode(noClimate)
	assert.ErrorIs(t, err, ErrMissingFeature)

	badClimate := rawCity("X", 0, nil)
	badClimate.Climate = "10°C to 20°C"
	_, err = s.Encode(badClimate)
	assert.ErrorIs(t, err, types.ErrData)
}

func TestEncode_NonFiniteCells(t *testing.T) {
	s := DefaultSchema()
	tests := []struct {
		name        string
		cell        string
		wantMissing bool
	}{
		{name: "nan marker", cell: "nan", wantMissing: true},
		{name: "NaN marker", cell: "NaN", wantMissing: true},
		{name: "padded marker", cell: " NAN ", wantMissing: true},
		{name: "infinity", cell: "Inf"},
		{name: "signed infinity", cell: "+Inf"},
		{name: "negative infinity", cell: "-Infinity"},
		{name: "overflow", cell: "1e400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Encode(rawCity("X", 0, map[types.Feature]string{types.FeaturePopulationDensity: tt.cell}))
			require.Error(t, err)
			if tt.wantMissing {
				assert.ErrorIs(t, err, ErrMissingFeature)
				return
			}
			assert.ErrorIs(t, err, types.ErrParse)
			assert.NotErrorIs(t, err, ErrMissingFeature)
		})
	}

	nanClimate := rawCity("X", 0, nil)
	nanClimate.Climate = "nan"
	_, err := s.Encode(nanClimate)
	assert.ErrorIs(t, err, ErrMissingFeature)
}

func TestFitCities_DropsNaNMarkerRows(t *testing.T) {
	raws := []types.RawCity{
		rawCity("A", 0, nil),
		rawCity("Bad", 5, map[types.Feature]string{types.FeaturePopulationDensity: "nan"}),
		rawCity("C", 10, nil),
	}
	_, cities, stats, err := FitCities(DefaultSchema(), raws, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, FitStats{Rows: 3, Kept: 2, Dropped: 1}, stats)
	require.Len(t, cities, 2)
	for _, c := range cities {
		assert.NotEqual(t, "Bad", c.Name)
		for _, x := range c.Normalized {
			assert.False(t, math.IsNaN(x))
		}
	}
}

func TestFitCities_InfiniteCellFailsLoad(t *testing.T) {
	raws := []types.RawCity{
		rawCity("A", 0, nil),
		rawCity("B", 1, map[types.Feature]string{types.FeaturePollution: "+Inf"}),
	}
	_, _, _, err := FitCities(DefaultSchema(), raws, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)

	var de *types.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Row)
}

func TestFitCities_DropsIncompleteRows(t *testing.T) {
	raws := []types.RawCity{
		rawCity("A", 0, nil),
		rawCity("B", 5, map[types.Feature]string{types.FeaturePollution: ""}),
		rawCity("C", 10, nil),
		{Name: "", Fields: map[types.Feature]string{}},
	}
	model, cities, stats, err := FitCities(DefaultSchema(), raws, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, FitStats{Rows: 4, Kept: 2, Dropped: 2}, stats)
	require.Len(t, cities, 2)
	assert.Equal(t, "A", cities[0].Name)
	assert.Equal(t, "C", cities[1].Name)
	assert.Equal(t, 0, cities[0].Row)
	assert.Equal(t, 1, cities[1].Row)

	for _, c := range cities {
		require.Len(t, c.Normalized, len(types.FeatureOrder))
		for _, x := range c.Normalized {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.LessOrEqual(t, x, 1.0)
		}
	}

	lo, hi, ok := model.Range(types.FeaturePopulationDensity)
	require.True(t, ok)
	assert.Equal(t, 1000.0, lo)
	assert.Equal(t, 2000.0, hi)
}

func TestFitCities_UnmappedCategoryFailsLoad(t *testing.T) {
	raws := []types.RawCity{
		rawCity("A", 0, nil),
		rawCity("B", 1, map[types.Feature]string{types.FeatureAdminImportance: "Metropoli"}),
	}
	_, _, _, err := FitCities(DefaultSchema(), raws, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrData)

	var de *types.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "cities", de.Source)
	assert.Equal(t, 2, de.Row)
	assert.Equal(t, types.FeatureAdminImportance.Column(), de.Column)
}

func TestFitCities_DuplicateName(t *testing.T) {
	raws := []types.RawCity{rawCity("A", 0, nil), rawCity("A", 1, nil)}
	_, _, _, err := FitCities(DefaultSchema(), raws, discardLogger())
	assert.ErrorIs(t, err, types.ErrData)
}

func TestFitCities_AllRowsIncomplete(t *testing.T) {
	raws := []types.RawCity{rawCity("A", 0, map[types.Feature]string{types.FeatureAirports: ""})}
	_, _, _, err := FitCities(DefaultSchema(), raws, discardLogger())
	assert.ErrorIs(t, err, types.ErrEmptyDataset)
}

func TestTransform_RoundTrip(t *testing.T) {
	s := Schema{Features: []types.Feature{types.FeatureTempMin, types.FeatureAirports, types.FeatureMedianAge}}
	model, err := Fit(s, [][]float64{
		{-5, 0, 38},
		{12, 3, 47},
		{3, 1, 41},
	})
	require.NoError(t, err)

	raw := []float64{7.25, 2, 44.5}
	norm, err := model.Transform(raw)
	require.NoError(t, err)
	assert.InDelta(t, (7.25+5)/17, norm[0], 1e-12)

	back, err := model.Inverse(norm)
	require.NoError(t, err)
	assert.InDeltaSlice(t, raw, back, 1e-9)
}

func TestTransform_UsesFittedStatistics(t *testing.T) {
	s := Schema{Features: []types.Feature{types.FeatureAirports}}
	model, err := Fit(s, [][]float64{{0}, {4}})
	require.NoError(t, err)

	// A query outside the fitted range is scaled, not refitted or clamped.
	v, err := model.Transform([]float64{8})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v[0])

	lo, hi, _ := model.Range(types.FeatureAirports)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 4.0, hi)
}

func TestTransform_ConstantFeature(t *testing.T) {
	s := Schema{Features: []types.Feature{types.FeatureAirports}}
	model, err := Fit(s, [][]float64{{2}, {2}})
	require.NoError(t, err)

	v, err := model.Transform([]float64{2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, v[0])
}

func TestTransform_SchemaMismatch(t *testing.T) {
	s := Schema{Features: []types.Feature{types.FeatureAirports, types.FeaturePollution}}
	model, err := Fit(s, [][]float64{{0, 1}, {1, 2}})
	require.NoError(t, err)

	_, err = model.Transform([]float64{1})
	assert.ErrorIs(t, err, types.ErrSchemaMismatch)
	_, err = model.Transform([]float64{1, 2, 3})
	assert.ErrorIs(t, err, types.ErrSchemaMismatch)

	_, err = Fit(s, [][]float64{{1}})
	assert.ErrorIs(t, err, types.ErrSchemaMismatch)
}
