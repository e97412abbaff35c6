// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/smartcity-advisor/internal/normalize"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func toCSV(t *testing.T, rows [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(rows))
	return buf.Bytes()
}

func cityHeader() []string {
	h := []string{types.CityColumn, types.ClimateColumn}
	for _, f := range types.FeatureOrder {
		if f == types.FeatureTempMin || f == types.FeatureTempMax {
			continue
		}
		h = append(h, f.Column())
	}
	return h
}

func cityRow(name, climate, density string) []string {
	return []string{name, climate, density, "1500", "400", "30", "1", "15", "45", "60",
		"Capitale regionale", "Limitato", "Moderato", "Forte", "Dominante"}
}

func citiesCSV(t *testing.T) []byte {
	return toCSV(t, [][]string{
		cityHeader(),
		cityRow("Torino", "0°C / 28°C", "6800"),
		cityRow("Milano", "1°C / 30°C", "7500"),
		cityRow("Bari", "8°C / 32°C", ""),
	})
}

func projectsCSV(t *testing.T) []byte {
	return toCSV(t, [][]string{
		{"Città",
			"Nome progetto 1", "Ambito progetto 1", "Tipo di investimento 1", "Descrizione Progetto 1", "Attivo / Non attivo progetto 1", "Costo progetto 1",
			"Nome proggetto 2", "Ambito progetto 2", "Tipo di investimento 2", "Descrizione progetto 2", "Attivo / Non attivo progetto 2"},
		{"Torino",
			"BikeNet", "Smart_Mobility", "Breve termine (2 anni)", "Bike sharing", "Attivo", "250000",
			"OpenGov", "Smart_Governance", "Medio termine (5 anni)", "Open data portal", "Non attivo"},
		{"Milano", "Area C", "Smart_Environment", "Lungo termine (10 anni)", "Congestion charge", "Attivo", "n/d"},
		{"Torino", "Ignored", "Smart_People", "Breve termine (2 anni)", "dup", "Attivo", "1",
			"", "", "", "", ""},
	})
}

func TestReadCities(t *testing.T) {
	cities, err := ReadCities(citiesCSV(t))
	require.NoError(t, err)
	require.Len(t, cities, 3)

	assert.Equal(t, "Torino", cities[0].Name)
	assert.Equal(t, "0°C / 28°C", cities[0].Climate)
	assert.Equal(t, "6800", cities[0].Fields[types.FeaturePopulationDensity])
	assert.Equal(t, "Capitale regionale", cities[0].Fields[types.FeatureAdminImportance])

	_, present := cities[2].Fields[types.FeaturePopulationDensity]
	assert.False(t, present, "empty cell is an absent feature")
}

func TestReadCitiesMissingColumn(t *testing.T) {
	header := cityHeader()
	data := toCSV(t, [][]string{header[:len(header)-1], {"Roma"}})

	_, err := ReadCities(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrData)

	var de *types.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "cities", de.Source)
	assert.Contains(t, de.Column, types.FeatureQuaternary.Column())
}

func TestReadCitiesByteOrderMark(t *testing.T) {
	header := cityHeader()
	header[0] = "\uFEFF" + header[0]
	data := toCSV(t, [][]string{header, cityRow("Torino", "0°C / 28°C", "6800")})

	cities, err := ReadCities(data)
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "Torino", cities[0].Name)
}

func TestReadCitiesEmpty(t *testing.T) {
	_, err := ReadCities(nil)
	assert.ErrorIs(t, err, types.ErrData)
}

func TestReadProjects(t *testing.T) {
	var logs bytes.Buffer
	table, err := ReadProjects(projectsCSV(t), bufferLogger(&logs))
	require.NoError(t, err)
	require.Len(t, table, 2)

	torino, ok := table.Lookup("Torino")
	require.True(t, ok)
	require.Len(t, torino.Projects, 2)
	assert.Equal(t, "BikeNet", torino.Projects[0].Name, "first row of a city wins")
	assert.Equal(t, 250000.0, torino.Projects[0].Cost)
	assert.Empty(t, torino.Projects[0].Missing)
	assert.Equal(t, "OpenGov", torino.Projects[1].Name, "misspelled slot 2 header accepted")
	assert.Equal(t, "Open data portal", torino.Projects[1].Description)
	assert.Zero(t, torino.Projects[1].Cost)

	milano, ok := table.Lookup("Milano")
	require.True(t, ok)
	assert.Zero(t, milano.Projects[0].Cost)
	assert.NotEmpty(t, milano.Projects[1].Missing, "short row leaves slot 2 incomplete")
	assert.Error(t, milano.Projects[1].Validate())

	assert.Contains(t, logs.String(), "ignoring unparseable project cost")
	assert.Contains(t, logs.String(), "ignoring repeated project row")
}

func TestReadProjectsRequiresCityColumn(t *testing.T) {
	_, err := ReadProjects(toCSV(t, [][]string{{"City"}, {"Roma"}}), discardLogger())
	var de *types.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ProjectCityColumn, de.Column)
}

func TestReadFunding(t *testing.T) {
	data := toCSV(t, [][]string{
		{FundingIDColumn, FundingRegionColumn, FundingExpenditureColumn, FundingBudgetColumn, FundingCategoryColumn},
		{"op/1", "Torino", "1000.5", "500", "Clean urban transport"},
		{"op/2", "Milano | Monza", "200", "100", "Cycling"},
		{"op/3", "", "10", "5", "Cycling"},
		{"op/4", "Bari", "abc", "5", "Cycling"},
		{"op/5", "58.0", "1", "1", "Cycling"},
		{"op/6", "Bari", "NaN", "5", "Cycling"},
		{"op/7", "Bari", "10", "+Inf", "Cycling"},
	})

	var logs bytes.Buffer
	records, err := ReadFunding(data, bufferLogger(&logs))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "Torino", records[0].Region)
	assert.Equal(t, 1000.5, records[0].TotalEligibleExpenditure)
	assert.Equal(t, "Milano", records[1].Region)
	assert.Equal(t, UnspecifiedRegion, records[2].Region)
	assert.Equal(t, "58", records[3].Region)
	assert.Contains(t, logs.String(), "skipping funding row")
}

func TestCleanRegion(t *testing.T) {
	tests := map[string]string{
		"  Torino ":      "Torino",
		"":               UnspecifiedRegion,
		"nan":            UnspecifiedRegion,
		"Roma | Latina":  "Roma",
		"12.0":           "12",
		"| Orphan":       UnspecifiedRegion,
		"Valle d'Aosta": "Valle d'Aosta",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanRegion(in), "input %q", in)
	}
}

func TestReadCategories(t *testing.T) {
	fromCSV, err := ReadCategoriesCSV(toCSV(t, [][]string{
		{CategorySmartColumn, CategoryLabelColumn},
		{"Smart Mobility", "Clean urban transport"},
		{"", "orphan"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []types.CategoryMapping{{SmartCategory: "Smart Mobility", CategoryLabel: "Clean urban transport"}}, fromCSV)

	list, err := ReadCategoriesYAML([]byte("- smart_category: Smart Economy\n  category_label: Digitising SMEs\n"))
	require.NoError(t, err)
	assert.Equal(t, "Digitising SMEs", list[0].CategoryLabel)

	doc, err := ReadCategoriesYAML([]byte("categories:\n  - smart_category: Smart People\n    category_label: Skills\n"))
	require.NoError(t, err)
	assert.Equal(t, "Smart People", doc[0].SmartCategory)

	_, err = ReadCategoriesYAML([]byte("categories: [unterminated"))
	assert.ErrorIs(t, err, types.ErrParse)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoadTablesAndBuild(t *testing.T) {
	dir := t.TempDir()
	cfg := types.DataConfig{
		Cities:     writeFile(t, dir, "cities.csv", citiesCSV(t)),
		Projects:   writeFile(t, dir, "projects.csv", projectsCSV(t)),
		Categories: writeFile(t, dir, "categories.yaml", []byte("- smart_category: Smart Mobility\n  category_label: Clean urban transport\n")),
	}

	l := NewLoader(discardLogger(), types.HTTPConfig{})
	tables, err := l.LoadTables(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, tables.Cities, 3)
	assert.Empty(t, tables.Funding)
	assert.Len(t, tables.Categories, 1)

	ref, err := Build(tables, normalize.DefaultSchema(), discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"Torino", "Milano"}, ref.CityNames(), "incomplete Bari dropped")
	assert.Equal(t, 1, ref.Stats.Dropped)

	c, ok := ref.City("Milano")
	require.True(t, ok)
	assert.Len(t, c.Normalized, len(types.FeatureOrder))
	_, ok = ref.City("Bari")
	assert.False(t, ok)
}

func TestLoadTablesMissingFile(t *testing.T) {
	l := NewLoader(discardLogger(), types.HTTPConfig{})
	_, err := l.LoadTables(context.Background(), types.DataConfig{Cities: filepath.Join(t.TempDir(), "nope.csv")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenURL(t *testing.T) {
	body := citiesCSV(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(body)
	}))
	defer ts.Close()

	l := NewLoader(discardLogger(), types.HTTPConfig{})
	data, err := l.Open(context.Background(), ts.URL+"/cities.csv")
	require.NoError(t, err)
	assert.Equal(t, body, data)
}
