// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// Column headers of the project, funding, and category tables.
const (
	ProjectCityColumn = "Città"

	FundingIDColumn          = "Operation_Unique_Identifier"
	FundingRegionColumn      = "Region3"
	FundingExpenditureColumn = "Total_Eligible_Expenditure_amount"
	FundingBudgetColumn      = "Project_EU_Budget"
	FundingCategoryColumn    = "Category_Label"

	CategorySmartColumn = "Category_Smart"
	CategoryLabelColumn = "Category_Label"

	// UnspecifiedRegion replaces an empty region cell.
	UnspecifiedRegion = "Non specificata"
)

// ProjectSlots is the number of project slots per city row.
const ProjectSlots = 2

// projectField describes one per-slot project column. Candidates lists the
// accepted headers with %d standing for the slot number; the dataset
// spells some headers inconsistently across slots.
type projectField struct {
	name       string
	candidates []string
	required   bool
}

var projectFields = []projectField{
	{name: "name", candidates: []string{"Nome progetto %d", "Nome proggetto %d"}, required: true},
	{name: "scope", candidates: []string{"Ambito progetto %d"}, required: true},
	{name: "duration", candidates: []string{"Tipo di investimento %d"}, required: true},
	{name: "description", candidates: []string{"Descrizione Progetto %d", "Descrizione progetto %d"}, required: true},
	{name: "status", candidates: []string{"Attivo / Non attivo progetto %d"}, required: true},
	{name: "cost", candidates: []string{"Costo progetto %d", "Costo %d"}},
}

// header indexes the columns of a CSV header row.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// cell returns the trimmed value of column in row and whether the row has
// that column at all.
func (h header) cell(row []string, column string) (string, bool) {
	i, ok := h[column]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

func (h header) require(source string, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &types.DataError{Source: source, Column: strings.Join(missing, ", "), Err: errors.New("missing column")}
	}
	return nil
}

// readAll parses CSV data. Rows may be shorter or longer than the header;
// callers detect missing cells per column.
func readAll(source string, data []byte) (header, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	first, err := r.Read()
	if err == io.EOF {
		return nil, nil, &types.DataError{Source: source, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, nil, &types.DataError{Source: source, Err: fmt.Errorf("reading header: %w", err)}
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, &types.DataError{Source: source, Err: err}
	}
	return newHeader(first), rows, nil
}

// ReadCities parses the city dataset. The city column and every feature
// column are required; the temperature features may come either from
// their own columns or from the climate range column.
func ReadCities(data []byte) ([]types.RawCity, error) {
	const source = "cities"
	h, rows, err := readAll(source, data)
	if err != nil {
		return nil, err
	}

	required := []string{types.CityColumn}
	_, hasMin := h[types.FeatureTempMin.Column()]
	_, hasMax := h[types.FeatureTempMax.Column()]
	if !hasMin || !hasMax {
		required = append(required, types.ClimateColumn)
	}
	for _, f := range types.FeatureOrder {
		if f == types.FeatureTempMin || f == types.FeatureTempMax {
			continue
		}
		required = append(required, f.Column())
	}
	if err := h.require(source, required...); err != nil {
		return nil, err
	}

	cities := make([]types.RawCity, 0, len(rows))
	for _, row := range rows {
		name, _ := h.cell(row, types.CityColumn)
		climate, _ := h.cell(row, types.ClimateColumn)
		rc := types.RawCity{Name: name, Climate: climate, Fields: make(map[types.Feature]string, len(types.FeatureOrder))}
		for _, f := range types.FeatureOrder {
			if v, ok := h.cell(row, f.Column()); ok && v != "" {
				rc.Fields[f] = v
			}
		}
		cities = append(cities, rc)
	}
	return cities, nil
}

// ReadProjects parses the project dataset into a table keyed by city. A
// slot whose columns are absent, or cut short in a row, is kept with its
// Missing list filled so the matcher can skip it. Only the first row of a
// city is used.
func ReadProjects(data []byte, log *slog.Logger) (types.ProjectTable, error) {
	const source = "projects"
	h, rows, err := readAll(source, data)
	if err != nil {
		return nil, err
	}
	if err := h.require(source, ProjectCityColumn); err != nil {
		return nil, err
	}

	table := make(types.ProjectTable, len(rows))
	for i, row := range rows {
		city, _ := h.cell(row, ProjectCityColumn)
		if city == "" {
			log.Warn("skipping project row without a city", slog.Int("row", i+1))
			continue
		}
		if _, dup := table[city]; dup {
			log.Debug("ignoring repeated project row", slog.String("city", city), slog.Int("row", i+1))
			continue
		}

		cp := types.CityProjects{City: city}
		for slot := 1; slot <= ProjectSlots; slot++ {
			cp.Projects = append(cp.Projects, readProjectSlot(h, row, slot, city, log))
		}
		table[city] = cp
	}
	return table, nil
}

func readProjectSlot(h header, row []string, slot int, city string, log *slog.Logger) types.ProjectRecord {
	p := types.ProjectRecord{Slot: slot}
	for _, field := range projectFields {
		value, column, ok := "", "", false
		for _, c := range field.candidates {
			column = fmt.Sprintf(c, slot)
			if value, ok = h.cell(row, column); ok {
				break
			}
		}
		if !ok {
			if field.required {
				p.Missing = append(p.Missing, fmt.Sprintf(field.candidates[0], slot))
			}
			continue
		}

		switch field.name {
		case "name":
			p.Name = value
		case "scope":
			p.Scope = value
		case "duration":
			p.Duration = value
		case "description":
			p.Description = value
		case "status":
			p.Status = value
		case "cost":
			if value == "" {
				continue
			}
			cost, err := parseAmount(value)
			if err != nil {
				log.Warn("ignoring unparseable project cost",
					slog.String("city", city), slog.Int("slot", slot),
					slog.String("column", column), slog.String("value", value))
				continue
			}
			p.Cost = cost
		}
	}
	return p
}

// ReadFunding parses the EU funding table. Rows with an unparseable amount
// are logged and skipped.
func ReadFunding(data []byte, log *slog.Logger) ([]types.FundingRecord, error) {
	const source = "funding"
	h, rows, err := readAll(source, data)
	if err != nil {
		return nil, err
	}
	if err := h.require(source, FundingIDColumn, FundingRegionColumn,
		FundingExpenditureColumn, FundingBudgetColumn, FundingCategoryColumn); err != nil {
		return nil, err
	}

	records := make([]types.FundingRecord, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		id, _ := h.cell(row, FundingIDColumn)
		region, _ := h.cell(row, FundingRegionColumn)
		category, _ := h.cell(row, FundingCategoryColumn)
		expRaw, _ := h.cell(row, FundingExpenditureColumn)
		budgetRaw, _ := h.cell(row, FundingBudgetColumn)

		exp, err1 := parseAmount(expRaw)
		budget, err2 := parseAmount(budgetRaw)
		if err := errors.Join(err1, err2); err != nil {
			log.Warn("skipping funding row", slog.Int("row", i+1), slog.String("id", id), slog.String("error", err.Error()))
			skipped++
			continue
		}

		records = append(records, types.FundingRecord{
			ID:                       id,
			Region:                   CleanRegion(region),
			CategoryLabel:            category,
			TotalEligibleExpenditure: exp,
			EUBudget:                 budget,
		})
	}
	if skipped > 0 {
		log.Info("funding rows skipped", slog.Int("skipped", skipped), slog.Int("kept", len(records)))
	}
	return records, nil
}

// ReadCategoriesCSV parses the category crosswalk from CSV.
func ReadCategoriesCSV(data []byte) ([]types.CategoryMapping, error) {
	const source = "categories"
	h, rows, err := readAll(source, data)
	if err != nil {
		return nil, err
	}
	if err := h.require(source, CategorySmartColumn, CategoryLabelColumn); err != nil {
		return nil, err
	}

	var out []types.CategoryMapping
	for _, row := range rows {
		smart, _ := h.cell(row, CategorySmartColumn)
		label, _ := h.cell(row, CategoryLabelColumn)
		if smart == "" || label == "" {
			continue
		}
		out = append(out, types.CategoryMapping{SmartCategory: smart, CategoryLabel: label})
	}
	return out, nil
}

// CleanRegion normalizes a region cell: empty becomes UnspecifiedRegion,
// a multi-valued cell "A | B" keeps its first value, and numeric codes lose
// a trailing ".0".
func CleanRegion(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "|"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" || strings.EqualFold(s, "nan") {
		return UnspecifiedRegion
	}
	return strings.TrimSuffix(s, ".0")
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", types.ErrParse)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: amount %q", types.ErrParse, s)
	}
	return v, nil
}
