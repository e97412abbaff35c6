// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package funding looks up EU-funded operations by region and smart-city
// scope through the category crosswalk.
package funding

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

var printer = message.NewPrinter(language.English)

// Lookup answers funding queries over immutable funding and category
// tables.
type Lookup struct {
	log        *slog.Logger
	records    []types.FundingRecord
	categories []types.CategoryMapping
}

// NewLookup wraps the loaded tables. The slices are not copied and must not
// be modified afterwards.
func NewLookup(log *slog.Logger, records []types.FundingRecord, categories []types.CategoryMapping) *Lookup {
	return &Lookup{log: log, records: records, categories: categories}
}

// Regions returns the distinct regions of the funding table, sorted.
func (l *Lookup) Regions() []string {
	regions := lo.Uniq(lo.Map(l.records, func(r types.FundingRecord, _ int) string {
		return r.Region
	}))
	sort.Strings(regions)
	return regions
}

// CategoriesFor resolves the funding category labels linked to scope.
func (l *Lookup) CategoriesFor(scope types.Scope) []string {
	human := scope.Human()
	matches := lo.Filter(l.categories, func(c types.CategoryMapping, _ int) bool {
		return strings.TrimSpace(c.SmartCategory) == human
	})
	return lo.Uniq(lo.Map(matches, func(c types.CategoryMapping, _ int) string {
		return c.CategoryLabel
	}))
}

// FundingFor lists the operations in region whose category is linked to
// scope. It returns a miss, never an error, when the scope has no linked
// category, when the region is absent from the table, or when no
// operation satisfies both.
func (l *Lookup) FundingFor(region string, scope types.Scope) types.FundingResult {
	log := l.log.With(slog.String("region", region), slog.String("scope", string(scope)))

	labels := l.CategoriesFor(scope)
	if len(labels) == 0 {
		log.Debug("scope has no funding category")
		return types.FundingResult{Miss: &types.LookupMiss{
			Kind:    types.MissCategory,
			Key:     string(scope),
			Message: fmt.Sprintf("No match found for category %s", scope),
		}}
	}

	inRegion := lo.Filter(l.records, func(r types.FundingRecord, _ int) bool {
		return r.Region == region
	})
	if len(inRegion) == 0 {
		log.Debug("region absent from funding table")
		return types.FundingResult{Miss: &types.LookupMiss{
			Kind:    types.MissRegion,
			Key:     region,
			Message: fmt.Sprintf("No funding found for region %s", region),
		}}
	}

	rows := lo.Filter(inRegion, func(r types.FundingRecord, _ int) bool {
		return lo.Contains(labels, r.CategoryLabel)
	})
	if len(rows) == 0 {
		log.Debug("no funding rows for region and category")
		return types.FundingResult{Miss: &types.LookupMiss{
			Kind:    types.MissNoRows,
			Key:     region + "/" + string(scope),
			Message: fmt.Sprintf("No funding available for region %s and category %s", region, scope),
		}}
	}

	summary := &types.FundingSummary{
		Region:     region,
		Scope:      scope,
		Categories: labels,
		Lines: lo.Map(rows, func(r types.FundingRecord, _ int) types.FundingLine {
			return types.FundingLine{
				ID:                       r.ID,
				TotalEligibleExpenditure: r.TotalEligibleExpenditure,
				EUBudget:                 r.EUBudget,
			}
		}),
	}
	summary.Narrative = Render(*summary)

	log.Info("funding found", slog.Int("operations", len(summary.Lines)))
	return types.FundingResult{Summary: summary}
}

// FormatAmount renders an amount with thousands separators and two
// decimals.
func FormatAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Render writes one paragraph per funded operation.
func Render(s types.FundingSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FUNDING AVAILABLE FOR REGION %s\n", s.Region)
	fmt.Fprintf(&b, "SMART CITY CATEGORY: %s\n\n", s.Scope)
	for _, line := range s.Lines {
		b.WriteString(strings.Repeat("=", 50) + "\n")
		fmt.Fprintf(&b, "Project URL: %s\n", line.ID)
		fmt.Fprintf(&b, "Total eligible expenditure: %s €\n", FormatAmount(line.TotalEligibleExpenditure))
		fmt.Fprintf(&b, "EU budget granted: %s €\n", FormatAmount(line.EUBudget))
	}
	return b.String()
}
