// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package projects matches the candidate projects of similar cities against
// a requested intervention scope and duration.
package projects

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/pdiddy/smartcity-advisor/internal/funding"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

const (
	defaultMaxCities    = 5
	defaultPartialShown = 3
)

// Matcher classifies projects of ranked cities. It is stateless between
// calls: identical inputs always produce identical reports.
type Matcher struct {
	log          *slog.Logger
	maxCities    int
	partialShown int
}

// NewMatcher creates a matcher. Zero config values fall back to 5 cities
// scanned and 3 partial matches shown.
func NewMatcher(log *slog.Logger, cfg types.MatchConfig) *Matcher {
	m := &Matcher{log: log, maxCities: cfg.MaxCities, partialShown: cfg.PartialShown}
	if m.maxCities <= 0 {
		m.maxCities = defaultMaxCities
	}
	if m.partialShown <= 0 {
		m.partialShown = defaultPartialShown
	}
	return m
}

// Classify compares a project's labels to the request with exact,
// case-sensitive string equality.
func Classify(p types.ProjectRecord, scope types.Scope, duration types.Duration) types.ProjectCheck {
	check := types.ProjectCheck{
		Project:       p,
		ScopeMatch:    p.Scope == string(scope),
		DurationMatch: p.Duration == string(duration),
	}
	switch {
	case check.ScopeMatch && check.DurationMatch:
		check.Class = types.MatchExact
	case check.ScopeMatch || check.DurationMatch:
		check.Class = types.MatchPartial
	default:
		check.Class = types.MatchNone
	}
	return check
}

// Match scans up to the configured number of ranked cities, in rank order,
// and classifies each of their projects. A city without projects is noted
// in the report; a malformed project is logged and skipped. Neither aborts
// the match.
func (m *Matcher) Match(ranked types.SimilarityResult, scope types.Scope, duration types.Duration, table types.ProjectTable) types.MatchReport {
	report := types.MatchReport{
		Scope:    scope,
		Duration: duration,
		Exact:    []types.MatchedProject{},
		Partial:  []types.MatchedProject{},
	}

	for _, city := range lo.Slice(ranked, 0, m.maxCities) {
		analysis := types.CityAnalysis{City: city.Name, Similarity: city.Score}

		cp, ok := table.Lookup(city.Name)
		if !ok {
			m.log.Debug("city has no project row", slog.String("city", city.Name))
			analysis.Miss = &types.LookupMiss{
				Kind:    types.MissCity,
				Key:     city.Name,
				Message: fmt.Sprintf("%s has no projects in the database", city.Name),
			}
			report.Cities = append(report.Cities, analysis)
			continue
		}

		for _, p := range cp.Projects {
			if err := p.Validate(); err != nil {
				m.log.Warn("skipping malformed project",
					slog.String("city", city.Name),
					slog.Int("slot", p.Slot),
					slog.String("error", err.Error()))
				analysis.Skipped++
				continue
			}

			check := Classify(p, scope, duration)
			analysis.Checks = append(analysis.Checks, check)

			matched := types.MatchedProject{City: city.Name, Similarity: city.Score, Project: p}
			switch check.Class {
			case types.MatchExact:
				report.Exact = append(report.Exact, matched)
			case types.MatchPartial:
				report.Partial = append(report.Partial, matched)
			}
		}
		report.Cities = append(report.Cities, analysis)
	}

	m.log.Info("projects matched",
		slog.String("scope", string(scope)),
		slog.String("duration", string(duration)),
		slog.Int("cities", len(report.Cities)),
		slog.Int("exact", len(report.Exact)),
		slog.Int("partial", len(report.Partial)))

	report.Narrative = RenderReport(report, m.partialShown)
	return report
}

// CheapestWithinBudget picks, among the projects of the scanned cities, the
// lowest-cost one whose cost fits budget. Projects without a cost are not
// eligible. Equal costs resolve to the first project scanned.
func (m *Matcher) CheapestWithinBudget(ranked types.SimilarityResult, budget float64, table types.ProjectTable) types.BudgetResult {
	result := types.BudgetResult{Budget: budget}
	if budget <= 0 {
		result.Miss = &types.LookupMiss{
			Kind:    types.MissProject,
			Message: "budget must be a positive amount",
		}
		return result
	}

	var candidates []types.MatchedProject
	for _, city := range lo.Slice(ranked, 0, m.maxCities) {
		cp, ok := table.Lookup(city.Name)
		if !ok {
			continue
		}
		for _, p := range cp.Projects {
			if err := p.Validate(); err != nil {
				m.log.Warn("skipping malformed project",
					slog.String("city", city.Name), slog.Int("slot", p.Slot), slog.String("error", err.Error()))
				continue
			}
			if p.Cost > 0 && p.Cost <= budget {
				candidates = append(candidates, types.MatchedProject{City: city.Name, Similarity: city.Score, Project: p})
			}
		}
	}

	if len(candidates) == 0 {
		result.Miss = &types.LookupMiss{
			Kind:    types.MissProject,
			Key:     funding.FormatAmount(budget),
			Message: fmt.Sprintf("no project of the similar cities fits a budget of %s €", funding.FormatAmount(budget)),
		}
		return result
	}

	best := lo.MinBy(candidates, func(a, b types.MatchedProject) bool {
		return a.Project.Cost < b.Project.Cost
	})
	result.Project = &best
	return result
}
