// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package advisor runs the recommendation pipeline: a hypothetical city is
// normalized against the reference set, ranked by similarity, and the
// projects and funding of its closest matches are reported.
package advisor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/smartcity-advisor/internal/dataset"
	"github.com/pdiddy/smartcity-advisor/internal/funding"
	"github.com/pdiddy/smartcity-advisor/internal/projects"
	"github.com/pdiddy/smartcity-advisor/internal/similarity"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// Advisor answers queries against one immutable ReferenceData. It keeps no
// per-query state, so a single Advisor may serve any number of queries.
type Advisor struct {
	log     *slog.Logger
	ref     *dataset.ReferenceData
	engine  *similarity.Engine
	matcher *projects.Matcher
	funding *funding.Lookup
	topK    int
}

// New wires the pipeline components over ref.
func New(log *slog.Logger, ref *dataset.ReferenceData, cfg types.AdvisorConfig) (*Advisor, error) {
	cfg = cfg.WithDefaults()

	weights, err := cfg.Similarity.FeatureWeights()
	if err != nil {
		return nil, fmt.Errorf("similarity config: %w", err)
	}
	engine, err := similarity.NewEngine(log, ref.Schema, weights, cfg.Similarity.Metric)
	if err != nil {
		return nil, fmt.Errorf("similarity config: %w", err)
	}

	return &Advisor{
		log:     log,
		ref:     ref,
		engine:  engine,
		matcher: projects.NewMatcher(log, cfg.Match),
		funding: funding.NewLookup(log, ref.Funding, ref.Categories),
		topK:    cfg.Similarity.TopK,
	}, nil
}

// Reference returns the data the advisor was built over.
func (a *Advisor) Reference() *dataset.ReferenceData { return a.ref }

// Normalize encodes and rescales the query city with the fitted model.
func (a *Advisor) Normalize(q Query) ([]float64, error) {
	raw, err := QueryVector(a.ref.Schema, q)
	if err != nil {
		return nil, err
	}
	return a.ref.Model.Transform(raw)
}

// Similar ranks the reference cities closest to the query city. k <= 0
// uses the configured top-k.
func (a *Advisor) Similar(q Query, k int) (types.SimilarityResult, error) {
	if k <= 0 {
		k = a.topK
	}
	v, err := a.Normalize(q)
	if err != nil {
		return nil, err
	}
	return a.engine.MostSimilar(v, a.ref.Cities, k)
}

// Projects ranks similar cities and matches their projects against the
// query's scope and duration.
func (a *Advisor) Projects(q Query) (types.MatchReport, error) {
	scope, err := q.ParsedScope()
	if err != nil {
		return types.MatchReport{}, err
	}
	duration, err := q.ParsedDuration()
	if err != nil {
		return types.MatchReport{}, err
	}
	ranked, err := a.Similar(q, 0)
	if err != nil {
		return types.MatchReport{}, err
	}
	return a.matcher.Match(ranked, scope, duration, a.ref.Projects), nil
}

// Funding lists the EU funding for region under scope.
func (a *Advisor) Funding(region string, scope types.Scope) types.FundingResult {
	return a.funding.FundingFor(region, scope)
}

// Regions lists the regions present in the funding table.
func (a *Advisor) Regions() []string {
	return a.funding.Regions()
}

// Budget picks the cheapest project of the similar cities that fits the
// query's budget.
func (a *Advisor) Budget(q Query) (types.BudgetResult, error) {
	if q.Budget < 0 {
		return types.BudgetResult{}, fmt.Errorf("%w: budget must not be negative", ErrInvalidQuery)
	}
	ranked, err := a.Similar(q, 0)
	if err != nil {
		return types.BudgetResult{}, err
	}
	return a.matcher.CheapestWithinBudget(ranked, q.Budget, a.ref.Projects), nil
}

// Recommendation bundles everything one query produced.
type Recommendation struct {
	Similar  types.SimilarityResult `json:"similar" yaml:"similar"`
	Projects *types.MatchReport     `json:"projects,omitempty" yaml:"projects,omitempty"`
	Funding  *types.FundingResult   `json:"funding,omitempty" yaml:"funding,omitempty"`
	Budget   *types.BudgetResult    `json:"budget,omitempty" yaml:"budget,omitempty"`
}

// Recommend runs the full pipeline. Project matching needs scope and
// duration; funding needs region and scope; budget selection needs a
// positive budget. Parts whose inputs are absent are left out.
func (a *Advisor) Recommend(q Query) (*Recommendation, error) {
	ranked, err := a.Similar(q, 0)
	if err != nil {
		return nil, err
	}
	rec := &Recommendation{Similar: ranked}

	var scope types.Scope
	if strings.TrimSpace(q.Scope) != "" {
		if scope, err = q.ParsedScope(); err != nil {
			return nil, err
		}
	}

	if scope != "" && strings.TrimSpace(q.Duration) != "" {
		duration, err := q.ParsedDuration()
		if err != nil {
			return nil, err
		}
		report := a.matcher.Match(ranked, scope, duration, a.ref.Projects)
		rec.Projects = &report
	}

	if scope != "" && strings.TrimSpace(q.Region) != "" {
		res := a.funding.FundingFor(strings.TrimSpace(q.Region), scope)
		rec.Funding = &res
	}

	if q.Budget > 0 {
		res := a.matcher.CheapestWithinBudget(ranked, q.Budget, a.ref.Projects)
		rec.Budget = &res
	}

	a.log.Info("recommendation ready",
		slog.Int("similar", len(rec.Similar)),
		slog.Bool("projects", rec.Projects != nil),
		slog.Bool("funding", rec.Funding != nil),
		slog.Bool("budget", rec.Budget != nil))
	return rec, nil
}
