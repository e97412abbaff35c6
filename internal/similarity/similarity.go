// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity ranks reference cities by weighted closeness to a
// normalized query vector.
//
// The default metric inverts weighted Euclidean distance to a percentage
// relative to the farthest reference row: 100 * (1 - d / max d). Scores are
// therefore only comparable within one query. The cosine metric is an
// alternative ranking, not a numerically equivalent one.
package similarity

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/smartcity-advisor/internal/normalize"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// contributionFloor is the magnitude a weighted feature must exceed to be
// listed among a city's contributions.
const contributionFloor = 0.01

// Engine scores reference cities against a query. It holds no per-query
// state and may be reused.
type Engine struct {
	log     *slog.Logger
	schema  normalize.Schema
	factors []float64
	metric  types.Metric
}

// NewEngine builds an engine for schema with the given weights and metric.
// An empty metric selects Euclidean.
func NewEngine(log *slog.Logger, schema normalize.Schema, weights types.FeatureWeights, metric types.Metric) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	switch metric {
	case "":
		metric = types.MetricEuclidean
	case types.MetricEuclidean, types.MetricCosine:
	default:
		return nil, fmt.Errorf("unknown similarity metric %q: use euclidean or cosine", metric)
	}

	factors := make([]float64, schema.Len())
	for i, f := range schema.Features {
		factors[i] = weights.Factor(f)
	}
	return &Engine{log: log, schema: schema, factors: factors, metric: metric}, nil
}

// Metric returns the metric the engine scores with.
func (e *Engine) Metric() types.Metric { return e.metric }

// MostSimilar returns the k reference cities closest to query, best first.
// query must already be normalized with the model the reference set was
// fit with. When the reference set holds fewer than k cities all of them
// are returned. Ties keep reference row order.
func (e *Engine) MostSimilar(query []float64, ref []types.ReferenceCity, k int) (types.SimilarityResult, error) {
	if len(ref) == 0 {
		return nil, types.ErrEmptyDataset
	}
	if k <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", k)
	}
	if err := e.schema.Check(query); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	wq := e.weigh(query)
	weighted := make([][]float64, len(ref))
	for i, c := range ref {
		if err := e.schema.Check(c.Normalized); err != nil {
			return nil, fmt.Errorf("reference city %s: %w", c.Name, err)
		}
		weighted[i] = e.weigh(c.Normalized)
	}

	var scores, dists []float64
	switch e.metric {
	case types.MetricCosine:
		scores, dists = cosineScores(wq, weighted)
	default:
		scores, dists = euclideanScores(wq, weighted)
	}

	order := make([]int, len(ref))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		e.log.Debug("reference set smaller than top-k",
			slog.Int("k", k), slog.Int("rows", len(order)))
		k = len(order)
	}

	result := make(types.SimilarityResult, k)
	for i, idx := range order[:k] {
		result[i] = types.SimilarCity{
			Name:          ref[idx].Name,
			Score:         scores[idx],
			Distance:      dists[idx],
			Contributions: e.contributions(weighted[idx]),
		}
		e.log.Debug("similar city",
			slog.Int("rank", i+1),
			slog.String("city", ref[idx].Name),
			slog.Float64("score", scores[idx]))
	}
	return result, nil
}

func (e *Engine) weigh(v []float64) []float64 {
	out := make([]float64, len(v))
	floats.MulTo(out, v, e.factors)
	return out
}

func (e *Engine) contributions(weighted []float64) []types.FeatureValue {
	var out []types.FeatureValue
	for i, x := range weighted {
		if math.Abs(x) > contributionFloor {
			out = append(out, types.FeatureValue{Feature: e.schema.Features[i], Value: x})
		}
	}
	return out
}

// euclideanScores converts distances to 100 * (1 - d / max d). When every
// row sits exactly on the query there is nothing to scale by and all rows
// score 100.
func euclideanScores(query []float64, rows [][]float64) (scores, dists []float64) {
	dists = make([]float64, len(rows))
	for i, r := range rows {
		dists[i] = floats.Distance(query, r, 2)
	}
	maxDist := floats.Max(dists)

	scores = make([]float64, len(rows))
	for i, d := range dists {
		if maxDist == 0 {
			scores[i] = 100
			continue
		}
		scores[i] = 100 * (1 - d/maxDist)
	}
	return scores, dists
}

// cosineScores rescales cosine similarity to a percentage, flooring
// negative similarity at 0. A zero vector has similarity 0 to everything.
func cosineScores(query []float64, rows [][]float64) (scores, dists []float64) {
	qn := floats.Norm(query, 2)
	scores = make([]float64, len(rows))
	dists = make([]float64, len(rows))
	for i, r := range rows {
		rn := floats.Norm(r, 2)
		cos := 0.0
		if qn > 0 && rn > 0 {
			cos = floats.Dot(query, r) / (qn * rn)
		}
		cos = math.Max(0, math.Min(1, cos))
		scores[i] = 100 * cos
		dists[i] = 1 - cos
	}
	return scores, dists
}
