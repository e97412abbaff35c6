// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FeatureValue pairs a feature with a value, used to explain a score.
type FeatureValue struct {
	Feature Feature `json:"feature" yaml:"feature"`
	Value   float64 `json:"value" yaml:"value"`
}

// SimilarCity is one entry of a SimilarityResult.
type SimilarCity struct {
	Name string `json:"name" yaml:"name"`

	// Score is the similarity percentage in [0,100], relative to the
	// distance distribution of the query that produced it.
	Score float64 `json:"score" yaml:"score"`

	// Distance is the raw distance (Euclidean metric) or 1-cosine.
	Distance float64 `json:"distance" yaml:"distance"`

	// Contributions lists the weighted normalized features of the city
	// whose magnitude exceeds 0.01, in feature order.
	Contributions []FeatureValue `json:"contributions,omitempty" yaml:"contributions,omitempty"`
}

// SimilarityResult is ordered by Score descending, ties broken by the
// reference row order.
type SimilarityResult []SimilarCity

// Names returns the city names in rank order.
func (r SimilarityResult) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// MatchClass classifies a project against the requested scope and duration.
type MatchClass string

const (
	MatchExact   MatchClass = "exact"
	MatchPartial MatchClass = "partial"
	MatchNone    MatchClass = "none"
)

// ProjectCheck records how one project compared to the request.
type ProjectCheck struct {
	Project       ProjectRecord `json:"project" yaml:"project"`
	ScopeMatch    bool          `json:"scope_match" yaml:"scope_match"`
	DurationMatch bool          `json:"duration_match" yaml:"duration_match"`
	Class         MatchClass    `json:"class" yaml:"class"`
}

// CityAnalysis is the per-city part of a MatchReport.
type CityAnalysis struct {
	City       string         `json:"city" yaml:"city"`
	Similarity float64        `json:"similarity" yaml:"similarity"`
	Checks     []ProjectCheck `json:"checks,omitempty" yaml:"checks,omitempty"`

	// Miss is set when the city has no row in the project table.
	Miss *LookupMiss `json:"miss,omitempty" yaml:"miss,omitempty"`

	// Skipped counts malformed project slots that were not scored.
	Skipped int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// MatchedProject is a project annotated with its originating city.
type MatchedProject struct {
	City       string        `json:"city" yaml:"city"`
	Similarity float64       `json:"similarity" yaml:"similarity"`
	Project    ProjectRecord `json:"project" yaml:"project"`
}

// MatchReport is the structured result of project matching. Exact and
// Partial keep city-scan order; Partial is complete here even though the
// narrative shows only its first entries.
type MatchReport struct {
	Scope     Scope            `json:"scope" yaml:"scope"`
	Duration  Duration         `json:"duration" yaml:"duration"`
	Cities    []CityAnalysis   `json:"cities" yaml:"cities"`
	Exact     []MatchedProject `json:"exact" yaml:"exact"`
	Partial   []MatchedProject `json:"partial" yaml:"partial"`
	Narrative string           `json:"narrative" yaml:"narrative"`
}

// BudgetResult is the outcome of budget-based project selection.
type BudgetResult struct {
	Budget  float64         `json:"budget" yaml:"budget"`
	Project *MatchedProject `json:"project,omitempty" yaml:"project,omitempty"`
	Miss    *LookupMiss     `json:"miss,omitempty" yaml:"miss,omitempty"`
}
