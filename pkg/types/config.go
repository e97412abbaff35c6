// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds settings used when reference tables are fetched from a URL.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on 429 and 5xx responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Token, when set, is sent as a bearer token. It is normally loaded
	// from the secrets directory rather than the config file.
	Token string `json:"-" yaml:"-" mapstructure:"token"`
}

// DataConfig locates the reference tables. Each source is a local path or
// an http(s) URL.
type DataConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Cities is the city dataset (CSV).
	Cities string `json:"cities" yaml:"cities" mapstructure:"cities"`

	// Projects is the smart project dataset (CSV), keyed by city.
	Projects string `json:"projects" yaml:"projects" mapstructure:"projects"`

	// Funding is the EU funding table (CSV). Optional.
	Funding string `json:"funding,omitempty" yaml:"funding,omitempty" mapstructure:"funding"`

	// Categories is the category crosswalk (CSV or YAML). Optional.
	Categories string `json:"categories,omitempty" yaml:"categories,omitempty" mapstructure:"categories"`

	// CatalogDir holds the SQLite snapshot of the tables (catalog.db).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir" mapstructure:"catalog_dir"`
}

// FeatureWeights assigns each feature its importance in similarity scoring.
// A feature with no entry is left unweighted (factor 1.0).
type FeatureWeights map[Feature]float64

// DefaultWeights returns the standard weighting. The weights sum to 1.0.
func DefaultWeights() FeatureWeights {
	return FeatureWeights{
		FeaturePopulationDensity: 0.15,
		FeatureCostOfLiving:      0.15,
		FeaturePublicTransport:   0.10,
		FeatureTempMin:           0.10,
		FeatureTempMax:           0.10,
		FeatureTouristPOIs:       0.10,
		FeatureAirports:          0.05,
		FeaturePollution:         0.05,
		FeatureMedianAge:         0.05,
		FeatureAnnualEvents:      0.05,
		FeatureAdminImportance:   0.05,
		FeaturePrimary:           0.02,
		FeatureSecondary:         0.03,
		FeatureTertiary:          0.03,
		FeatureQuaternary:        0.02,
	}
}

// Factor returns the multiplier applied to f.
func (w FeatureWeights) Factor(f Feature) float64 {
	if v, ok := w[f]; ok {
		return v
	}
	return 1.0
}

// Validate rejects negative weights.
func (w FeatureWeights) Validate() error {
	for f, v := range w {
		if v < 0 {
			return fmt.Errorf("weight for %s is negative (%g)", f, v)
		}
	}
	return nil
}

// Metric selects the similarity formula.
type Metric string

const (
	// MetricEuclidean inverts weighted Euclidean distance to a percentage
	// relative to the farthest row. This is the default.
	MetricEuclidean Metric = "euclidean"

	// MetricCosine scores by cosine similarity of the weighted vectors.
	MetricCosine Metric = "cosine"
)

// SimilarityConfig holds settings for the similarity engine.
type SimilarityConfig struct {
	// TopK is the number of similar cities returned (default 5).
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// Metric is euclidean or cosine.
	Metric Metric `json:"metric" yaml:"metric" mapstructure:"metric"`

	// Weights overrides the default feature weights. Keys are feature
	// identifiers (e.g. "population_density").
	Weights map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty" mapstructure:"weights"`
}

// FeatureWeights resolves the configured weights. With no overrides it
// returns DefaultWeights; overrides replace individual entries.
func (c SimilarityConfig) FeatureWeights() (FeatureWeights, error) {
	w := DefaultWeights()
	for k, v := range c.Weights {
		f, err := ParseFeature(k)
		if err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
		w[f] = v
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// MatchConfig holds settings for the project matcher.
type MatchConfig struct {
	// MaxCities caps how many ranked cities are scanned (default 5).
	MaxCities int `json:"max_cities" yaml:"max_cities" mapstructure:"max_cities"`

	// PartialShown caps the partial matches listed in the narrative (default 3).
	PartialShown int `json:"partial_shown" yaml:"partial_shown" mapstructure:"partial_shown"`
}

// AdvisorConfig groups all settings of the pipeline.
type AdvisorConfig struct {
	Data       DataConfig       `json:"data" yaml:"data" mapstructure:"data"`
	Similarity SimilarityConfig `json:"similarity" yaml:"similarity" mapstructure:"similarity"`
	Match      MatchConfig      `json:"match" yaml:"match" mapstructure:"match"`
}

// DefaultAdvisorConfig returns the configuration used when no config file
// or flag overrides a value.
func DefaultAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{
		Data: DataConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    30 * time.Second,
				UserAgent:  "smartcity-advisor/0.1",
				MaxRetries: 3,
			},
			Cities:     "data/cities.csv",
			Projects:   "data/progetti_smart.csv",
			CatalogDir: "data/catalog",
		},
		Similarity: SimilarityConfig{
			TopK:   5,
			Metric: MetricEuclidean,
		},
		Match: MatchConfig{
			MaxCities:    5,
			PartialShown: 3,
		},
	}
}

// WithDefaults fills zero values from DefaultAdvisorConfig.
func (c AdvisorConfig) WithDefaults() AdvisorConfig {
	d := DefaultAdvisorConfig()
	if c.Data.Timeout <= 0 {
		c.Data.Timeout = d.Data.Timeout
	}
	if c.Data.UserAgent == "" {
		c.Data.UserAgent = d.Data.UserAgent
	}
	if c.Data.MaxRetries <= 0 {
		c.Data.MaxRetries = d.Data.MaxRetries
	}
	if c.Data.Cities == "" {
		c.Data.Cities = d.Data.Cities
	}
	if c.Data.Projects == "" {
		c.Data.Projects = d.Data.Projects
	}
	if c.Data.CatalogDir == "" {
		c.Data.CatalogDir = d.Data.CatalogDir
	}
	if c.Similarity.TopK <= 0 {
		c.Similarity.TopK = d.Similarity.TopK
	}
	if c.Similarity.Metric == "" {
		c.Similarity.Metric = d.Similarity.Metric
	}
	if c.Match.MaxCities <= 0 {
		c.Match.MaxCities = d.Match.MaxCities
	}
	if c.Match.PartialShown <= 0 {
		c.Match.PartialShown = d.Match.PartialShown
	}
	return c
}
