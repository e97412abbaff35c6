// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package advisor

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/smartcity-advisor/internal/normalize"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// ErrInvalidQuery is returned for a query whose scope, duration, or budget
// cannot be used.
var ErrInvalidQuery = errors.New("invalid query")

// CityQuery describes the hypothetical city being planned. Feature keys are
// feature identifiers ("population_density") or dataset column headers.
// Climate may replace the two temperature features.
type CityQuery struct {
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Climate  string            `json:"climate,omitempty" yaml:"climate,omitempty"`
	Features map[string]string `json:"features" yaml:"features"`
}

// Query is the on-disk and in-memory form of one advisory request.
type Query struct {
	City     CityQuery `json:"city" yaml:"city"`
	Scope    string    `json:"scope,omitempty" yaml:"scope,omitempty"`
	Duration string    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Region   string    `json:"region,omitempty" yaml:"region,omitempty"`
	Budget   float64   `json:"budget,omitempty" yaml:"budget,omitempty"`
}

// RawCity resolves the feature keys of the query. An unknown key is a
// schema mismatch.
func (q Query) RawCity() (types.RawCity, error) {
	raw := types.RawCity{
		Name:    q.City.Name,
		Climate: q.City.Climate,
		Fields:  make(map[types.Feature]string, len(q.City.Features)),
	}
	for key, value := range q.City.Features {
		f, err := types.ParseFeature(key)
		if err != nil {
			return raw, fmt.Errorf("%w: %v", types.ErrSchemaMismatch, err)
		}
		raw.Fields[f] = value
	}
	return raw, nil
}

// QueryVector encodes the query city in schema order. A feature the schema
// needs but the query lacks, or a key the schema does not know, fails with
// ErrSchemaMismatch; a non-numeric or non-finite value fails with ErrParse.
func QueryVector(schema normalize.Schema, q Query) ([]float64, error) {
	raw, err := q.RawCity()
	if err != nil {
		return nil, err
	}
	for f, value := range raw.Fields {
		if schema.Index(f) < 0 {
			return nil, fmt.Errorf("%w: feature %s is not part of the schema", types.ErrSchemaMismatch, f)
		}
		// A reference row with this marker is dropped; a query cannot be.
		if normalize.IsMissingMarker(value) {
			return nil, fmt.Errorf("%w: %w: %s value %q is not a finite number", types.ErrData, types.ErrParse, f, value)
		}
	}
	if normalize.IsMissingMarker(raw.Climate) {
		return nil, fmt.Errorf("%w: %w: climate %q is not a temperature range", types.ErrData, types.ErrParse, raw.Climate)
	}
	v, err := schema.Encode(raw)
	if errors.Is(err, normalize.ErrMissingFeature) {
		return nil, fmt.Errorf("%w: %v", types.ErrSchemaMismatch, err)
	}
	return v, err
}

// ParsedScope returns the query scope, or an error when it is unset or
// unknown.
func (q Query) ParsedScope() (types.Scope, error) {
	if strings.TrimSpace(q.Scope) == "" {
		return "", fmt.Errorf("%w: scope is required", ErrInvalidQuery)
	}
	s, err := types.ParseScope(q.Scope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return s, nil
}

// ParsedDuration returns the query duration, or an error when it is unset
// or unknown.
func (q Query) ParsedDuration() (types.Duration, error) {
	if strings.TrimSpace(q.Duration) == "" {
		return "", fmt.Errorf("%w: duration is required", ErrInvalidQuery)
	}
	d, err := types.ParseDuration(q.Duration)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return d, nil
}

// FeatureKeys returns the query's feature keys, sorted.
func (q Query) FeatureKeys() []string {
	keys := make([]string, 0, len(q.City.Features))
	for k := range q.City.Features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResultFile is a query saved together with what it produced. It can be
// re-read as a query file; the results are informational.
type ResultFile struct {
	Query     Query           `json:"query" yaml:"query"`
	Result    *Recommendation `json:"result,omitempty" yaml:"result,omitempty"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
}

// ReadQueryFile loads a query from path. Both a bare query and a saved
// ResultFile are accepted.
func ReadQueryFile(path string) (*Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}

	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err == nil && len(rf.Query.City.Features) > 0 {
		return &rf.Query, nil
	}

	var q Query
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &q, nil
}

// WriteQueryFile saves q, with rec when non-nil, to path as YAML.
func WriteQueryFile(path string, q Query, rec *Recommendation) error {
	rf := ResultFile{Query: q, Result: rec, Timestamp: time.Now()}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
