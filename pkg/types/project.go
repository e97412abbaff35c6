// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Scope is a smart-city intervention category in its underscore form
// (e.g. "Smart_Mobility"), which is how the project dataset labels them.
type Scope string

const (
	ScopeMobility    Scope = "Smart_Mobility"
	ScopeEnvironment Scope = "Smart_Environment"
	ScopeEconomy     Scope = "Smart_Economy"
	ScopePeople      Scope = "Smart_People"
	ScopeLiving      Scope = "Smart_Living"
	ScopeGovernance  Scope = "Smart_Governance"
)

// Scopes lists every known intervention scope. ScopeGovernance only has
// meaning for funding lookups.
var Scopes = []Scope{
	ScopeMobility,
	ScopeEnvironment,
	ScopeEconomy,
	ScopePeople,
	ScopeLiving,
	ScopeGovernance,
}

// ParseScope is the single place where scope labels are normalized. It
// accepts the underscore form, the human form ("Smart Mobility"), and
// either with any letter case. Everything downstream compares Scope values
// with exact string equality.
func ParseScope(s string) (Scope, error) {
	key := strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	for _, sc := range Scopes {
		if strings.EqualFold(string(sc), key) {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown intervention scope %q", s)
}

// Human returns the scope with underscores replaced by spaces, the form
// used by the funding category crosswalk.
func (s Scope) Human() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Duration is a requested project horizon, stored as the dataset label.
type Duration string

const (
	DurationShort  Duration = "Breve termine (2 anni)"
	DurationMedium Duration = "Medio termine (5 anni)"
	DurationLong   Duration = "Lungo termine (10 anni)"
)

// Durations lists the known durations, shortest first.
var Durations = []Duration{DurationShort, DurationMedium, DurationLong}

var durationAliases = map[string]Duration{
	"short":       DurationShort,
	"short-term":  DurationShort,
	"2":           DurationShort,
	"medium":      DurationMedium,
	"medium-term": DurationMedium,
	"5":           DurationMedium,
	"long":        DurationLong,
	"long-term":   DurationLong,
	"10":          DurationLong,
}

// ParseDuration accepts a dataset label or a short alias (short, medium,
// long, or the number of years).
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	for _, d := range Durations {
		if string(d) == s {
			return d, nil
		}
	}
	if d, ok := durationAliases[strings.ToLower(s)]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown project duration %q", s)
}

// Years returns the nominal horizon in years, or 0 for an unknown label.
func (d Duration) Years() int {
	switch d {
	case DurationShort:
		return 2
	case DurationMedium:
		return 5
	case DurationLong:
		return 10
	}
	return 0
}

// ProjectRecord is one candidate project of a city. Scope and Duration are
// kept as the raw dataset labels; they are compared, not parsed.
type ProjectRecord struct {
	Slot        int     `json:"slot" yaml:"slot"`
	Name        string  `json:"name" yaml:"name"`
	Scope       string  `json:"scope" yaml:"scope"`
	Duration    string  `json:"duration" yaml:"duration"`
	Description string  `json:"description" yaml:"description"`
	Status      string  `json:"status" yaml:"status"`
	Cost        float64 `json:"cost,omitempty" yaml:"cost,omitempty"`

	// Missing lists the source columns that were absent for this slot.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Validate reports whether the record carries every column the matcher
// reads. A record with missing columns is skipped, not fatal.
func (p ProjectRecord) Validate() error {
	if len(p.Missing) > 0 {
		return fmt.Errorf("project %d missing columns: %s", p.Slot, strings.Join(p.Missing, ", "))
	}
	if p.Name == "" {
		return fmt.Errorf("project %d has no name", p.Slot)
	}
	return nil
}

// Active reports whether the project status marks it as active.
func (p ProjectRecord) Active() bool {
	s := strings.ToLower(strings.TrimSpace(p.Status))
	return s == "attivo" || s == "active"
}

// CityProjects holds the project slots of one city, first slot first.
type CityProjects struct {
	City     string          `json:"city" yaml:"city"`
	Projects []ProjectRecord `json:"projects" yaml:"projects"`
}

// ProjectTable indexes project rows by city name.
type ProjectTable map[string]CityProjects

// Lookup returns the projects for city.
func (t ProjectTable) Lookup(city string) (CityProjects, bool) {
	cp, ok := t[city]
	return cp, ok
}
