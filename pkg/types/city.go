// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the smartcity-advisor
// pipeline: city features and their categorical encodings, project and
// funding reference rows, similarity and match results, and configuration.
package types

import (
	"fmt"
	"strings"
)

// Feature identifies one attribute of a city in the feature vector.
type Feature string

const (
	FeaturePopulationDensity Feature = "population_density"
	FeatureCostOfLiving      Feature = "cost_of_living"
	FeaturePublicTransport   Feature = "public_transport"
	FeatureTempMin           Feature = "temp_min"
	FeatureTempMax           Feature = "temp_max"
	FeatureTouristPOIs       Feature = "tourist_pois"
	FeatureAirports          Feature = "airports"
	FeaturePollution         Feature = "pollution"
	FeatureMedianAge         Feature = "median_age"
	FeatureAnnualEvents      Feature = "annual_events"
	FeatureAdminImportance   Feature = "admin_importance"
	FeaturePrimary           Feature = "primary"
	FeatureSecondary         Feature = "secondary"
	FeatureTertiary          Feature = "tertiary"
	FeatureQuaternary        Feature = "quaternary"
)

// FeatureOrder is the canonical order of the feature vector. Every
// normalized vector in the pipeline is laid out in this order.
var FeatureOrder = []Feature{
	FeaturePopulationDensity,
	FeatureCostOfLiving,
	FeaturePublicTransport,
	FeatureTempMin,
	FeatureTempMax,
	FeatureTouristPOIs,
	FeatureAirports,
	FeaturePollution,
	FeatureMedianAge,
	FeatureAnnualEvents,
	FeatureAdminImportance,
	FeaturePrimary,
	FeatureSecondary,
	FeatureTertiary,
	FeatureQuaternary,
}

// featureColumns maps each feature to its column header in the city dataset.
// The temperature features are derived from ClimateColumn and have no
// column of their own.
var featureColumns = map[Feature]string{
	FeaturePopulationDensity: "Densità di popolazione (ab/km²)",
	FeatureCostOfLiving:      "Costo della vita (€/mese)",
	FeaturePublicTransport:   "Trasporto pubblico (unità totali)",
	FeatureTempMin:           "Temp_Min",
	FeatureTempMax:           "Temp_Max",
	FeatureTouristPOIs:       "Punti di interesse turistici",
	FeatureAirports:          "Aeroporti principali",
	FeaturePollution:         "Livello di inquinamento (PM2.5)",
	FeatureMedianAge:         "Età media (anni)",
	FeatureAnnualEvents:      "Media eventi annuali",
	FeatureAdminImportance:   "Importanza amministrativa",
	FeaturePrimary:           "Primario",
	FeatureSecondary:         "Secondario",
	FeatureTertiary:          "Terziario",
	FeatureQuaternary:        "Quaternario",
}

const (
	// CityColumn is the header of the city name column.
	CityColumn = "City"

	// ClimateColumn holds the annual temperature range ("X°C / Y°C").
	ClimateColumn = "Clima (range annuale)"
)

// Column returns the dataset column header for f.
func (f Feature) Column() string {
	if c, ok := featureColumns[f]; ok {
		return c
	}
	return string(f)
}

// IsSector reports whether f is one of the four sector-strength ranks.
func (f Feature) IsSector() bool {
	switch f {
	case FeaturePrimary, FeatureSecondary, FeatureTertiary, FeatureQuaternary:
		return true
	}
	return false
}

// ParseFeature resolves a feature by its identifier or its column header.
func ParseFeature(s string) (Feature, error) {
	s = strings.TrimSpace(s)
	for _, f := range FeatureOrder {
		if string(f) == s || featureColumns[f] == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown feature %q", s)
}

// AdminImportance ranks a city's administrative role. Higher is more important.
type AdminImportance int

const (
	AdminSatellite       AdminImportance = 1
	AdminRegionalCentre  AdminImportance = 2
	AdminRegionalCapital AdminImportance = 3
	AdminEconomicHub     AdminImportance = 3
	AdminNationalCapital AdminImportance = 4
)

// adminLabels is the total mapping from dataset labels to ranks. English
// labels are accepted alongside the Italian ones used by the dataset.
var adminLabels = map[string]AdminImportance{
	"Capitale nazionale": AdminNationalCapital,
	"Capitale regionale": AdminRegionalCapital,
	"Hub economico":      AdminEconomicHub,
	"Centro regionale":   AdminRegionalCentre,
	"Città satellite":    AdminSatellite,
	"national capital":   AdminNationalCapital,
	"regional capital":   AdminRegionalCapital,
	"economic hub":       AdminEconomicHub,
	"regional centre":    AdminRegionalCentre,
	"satellite city":     AdminSatellite,
}

// ParseAdminImportance maps a label to its rank. Unknown labels are a
// data error, never a silent default.
func ParseAdminImportance(label string) (AdminImportance, error) {
	label = strings.TrimSpace(label)
	if v, ok := adminLabels[label]; ok {
		return v, nil
	}
	if v, ok := adminLabels[strings.ToLower(label)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: unmapped administrative importance %q", ErrData, label)
}

// SectorStrength ranks the weight of an economic sector in a city.
type SectorStrength int

const (
	SectorLimited  SectorStrength = 1
	SectorModerate SectorStrength = 2
	SectorStrong   SectorStrength = 3
	SectorDominant SectorStrength = 4
)

var sectorLabels = map[string]SectorStrength{
	"Limitato":  SectorLimited,
	"Moderato":  SectorModerate,
	"Forte":     SectorStrong,
	"Dominante": SectorDominant,
	"limited":   SectorLimited,
	"moderate":  SectorModerate,
	"strong":    SectorStrong,
	"dominant":  SectorDominant,
}

// ParseSectorStrength maps a label to its rank.
func ParseSectorStrength(label string) (SectorStrength, error) {
	label = strings.TrimSpace(label)
	if v, ok := sectorLabels[label]; ok {
		return v, nil
	}
	if v, ok := sectorLabels[strings.ToLower(label)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: unmapped sector strength %q", ErrData, label)
}

// RawCity is one row of the city dataset as loaded, before categorical
// encoding and normalization. Fields holds the cell text keyed by feature;
// a missing or empty cell means the feature is absent for this row.
type RawCity struct {
	Name    string             `json:"name" yaml:"name"`
	Climate string             `json:"climate,omitempty" yaml:"climate,omitempty"`
	Fields  map[Feature]string `json:"fields" yaml:"fields"`
}

// ReferenceCity is a city of the reference set with its encoded raw vector
// and its normalized vector, both in FeatureOrder.
type ReferenceCity struct {
	Name       string    `json:"name" yaml:"name"`
	Raw        []float64 `json:"raw" yaml:"raw"`
	Normalized []float64 `json:"normalized" yaml:"normalized"`

	// Row is the position of the city in the source dataset after
	// incomplete rows were dropped. Ties in ranking resolve by Row.
	Row int `json:"row" yaml:"row"`
}
