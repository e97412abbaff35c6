// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FundingRecord is one EU-funded operation.
type FundingRecord struct {
	// ID is the operation's unique identifier (usually a project URL).
	ID string `json:"id" yaml:"id"`

	// Region is the province or region the operation belongs to.
	Region string `json:"region" yaml:"region"`

	// CategoryLabel is the intervention category of the operation.
	CategoryLabel string `json:"category_label" yaml:"category_label"`

	TotalEligibleExpenditure float64 `json:"total_eligible_expenditure" yaml:"total_eligible_expenditure"`
	EUBudget                 float64 `json:"eu_budget" yaml:"eu_budget"`
}

// CategoryMapping links a smart-city category (human form, e.g.
// "Smart Mobility") to a funding category label.
type CategoryMapping struct {
	SmartCategory string `json:"smart_category" yaml:"smart_category"`
	CategoryLabel string `json:"category_label" yaml:"category_label"`
}

// FundingLine is one funded operation in a FundingSummary.
type FundingLine struct {
	ID                       string  `json:"id" yaml:"id"`
	TotalEligibleExpenditure float64 `json:"total_eligible_expenditure" yaml:"total_eligible_expenditure"`
	EUBudget                 float64 `json:"eu_budget" yaml:"eu_budget"`
}

// FundingSummary lists the operations available for a region and scope.
type FundingSummary struct {
	Region     string        `json:"region" yaml:"region"`
	Scope      Scope         `json:"scope" yaml:"scope"`
	Categories []string      `json:"categories" yaml:"categories"`
	Lines      []FundingLine `json:"lines" yaml:"lines"`
	Narrative  string        `json:"narrative" yaml:"narrative"`
}

// FundingResult is either a summary or a miss, never both.
type FundingResult struct {
	Summary *FundingSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Miss    *LookupMiss     `json:"miss,omitempty" yaml:"miss,omitempty"`
}

// Found reports whether funding lines were found.
func (r FundingResult) Found() bool {
	return r.Summary != nil
}

// Text returns the narrative or the miss message.
func (r FundingResult) Text() string {
	if r.Summary != nil {
		return r.Summary.Narrative
	}
	return r.Miss.String()
}
