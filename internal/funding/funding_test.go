// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funding

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

func testLookup() *Lookup {
	records := []types.FundingRecord{
		{ID: "https://ex.eu/op/1", Region: "Torino", CategoryLabel: "Clean urban transport", TotalEligibleExpenditure: 1234567.891, EUBudget: 617283.94},
		{ID: "https://ex.eu/op/2", Region: "Torino", CategoryLabel: "Digitising SMEs", TotalEligibleExpenditure: 50000, EUBudget: 25000},
		{ID: "https://ex.eu/op/3", Region: "Milano", CategoryLabel: "Clean urban transport", TotalEligibleExpenditure: 800, EUBudget: 400},
		{ID: "https://ex.eu/op/4", Region: "Torino", CategoryLabel: "Cycling infrastructure", TotalEligibleExpenditure: 10, EUBudget: 5},
	}
	categories := []types.CategoryMapping{
		{SmartCategory: "Smart Mobility", CategoryLabel: "Clean urban transport"},
		{SmartCategory: " Smart Mobility ", CategoryLabel: "Cycling infrastructure"},
		{SmartCategory: "Smart Economy", CategoryLabel: "Digitising SMEs"},
		{SmartCategory: "Smart Governance", CategoryLabel: "e-Government"},
	}
	return NewLookup(slog.New(slog.NewTextHandler(io.Discard, nil)), records, categories)
}

func TestFundingFor_Found(t *testing.T) {
	res := testLookup().FundingFor("Torino", types.ScopeMobility)
	require.True(t, res.Found())
	require.Nil(t, res.Miss)

	s := res.Summary
	assert.Equal(t, []string{"Clean urban transport", "Cycling infrastructure"}, s.Categories)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, "https://ex.eu/op/1", s.Lines[0].ID)
	assert.Equal(t, 1234567.891, s.Lines[0].TotalEligibleExpenditure)
	assert.Equal(t, "https://ex.eu/op/4", s.Lines[1].ID)

	assert.Contains(t, s.Narrative, "FUNDING AVAILABLE FOR REGION Torino")
	assert.Contains(t, s.Narrative, "Total eligible expenditure: 1,234,567.89 €")
	assert.Contains(t, s.Narrative, "EU budget granted: 617,283.94 €")
	assert.Equal(t, s.Narrative, res.Text())
}

func TestFundingFor_Misses(t *testing.T) {
	l := testLookup()

	tests := []struct {
		name     string
		region   string
		scope    types.Scope
		wantKind types.MissKind
		wantMsg  string
	}{
		{"scope without category", "Torino", types.ScopePeople, types.MissCategory, "category Smart_People"},
		{"region absent", "Atlantide", types.ScopeMobility, types.MissRegion, "region Atlantide"},
		{"empty intersection", "Milano", types.ScopeEconomy, types.MissNoRows, "region Milano and category Smart_Economy"},
		{"governance category with no rows", "Torino", types.ScopeGovernance, types.MissNoRows, "Smart_Governance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := l.FundingFor(tt.region, tt.scope)
			assert.False(t, res.Found())
			require.NotNil(t, res.Miss)
			assert.Equal(t, tt.wantKind, res.Miss.Kind)
			assert.Contains(t, res.Miss.Message, tt.wantMsg)
			assert.Equal(t, res.Miss.Message, res.Text())
		})
	}
}

func TestRegions(t *testing.T) {
	assert.Equal(t, []string{"Milano", "Torino"}, testLookup().Regions())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "999.50", FormatAmount(999.5))
	assert.Equal(t, "12,000,000.00", FormatAmount(12e6))
}
