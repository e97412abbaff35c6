// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package projects

import (
	"fmt"
	"strings"

	"github.com/pdiddy/smartcity-advisor/internal/funding"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// RenderReport writes the human-readable narrative of a match: a header,
// one section per scanned city, and a final summary listing every exact
// match and the first partialShown partial matches.
func RenderReport(r types.MatchReport, partialShown int) string {
	var b strings.Builder

	b.WriteString("SMART CITY PROJECT SEARCH\n")
	fmt.Fprintf(&b, "Requested scope: %s\n", r.Scope)
	fmt.Fprintf(&b, "Requested duration: %s\n", r.Duration)

	for _, c := range r.Cities {
		fmt.Fprintf(&b, "\nANALYSIS %s (Similarity: %.2f%%)\n", c.City, c.Similarity)
		if c.Miss != nil {
			fmt.Fprintf(&b, "⚠ %s\n", c.Miss.Message)
			continue
		}
		for _, ch := range c.Checks {
			p := ch.Project
			fmt.Fprintf(&b, "\nProject %d: %s\n", p.Slot, p.Name)
			fmt.Fprintf(&b, "Scope: %s %s\n", p.Scope, mark(ch.ScopeMatch))
			fmt.Fprintf(&b, "Duration: %s %s\n", p.Duration, mark(ch.DurationMatch))
			fmt.Fprintf(&b, "Status: %s\n", p.Status)
			switch ch.Class {
			case types.MatchExact:
				b.WriteString("→ Perfect match!\n")
			case types.MatchPartial:
				b.WriteString("→ Partial match\n")
			}
		}
		if c.Skipped > 0 {
			fmt.Fprintf(&b, "(%d malformed project(s) skipped)\n", c.Skipped)
		}
	}

	b.WriteString("\n" + strings.Repeat("=", 50) + "\n\n")
	b.WriteString("FINAL RESULTS:\n")

	if len(r.Exact) == 0 && len(r.Partial) == 0 {
		b.WriteString("\n❌ No project found for the requested parameters\n")
	}

	if len(r.Exact) > 0 {
		b.WriteString("\n✅ PROJECTS WITH A PERFECT MATCH:\n")
		for _, mp := range r.Exact {
			writeMatched(&b, mp)
		}
	}

	if len(r.Partial) > 0 {
		b.WriteString("\n💡 RECOMMENDED ALTERNATIVE PROJECTS:\n")
		shown := r.Partial
		if partialShown > 0 && len(shown) > partialShown {
			shown = shown[:partialShown]
		}
		for _, mp := range shown {
			writeMatched(&b, mp)
		}
	}

	return b.String()
}

func writeMatched(b *strings.Builder, mp types.MatchedProject) {
	p := mp.Project
	fmt.Fprintf(b, "\nCity: %s (Similarity: %.2f%%)\n", mp.City, mp.Similarity)
	fmt.Fprintf(b, "Name: %s\n", p.Name)
	fmt.Fprintf(b, "Scope: %s\n", p.Scope)
	fmt.Fprintf(b, "Duration: %s\n", p.Duration)
	fmt.Fprintf(b, "Status: %s\n", p.Status)
	fmt.Fprintf(b, "Description: %s\n", p.Description)
}

// RenderBudget writes the outcome of a budget selection.
func RenderBudget(r types.BudgetResult) string {
	if r.Miss != nil {
		return r.Miss.Message + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "BEST PROJECT WITHIN %s €\n", funding.FormatAmount(r.Budget))
	writeMatched(&b, *r.Project)
	fmt.Fprintf(&b, "Cost: %s €\n", funding.FormatAmount(r.Project.Project.Cost))
	return b.String()
}
