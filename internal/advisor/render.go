// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/smartcity-advisor/internal/projects"
	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// RenderSimilar lists ranked cities. With details, each city also shows its
// raw feature values and its weighted contributions.
func (a *Advisor) RenderSimilar(res types.SimilarityResult, details bool) string {
	var b strings.Builder
	b.WriteString("MOST SIMILAR CITIES\n")
	for i, c := range res {
		fmt.Fprintf(&b, "%d. %s (Similarity: %.2f%%)\n", i+1, c.Name, c.Score)
		if !details {
			continue
		}
		if city, ok := a.ref.City(c.Name); ok {
			if raw, err := a.ref.Model.Inverse(city.Normalized); err == nil {
				for j, f := range a.ref.Schema.Features {
					fmt.Fprintf(&b, "     %-20s %s\n", f, strconv.FormatFloat(raw[j], 'f', -1, 64))
				}
			}
		}
		if len(c.Contributions) > 0 {
			b.WriteString("   Contributions:\n")
			for _, fv := range c.Contributions {
				fmt.Fprintf(&b, "     %-20s %.3f\n", fv.Feature, fv.Value)
			}
		}
	}
	return b.String()
}

// Text renders the recommendation as the concatenated narratives of its
// parts.
func (a *Advisor) Text(rec *Recommendation) string {
	parts := []string{a.RenderSimilar(rec.Similar, false)}
	if rec.Projects != nil {
		parts = append(parts, rec.Projects.Narrative)
	}
	if rec.Funding != nil {
		parts = append(parts, rec.Funding.Text())
	}
	if rec.Budget != nil {
		parts = append(parts, projects.RenderBudget(*rec.Budget))
	}
	return strings.Join(parts, "\n")
}
