package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TaylorDurden/rank-everything/internal/domain/assets"
	"github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
)

// expertRoles maps an asset type to the evaluator persona used in the
// system prompt. Unknown types fall back to the product strategist.
var expertRoles = map[string]string{
	"website": `a website experience expert focused on:
- information architecture and navigation design
- usability and user experience
- performance and load times
- accessibility (WCAG)
- content clarity and SEO`,

	"mobile": `a mobile growth expert focused on:
- activation, retention and win-back strategy
- instrumentation and A/B testing
- app store optimization (ASO)
- funnel and cohort analysis`,

	"product": `a product strategy consultant focused on:
- goal-metric-initiative loops
- prioritization frameworks (ICE/RICE)
- dependency and risk analysis
- roadmap planning`,

	"skill": `a skill assessment mentor focused on:
- competency framework design
- portfolio and outcome review
- learning path planning
- quantified milestones`,

	"finance": `a financial health advisor focused on:
- cash flow analysis
- savings rate and debt ratios
- risk exposure review
- asset allocation guidance`,
}

// System builds the system segment: evaluator persona, the dimension list
// with weights and scoring guides, and the required JSON output schema.
func System(asset *assets.Asset, template *templates.Template) string {
	assetType := asset.Type
	if assetType == "" {
		assetType = template.AssetType
	}
	role, ok := expertRoles[strings.ToLower(assetType)]
	if !ok {
		role = expertRoles["product"]
	}

	var dims strings.Builder
	for i, d := range template.Dimensions {
		fmt.Fprintf(&dims, "%d. %s", i+1, d.Key)
		if d.Weight > 0 {
			fmt.Fprintf(&dims, " (weight: %g)", d.Weight)
		}
		if d.ScoringGuide != "" {
			fmt.Fprintf(&dims, "\n  scoring guide: %s", d.ScoringGuide)
		}
		dims.WriteString("\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n\n", role)
	b.WriteString("## Subject\n")
	fmt.Fprintf(&b, "- Asset name: %s\n", asset.Name)
	fmt.Fprintf(&b, "- Asset type: %s\n", assetType)
	if asset.Description != "" {
		fmt.Fprintf(&b, "- Asset description: %s\n", asset.Description)
	}
	b.WriteString("\n## Scoring dimensions\n")
	b.WriteString(dims.String())
	b.WriteString(`
## Task
Evaluate the asset above and produce a structured analysis:
1. Score every listed dimension from 0 to 100, honoring the weights.
2. Give a concrete rationale for each score.
3. Identify 3-7 key findings.
4. Identify up to 3 risks.
5. Propose up to 8 actionable improvements.
6. Project baseline, optimistic and pessimistic future scenarios.
7. Add specific, context-grounded recommendations grouped by category.

## Output format
Respond with exactly one JSON object, no markdown fences, no commentary:
{
  "overall_score": <0-100>,
  "dimension_scores": [
    {"key": "<dimension key>", "score": <0-100>, "why": "<rationale>"}
  ],
  "findings": ["<finding>"],
  "risks": ["<risk>"],
  "actions": [
    {"title": "<title>", "why": "<reason>", "impact": "<expected impact>",
     "effort": "<low|medium|high>", "owner_hint": "<suggested owner>", "eta": "<estimate>"}
  ],
  "projections": [
    {"scenario": "Baseline|Optimistic|Pessimistic", "description": "<text>",
     "outcome": "<text>", "probability": "<Low|Medium|High>"}
  ],
  "specific_recommendations": [
    {"category": "<name>", "items": ["<item>"]}
  ],
  "comparison": {
    "summary": "<movement vs previous evaluation, empty when no history>",
    "improvements": ["<gain>"],
    "regressions": ["<loss>"]
  }
}

## Quality rules
- Never fabricate data; reason only from the provided context.
- Every field must be present.
- Rationales must be specific and traceable to the inputs.
- If the data is insufficient, say so and suggest what to collect.`)

	return b.String()
}

// User builds the user segment: the asset metadata plus, when available,
// the previous completed evaluation for trend and comparison narrative.
func User(asset *assets.Asset, previous *evaluations.Evaluation) string {
	var b strings.Builder
	b.WriteString("Evaluate the following asset.")

	if len(asset.Metadata) > 0 {
		meta, err := json.MarshalIndent(asset.Metadata, "", "  ")
		if err == nil {
			b.WriteString("\n\n## Asset metadata\n")
			b.Write(meta)
		}
	}

	if previous != nil && previous.Results != nil {
		history := map[string]any{
			"date":          previous.UpdatedAt.Format("2006-01-02"),
			"overall_score": previous.Results.OverallScore,
			"scores":        previousScores(previous.Results),
			"findings":      previous.Results.Findings,
		}
		h, err := json.MarshalIndent(history, "", "  ")
		if err == nil {
			b.WriteString("\n\n## Previous evaluation (for trend and comparison)\n")
			b.Write(h)
		}
	}

	return b.String()
}

func previousScores(r *evaluations.AnalysisResult) map[string]int {
	scores := make(map[string]int, len(r.DimensionScores))
	for _, d := range r.DimensionScores {
		scores[d.Key] = d.Score
	}
	return scores
}
