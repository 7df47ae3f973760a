package evaluations

import (
	"fmt"

	domain "github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
)

// neutralScore is the fixed per-dimension score of the fallback analysis.
const neutralScore = 75

// Fallback produces a deterministic, model-free AnalysisResult. It is used
// whenever the real model path cannot complete: no credential, rate-limit
// denial, upstream failure or unparseable output. The shape matches the
// model-produced result; optional blocks stay empty.
func Fallback(template *templates.Template) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		OverallScore: neutralScore,
		Findings: []string{
			"This is a simplified analysis generated without the external model; every dimension uses a neutral baseline score.",
		},
	}

	for _, dim := range template.Dimensions {
		result.DimensionScores = append(result.DimensionScores, domain.DimensionScore{
			Key:       dim.Key,
			Score:     neutralScore,
			Rationale: fmt.Sprintf("Baseline %s assessment from the asset profile; run a full AI evaluation for detailed scoring.", dim.Key),
		})
	}

	result.Actions = []domain.Action{
		{
			Title:     "Enrich the asset metadata",
			Rationale: "more context lets the evaluation score each dimension from evidence instead of a neutral baseline",
			Effort:    "low",
		},
		{
			Title:     "Re-run the evaluation when the AI service is available",
			Rationale: "a full model pass replaces the baseline scores with reasoned ones",
			Effort:    "low",
		},
		{
			Title:     "Review the template scoring guides",
			Rationale: "precise guides per dimension sharpen future automated scoring",
			Effort:    "medium",
		},
	}
	for _, a := range result.Actions {
		result.Suggestions = append(result.Suggestions, fmt.Sprintf("%s: %s [%s]", a.Title, a.Rationale, a.Effort))
	}

	return result
}
