package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TaylorDurden/rank-everything/internal/domain/ai"
)

const fullResponse = `{
  "overall_score": 82,
  "dimension_scores": [
    {"key": "performance", "score": 85.4, "why": "fast initial load"},
    {"key": "accessibility", "score": 78, "why": "missing alt text in places"}
  ],
  "findings": ["good caching strategy"],
  "risks": ["single point of failure in CDN"],
  "actions": [
    {"title": "Add alt text", "why": "screen reader support", "impact": "wider audience",
     "effort": "low", "owner_hint": "frontend", "eta": "1 week"}
  ],
  "projections": [
    {"scenario": "Baseline", "description": "steady traffic", "outcome": "stable", "probability": "High"}
  ],
  "specific_recommendations": [
    {"category": "SEO", "items": ["add sitemap"]}
  ],
  "comparison": {"summary": "improved since last run", "improvements": ["speed"], "regressions": []}
}`

func TestResultParsesFullResponse(t *testing.T) {
	r, err := Result(fullResponse)
	require.NoError(t, err)

	require.Equal(t, 82, r.OverallScore)
	require.Len(t, r.DimensionScores, 2)
	require.Equal(t, "performance", r.DimensionScores[0].Key)
	require.Equal(t, 85, r.DimensionScores[0].Score, "fractional scores round")
	require.Equal(t, "fast initial load", r.DimensionScores[0].Rationale)

	require.Len(t, r.Actions, 1)
	require.Equal(t, "frontend", r.Actions[0].Owner)
	require.Equal(t, []string{"Add alt text: screen reader support [low] (eta: 1 week)"}, r.Suggestions)

	require.Len(t, r.Projections, 1)
	require.Len(t, r.Recommendations, 1)
	require.NotNil(t, r.Comparison)
	require.Equal(t, "improved since last run", r.Comparison.Summary)
}

func TestResultStripsFenceAndProse(t *testing.T) {
	wrapped := "Here is the analysis:\n```json\n" + fullResponse + "\n```\nLet me know if you need more."
	r, err := Result(wrapped)
	require.NoError(t, err)
	require.Equal(t, 82, r.OverallScore)
}

func TestResultEquivalentAcrossWrappings(t *testing.T) {
	raw, err := Result(fullResponse)
	require.NoError(t, err)

	fenced, err := Result("```json\n" + fullResponse + "\n```")
	require.NoError(t, err)

	prose, err := Result("Here is the analysis:\n```json\n" + fullResponse + "\n```\nLet me know if you need more.")
	require.NoError(t, err)

	require.Equal(t, raw.DimensionScores, fenced.DimensionScores)
	require.Equal(t, raw.DimensionScores, prose.DimensionScores)
	require.Equal(t, raw.OverallScore, fenced.OverallScore)
	require.Equal(t, raw.OverallScore, prose.OverallScore)
}

func TestResultClampsScores(t *testing.T) {
	r, err := Result(`{"overall_score": 130, "dimension_scores": [{"key": "a", "score": -5, "why": ""}]}`)
	require.NoError(t, err)
	require.Equal(t, 100, r.OverallScore)
	require.Equal(t, 0, r.DimensionScores[0].Score)
}

func TestResultDerivesOverallFromDimensions(t *testing.T) {
	r, err := Result(`{"dimension_scores": [
		{"key": "a", "score": 80, "why": ""},
		{"key": "b", "score": 70, "why": ""}
	]}`)
	require.NoError(t, err)
	require.Equal(t, 75, r.OverallScore)
}

func TestResultSkipsActionsWithoutTitle(t *testing.T) {
	r, err := Result(`{"overall_score": 50,
		"dimension_scores": [{"key": "a", "score": 50, "why": ""}],
		"actions": [{"title": "  ", "why": "ignored"}, {"title": "Do the thing"}]}`)
	require.NoError(t, err)
	require.Len(t, r.Actions, 1)
	require.Equal(t, []string{"Do the thing"}, r.Suggestions)
}

func TestResultRejectsMissingDimensionScores(t *testing.T) {
	_, err := Result(`{"overall_score": 50, "dimension_scores": []}`)
	require.Error(t, err)
	require.ErrorIs(t, err, ai.ErrParse)

	var pf *ai.ParseFailure
	require.True(t, errors.As(err, &pf))
	require.Contains(t, pf.Reason, "dimension_scores")
}

func TestResultRejectsNonJSON(t *testing.T) {
	_, err := Result("I could not produce the requested analysis.")
	require.ErrorIs(t, err, ai.ErrParse)

	var pf *ai.ParseFailure
	require.True(t, errors.As(err, &pf))
	require.Equal(t, "I could not produce the requested analysis.", pf.Raw)
}

func TestResultRejectsMalformedJSON(t *testing.T) {
	_, err := Result(`{"overall_score": 50, "dimension_scores": [`)
	require.Error(t, err)
	require.ErrorIs(t, err, ai.ErrParse)
}
