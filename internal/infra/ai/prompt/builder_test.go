package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TaylorDurden/rank-everything/internal/domain/assets"
	"github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
)

func testAsset() *assets.Asset {
	return &assets.Asset{
		ID:          "asset-1",
		Name:        "Corporate Site",
		Description: "Marketing site for the company",
		Type:        "website",
		Metadata:    map[string]any{"url": "https://example.com", "stack": "react"},
	}
}

func testTemplate() *templates.Template {
	return &templates.Template{
		ID:        "tpl-1",
		Name:      "Website Audit",
		AssetType: "website",
		Dimensions: []templates.Dimension{
			{Key: "performance", Weight: 0.4, ScoringGuide: "90+ means sub-second loads"},
			{Key: "accessibility", Weight: 0.6},
		},
	}
}

func TestSystemUsesAssetTypeRole(t *testing.T) {
	out := System(testAsset(), testTemplate())

	require.Contains(t, out, "website experience expert")
	require.Contains(t, out, "- Asset name: Corporate Site\n")
	require.Contains(t, out, "- Asset description: Marketing site for the company\n")
	require.Contains(t, out, "1. performance (weight: 0.4)")
	require.Contains(t, out, "scoring guide: 90+ means sub-second loads")
	require.Contains(t, out, "2. accessibility (weight: 0.6)")
	require.Contains(t, out, `"dimension_scores"`)
	require.Contains(t, out, "Respond with exactly one JSON object")
}

func TestSystemFallsBackToProductRole(t *testing.T) {
	asset := testAsset()
	asset.Type = "spacecraft"
	out := System(asset, testTemplate())
	require.Contains(t, out, "product strategy consultant")
}

func TestSystemUsesTemplateTypeWhenAssetTypeEmpty(t *testing.T) {
	asset := testAsset()
	asset.Type = ""
	out := System(asset, testTemplate())
	require.Contains(t, out, "website experience expert")
	require.Contains(t, out, "- Asset type: website\n")
}

func TestUserIncludesMetadata(t *testing.T) {
	out := User(testAsset(), nil)

	require.Contains(t, out, "Evaluate the following asset.")
	require.Contains(t, out, "## Asset metadata")
	require.Contains(t, out, `"url": "https://example.com"`)
	require.NotContains(t, out, "Previous evaluation")
}

func TestUserIncludesPreviousEvaluation(t *testing.T) {
	previous := &evaluations.Evaluation{
		UpdatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Results: &evaluations.AnalysisResult{
			OverallScore: 70,
			DimensionScores: []evaluations.DimensionScore{
				{Key: "performance", Score: 65},
			},
			Findings: []string{"slow images"},
		},
	}

	out := User(testAsset(), previous)

	require.Contains(t, out, "## Previous evaluation (for trend and comparison)")
	require.Contains(t, out, `"date": "2026-02-01"`)
	require.Contains(t, out, `"overall_score": 70`)
	require.Contains(t, out, `"performance": 65`)
	require.Contains(t, out, `"slow images"`)
}

func TestUserSkipsHistoryWithoutResults(t *testing.T) {
	out := User(testAsset(), &evaluations.Evaluation{})
	require.NotContains(t, out, "Previous evaluation")
}
