package parse

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/TaylorDurden/rank-everything/internal/domain/ai"
	"github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
)

// wire mirrors the JSON schema the prompt asks the model for. Scores come
// in as float64 because models routinely emit fractional numbers.
type wire struct {
	OverallScore    float64 `json:"overall_score"`
	DimensionScores []struct {
		Key   string  `json:"key"`
		Score float64 `json:"score"`
		Why   string  `json:"why"`
	} `json:"dimension_scores"`
	Findings []string `json:"findings"`
	Risks    []string `json:"risks"`
	Actions  []struct {
		Title     string `json:"title"`
		Why       string `json:"why"`
		Impact    string `json:"impact"`
		Effort    string `json:"effort"`
		OwnerHint string `json:"owner_hint"`
		ETA       string `json:"eta"`
	} `json:"actions"`
	Projections []struct {
		Scenario    string `json:"scenario"`
		Description string `json:"description"`
		Outcome     string `json:"outcome"`
		Probability string `json:"probability"`
	} `json:"projections"`
	SpecificRecommendations []struct {
		Category string   `json:"category"`
		Items    []string `json:"items"`
	} `json:"specific_recommendations"`
	Comparison *struct {
		Summary      string   `json:"summary"`
		Improvements []string `json:"improvements"`
		Regressions  []string `json:"regressions"`
	} `json:"comparison"`
}

// Result turns raw model text into a validated AnalysisResult. It tolerates
// a single fenced code block and prose around the JSON object, which models
// add despite instructions. A missing or empty dimension_scores array is
// the one structural failure: everything downstream depends on it.
func Result(raw string) (*evaluations.AnalysisResult, error) {
	text := stripFence(strings.TrimSpace(raw))

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, &ai.ParseFailure{Raw: raw, Extracted: text, Reason: "no JSON object in response"}
	}
	text = text[start : end+1]

	var w wire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, &ai.ParseFailure{Raw: raw, Extracted: text, Reason: err.Error()}
	}
	if len(w.DimensionScores) == 0 {
		return nil, &ai.ParseFailure{Raw: raw, Extracted: text, Reason: "dimension_scores missing or empty"}
	}

	result := &evaluations.AnalysisResult{
		OverallScore: clampScore(w.OverallScore),
		Findings:     w.Findings,
		Risks:        w.Risks,
	}

	for _, d := range w.DimensionScores {
		result.DimensionScores = append(result.DimensionScores, evaluations.DimensionScore{
			Key:       d.Key,
			Score:     clampScore(d.Score),
			Rationale: d.Why,
		})
	}
	if w.OverallScore == 0 {
		result.OverallScore = meanScore(result.DimensionScores)
	}

	for _, a := range w.Actions {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		result.Actions = append(result.Actions, evaluations.Action{
			Title:     a.Title,
			Rationale: a.Why,
			Impact:    a.Impact,
			Effort:    a.Effort,
			Owner:     a.OwnerHint,
			ETA:       a.ETA,
		})
		result.Suggestions = append(result.Suggestions, flattenAction(a.Title, a.Why, a.Effort, a.ETA))
	}

	for _, p := range w.Projections {
		result.Projections = append(result.Projections, evaluations.Projection{
			Scenario:    p.Scenario,
			Description: p.Description,
			Outcome:     p.Outcome,
			Probability: p.Probability,
		})
	}
	for _, r := range w.SpecificRecommendations {
		result.Recommendations = append(result.Recommendations, evaluations.Recommendation{
			Category: r.Category,
			Items:    r.Items,
		})
	}
	if w.Comparison != nil && strings.TrimSpace(w.Comparison.Summary) != "" {
		result.Comparison = &evaluations.Comparison{
			Summary:      w.Comparison.Summary,
			Improvements: w.Comparison.Improvements,
			Regressions:  w.Comparison.Regressions,
		}
	}

	return result, nil
}

// flattenAction builds the one-line suggestion form
// "<title>: <rationale> [<effort>] (eta: <eta>)", skipping absent parts.
func flattenAction(title, why, effort, eta string) string {
	var b strings.Builder
	b.WriteString(title)
	if why != "" {
		b.WriteString(": ")
		b.WriteString(why)
	}
	if effort != "" {
		b.WriteString(" [")
		b.WriteString(effort)
		b.WriteString("]")
	}
	if eta != "" {
		b.WriteString(" (eta: ")
		b.WriteString(eta)
		b.WriteString(")")
	}
	return b.String()
}

// stripFence removes a single leading/trailing ``` or ```json fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clampScore(f float64) int {
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func meanScore(scores []evaluations.DimensionScore) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s.Score
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
