package evaluations

import (
	"errors"
	"time"
)

// EvaluationID identifier type
type EvaluationID string

// Status enum for the evaluation job lifecycle
type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Aggregate Root: Evaluation, one execution of a template against an asset.
// Only the orchestrator mutates status/progress after creation.
type Evaluation struct {
	ID         EvaluationID    `json:"id"`
	AssetID    string          `json:"asset_id"`
	TemplateID string          `json:"template_id"`
	TenantID   string          `json:"tenant_id"`
	CreatedBy  string          `json:"created_by"`
	Status     Status          `json:"status"`
	Progress   int             `json:"progress"`
	Results    *AnalysisResult `json:"results,omitempty"`
	ReportURL  string          `json:"report_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DimensionScore is one scored rubric axis with its rationale.
type DimensionScore struct {
	Key       string `json:"key"`
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// Action is a recommended improvement step.
type Action struct {
	Title     string `json:"title"`
	Rationale string `json:"rationale,omitempty"`
	Impact    string `json:"impact,omitempty"`
	Effort    string `json:"effort,omitempty"`
	Owner     string `json:"owner,omitempty"`
	ETA       string `json:"eta,omitempty"`
}

// Projection is a forward-looking scenario sketch.
type Projection struct {
	Scenario    string `json:"scenario"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
	Probability string `json:"probability"`
}

// Recommendation groups concrete suggestions under a category.
type Recommendation struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// Comparison summarizes movement against the previous completed evaluation.
type Comparison struct {
	Summary      string   `json:"summary"`
	Improvements []string `json:"improvements,omitempty"`
	Regressions  []string `json:"regressions,omitempty"`
}

// AnalysisResult is the validated structured outcome of one evaluation
// attempt. The field set is the same whether the model or the fallback
// produced it; the fallback leaves the optional blocks empty.
type AnalysisResult struct {
	OverallScore    int              `json:"overall_score"`
	DimensionScores []DimensionScore `json:"dimension_scores"`
	Findings        []string         `json:"findings,omitempty"`
	Risks           []string         `json:"risks,omitempty"`
	Actions         []Action         `json:"actions,omitempty"`
	Suggestions     []string         `json:"suggestions,omitempty"`
	Projections     []Projection     `json:"projections,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Comparison      *Comparison      `json:"comparison,omitempty"`
	ReportMarkdown  string           `json:"report_markdown,omitempty"`
	TokenUsage      int              `json:"token_usage,omitempty"`
}

var ErrNotFound = errors.New("evaluation not found")
