package templates

import (
	"errors"
	"time"
)

// TemplateID identifier type
type TemplateID string

// Dimension is one scored axis of a template. Keys are unique within a
// template.
type Dimension struct {
	Key          string  `json:"key"`
	Weight       float64 `json:"weight,omitempty"`
	Description  string  `json:"description,omitempty"`
	ScoringGuide string  `json:"scoring_guide,omitempty"`
}

// Template is the weighted rubric used to evaluate an asset.
type Template struct {
	ID         TemplateID  `json:"id"`
	TenantID   string      `json:"tenant_id"`
	Name       string      `json:"name"`
	AssetType  string      `json:"asset_type"`
	Dimensions []Dimension `json:"dimensions"`
	CreatedAt  time.Time   `json:"created_at"`
}

var ErrNotFound = errors.New("template not found")
