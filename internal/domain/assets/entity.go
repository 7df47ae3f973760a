package assets

import (
	"errors"
	"time"
)

// AssetID identifier type
type AssetID string

// Asset is the subject being evaluated. It is owned by the persistence
// layer and treated as a read-only snapshot during an evaluation.
type Asset struct {
	ID          AssetID        `json:"id"`
	TenantID    string         `json:"tenant_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

var ErrNotFound = errors.New("asset not found")
