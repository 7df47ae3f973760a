package evalerrors

import "time"

// EvalError is a persisted record of one degraded pipeline step. It keeps
// the raw model output around so parse failures can be diagnosed later.
type EvalError struct {
	ID           int64     `json:"id"`
	TenantID     string    `json:"tenant_id"`
	EvaluationID string    `json:"evaluation_id,omitempty"`
	AssetID      string    `json:"asset_id"`
	Stage        string    `json:"stage"` // upstream | parse | persist | notify
	Message      string    `json:"message"`
	RawOutput    string    `json:"raw_output,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
