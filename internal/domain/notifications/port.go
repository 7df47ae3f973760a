package notifications

import "context"

// Type enum for notification kinds
type Type string

const (
	TypeEvaluationCompleted Type = "evaluation_completed"
	TypeReportGenerated     Type = "report_generated"
)

// Notification is a fire-and-forget delivery payload. Send failures are
// logged by callers and never affect job state.
type Notification struct {
	Type      Type   `json:"type"`
	TenantID  string `json:"tenant_id"`
	UserID    string `json:"user_id"`
	AssetName string `json:"asset_name,omitempty"`
	ReportURL string `json:"report_url,omitempty"`
}

// Notifier port for the delivery channel
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
