package ai

import (
	"context"

	"github.com/TaylorDurden/rank-everything/internal/domain/assets"
	"github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
)

// Client is the model gateway port. Exactly one network attempt is made
// per call; failures surface as ErrUpstream or ErrParse.
type Client interface {
	Evaluate(ctx context.Context, asset *assets.Asset, template *templates.Template, previous *evaluations.Evaluation) (*evaluations.AnalysisResult, error)
}

// ResultCache is a content-addressed store of prior analysis results.
// The fingerprint comes from MetadataFingerprint.
type ResultCache interface {
	Lookup(assetID, templateID, fingerprint string) (*evaluations.AnalysisResult, bool)
	Store(assetID, templateID, fingerprint string, result *evaluations.AnalysisResult, tokenUsage int)
	Clear(assetID, templateID string)
}

// Decision is the limiter verdict for one tenant call.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// UsageStats reports a tenant's consumption against both ceilings.
type UsageStats struct {
	Daily            int `json:"daily"`
	Monthly          int `json:"monthly"`
	DailyLimit       int `json:"daily_limit"`
	MonthlyLimit     int `json:"monthly_limit"`
	RemainingDaily   int `json:"remaining_daily"`
	RemainingMonthly int `json:"remaining_monthly"`
}

// UsageLimiter enforces per-tenant daily and monthly call budgets.
// A denial is a routing signal, never an evaluation failure.
type UsageLimiter interface {
	CanProceed(tenantID string) Decision
	Record(tenantID string, tokenUsage int)
	Stats(tenantID string) UsageStats
}
