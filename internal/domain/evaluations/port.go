package evaluations

import (
	"context"
	"time"
)

// Repository port (interface for persistence)
type Repository interface {
	Create(ctx context.Context, e *Evaluation) error
	Get(ctx context.Context, tenant string, id EvaluationID) (*Evaluation, error)
	List(ctx context.Context, tenant string) ([]*Evaluation, error)
	UpdateStatus(ctx context.Context, id EvaluationID, status Status, progress int) error
	UpdateResult(ctx context.Context, id EvaluationID, status Status, progress int, results *AnalysisResult, reportURL string) error
	// LatestCompleted returns the most recent completed evaluation for the
	// asset, skipping excludeID. ErrNotFound when there is no history.
	LatestCompleted(ctx context.Context, assetID string, excludeID EvaluationID) (*Evaluation, error)
}

// ReportStore port (interface for rendered report storage)
type ReportStore interface {
	UploadReport(ctx context.Context, tenant string, id EvaluationID, markdown string) (string, error)
}

// Renderer port turns a validated result into the report text.
type Renderer interface {
	Render(r *AnalysisResult, assetName, templateName string, generatedAt time.Time) string
}
