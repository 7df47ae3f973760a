package evaluations

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chainguard-dev/clog"

	"github.com/TaylorDurden/rank-everything/internal/application"
	domai "github.com/TaylorDurden/rank-everything/internal/domain/ai"
	"github.com/TaylorDurden/rank-everything/internal/domain/assets"
	"github.com/TaylorDurden/rank-everything/internal/domain/evalerrors"
	domain "github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/notifications"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
)

// Service implements the evaluation use-cases. It drives the job state
// machine: cache lookup, rate-limit check, model gateway or fallback,
// result persistence and notification. Designed for concurrent use; the
// shared cache and limiter guard their own state.
type Service struct {
	Assets      assets.Repository
	Templates   templates.Repository
	Evaluations domain.Repository
	Errors      evalerrors.Repository // optional degradation log

	Client   domai.Client // nil when no model credential is configured
	Cache    domai.ResultCache
	Limiter  domai.UsageLimiter
	Renderer domain.Renderer
	Reports  domain.ReportStore     // optional
	Notifier notifications.Notifier // optional

	Clock application.Clock

	inflightMu sync.Mutex
	inflight   map[domain.EvaluationID]struct{}
}

// AnalyzeCommand asks for one evaluation of an asset against a template.
// EvaluationID empty means synchronous: the result comes back directly.
// EvaluationID set means asynchronous: the job record is advanced to
// processing and the pipeline runs in the background.
type AnalyzeCommand struct {
	TenantID     string
	UserID       string
	AssetID      string
	TemplateID   string
	EvaluationID string
}

// AnalyzeResponse is the immediate answer to an analyze request.
type AnalyzeResponse struct {
	Status       string                 `json:"status,omitempty"`
	EvaluationID string                 `json:"evaluation_id,omitempty"`
	Result       *domain.AnalysisResult `json:"result,omitempty"`
}

// Analyze runs the evaluation pipeline. A missing asset or template is the
// only error surfaced to the caller; everything past the rate-limit check
// degrades to the fallback result instead of failing.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*AnalyzeResponse, error) {
	asset, err := s.Assets.Get(ctx, cmd.TenantID, assets.AssetID(cmd.AssetID))
	if err != nil {
		return nil, err
	}
	template, err := s.Templates.Get(ctx, cmd.TenantID, templates.TemplateID(cmd.TemplateID))
	if err != nil {
		return nil, err
	}

	if cmd.EvaluationID == "" {
		result := s.runPipeline(ctx, cmd, asset, template)
		return &AnalyzeResponse{Result: result}, nil
	}

	id := domain.EvaluationID(cmd.EvaluationID)
	if err := s.Evaluations.UpdateStatus(ctx, id, domain.StatusProcessing, 10); err != nil {
		return nil, fmt.Errorf("mark evaluation processing: %w", err)
	}

	// Single writer per job: a duplicate request while the pipeline is
	// already running is acknowledged but not re-dispatched.
	if s.claim(id) {
		// Run until done in the background; the request context is gone by then.
		go func() {
			defer s.release(id)
			s.complete(context.Background(), cmd, asset, template)
		}()
	}

	return &AnalyzeResponse{Status: string(domain.StatusProcessing), EvaluationID: cmd.EvaluationID}, nil
}

func (s *Service) claim(id domain.EvaluationID) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[domain.EvaluationID]struct{})
	}
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Service) release(id domain.EvaluationID) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, id)
}

// UsageStats exposes the tenant's remaining AI call budget.
func (s *Service) UsageStats(tenantID string) domai.UsageStats {
	return s.Limiter.Stats(tenantID)
}

// ClearCache drops cached analysis results for one asset/template pair.
func (s *Service) ClearCache(assetID, templateID string) {
	if s.Cache != nil {
		s.Cache.Clear(assetID, templateID)
	}
}

// complete finishes an asynchronous job: pipeline, report upload, final
// persistence write, notification. Only the persistence write failing
// marks the job failed; a degraded pipeline still completes.
func (s *Service) complete(ctx context.Context, cmd AnalyzeCommand, asset *assets.Asset, template *templates.Template) {
	log := clog.FromContext(ctx).With(
		"tenant", cmd.TenantID,
		"evaluation", cmd.EvaluationID,
		"asset", cmd.AssetID,
	)
	id := domain.EvaluationID(cmd.EvaluationID)

	result := s.runPipeline(ctx, cmd, asset, template)

	var reportURL string
	if s.Reports != nil {
		url, err := s.Reports.UploadReport(ctx, cmd.TenantID, id, result.ReportMarkdown)
		if err != nil {
			log.Warnf("report upload failed: %v", err)
		} else {
			reportURL = url
		}
	}

	if err := s.Evaluations.UpdateResult(ctx, id, domain.StatusCompleted, 100, result, reportURL); err != nil {
		log.Errorf("persisting evaluation result failed: %v", err)
		s.recordError(ctx, cmd, "persist", err.Error(), "")
		if err := s.Evaluations.UpdateStatus(ctx, id, domain.StatusFailed, 0); err != nil {
			log.Errorf("marking evaluation failed also failed: %v", err)
		}
		return
	}
	log.Infof("evaluation completed, overall score %d", result.OverallScore)

	if s.Notifier != nil {
		err := s.Notifier.Send(ctx, notifications.Notification{
			Type:      notifications.TypeEvaluationCompleted,
			TenantID:  cmd.TenantID,
			UserID:    cmd.UserID,
			AssetName: asset.Name,
			ReportURL: reportURL,
		})
		if err != nil {
			log.Warnf("notification failed: %v", err)
		}
	}
}

// runPipeline produces an AnalysisResult, always. Cache hit short-circuits;
// a denied limiter, missing client, upstream failure or parse failure all
// route to the deterministic fallback.
func (s *Service) runPipeline(ctx context.Context, cmd AnalyzeCommand, asset *assets.Asset, template *templates.Template) *domain.AnalysisResult {
	log := clog.FromContext(ctx).With(
		"tenant", cmd.TenantID,
		"asset", cmd.AssetID,
		"template", cmd.TemplateID,
	)

	fingerprint := domai.MetadataFingerprint(asset.Metadata)
	if s.Cache != nil {
		if cached, ok := s.Cache.Lookup(cmd.AssetID, cmd.TemplateID, fingerprint); ok {
			log.Infof("analysis cache hit")
			return cached
		}
	}

	if s.Client == nil {
		log.Infof("no model credential configured, using fallback analysis")
		return s.fallbackResult(asset, template)
	}

	if decision := s.Limiter.CanProceed(cmd.TenantID); !decision.Allowed {
		log.Warnf("rate limited, using fallback analysis: %s", decision.Reason)
		return s.fallbackResult(asset, template)
	}

	previous := s.previousEvaluation(ctx, cmd)

	result, err := s.Client.Evaluate(ctx, asset, template, previous)
	if err != nil {
		log.Warnf("model evaluation degraded to fallback: %v", err)
		s.recordDegradation(ctx, cmd, err)
		return s.fallbackResult(asset, template)
	}
	s.Limiter.Record(cmd.TenantID, result.TokenUsage)

	result.ReportMarkdown = s.Renderer.Render(result, asset.Name, template.Name, s.Clock.Now())

	if s.Cache != nil {
		s.Cache.Store(cmd.AssetID, cmd.TemplateID, fingerprint, result, result.TokenUsage)
	}
	return result
}

// previousEvaluation fetches the most recent completed evaluation for the
// asset, excluding the current job, for trend and comparison narrative.
// History is optional; lookup errors are only logged.
func (s *Service) previousEvaluation(ctx context.Context, cmd AnalyzeCommand) *domain.Evaluation {
	previous, err := s.Evaluations.LatestCompleted(ctx, cmd.AssetID, domain.EvaluationID(cmd.EvaluationID))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			clog.FromContext(ctx).Warnf("previous evaluation lookup failed: %v", err)
		}
		return nil
	}
	return previous
}

func (s *Service) fallbackResult(asset *assets.Asset, template *templates.Template) *domain.AnalysisResult {
	result := Fallback(template)
	result.ReportMarkdown = s.Renderer.Render(result, asset.Name, template.Name, s.Clock.Now())
	return result
}

// recordDegradation persists the failure detail, including raw model
// output on parse failures, for later diagnosis.
func (s *Service) recordDegradation(ctx context.Context, cmd AnalyzeCommand, err error) {
	stage := "upstream"
	raw := ""
	var pf *domai.ParseFailure
	if errors.As(err, &pf) {
		stage = "parse"
		raw = pf.Raw
	}
	s.recordError(ctx, cmd, stage, err.Error(), raw)
}

func (s *Service) recordError(ctx context.Context, cmd AnalyzeCommand, stage, message, raw string) {
	if s.Errors == nil {
		return
	}
	e := &evalerrors.EvalError{
		TenantID:     cmd.TenantID,
		EvaluationID: cmd.EvaluationID,
		AssetID:      cmd.AssetID,
		Stage:        stage,
		Message:      message,
		RawOutput:    raw,
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Errors.Save(ctx, e); err != nil {
		clog.FromContext(ctx).Warnf("saving evaluation error record failed: %v", err)
	}
}
