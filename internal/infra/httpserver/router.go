package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appevals "github.com/TaylorDurden/rank-everything/internal/application/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/assets"
	"github.com/TaylorDurden/rank-everything/internal/domain/evalerrors"
	domain "github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
	"github.com/TaylorDurden/rank-everything/internal/middleware"
)

type Router struct {
	svc         *appevals.Service
	assets      assets.Repository
	templates   templates.Repository
	evaluations domain.Repository
	errors      evalerrors.Repository
}

func NewRouter(svc *appevals.Service, assetRepo assets.Repository, templateRepo templates.Repository, evalRepo domain.Repository, errorRepo evalerrors.Repository) http.Handler {
	r := &Router{svc: svc, assets: assetRepo, templates: templateRepo, evaluations: evalRepo, errors: errorRepo}
	mux := chi.NewRouter()

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/ai/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/ai/usage", r.wrap(r.handleUsage))
		rt.Delete("/ai/cache", r.wrap(r.handleClearCache))

		rt.Post("/evaluations", r.wrap(r.handleCreateEvaluation))
		rt.Get("/evaluations", r.wrap(r.handleListEvaluations))
		rt.Get("/evaluations/{id}", r.wrap(r.handleGetEvaluation))
		rt.Get("/evaluations/{id}/errors", r.wrap(r.handleListEvaluationErrors))

		rt.Get("/assets", r.wrap(r.handleListAssets))
		rt.Get("/assets/{id}", r.wrap(r.handleGetAsset))
		rt.Get("/templates", r.wrap(r.handleListTemplates))
		rt.Get("/templates/{id}", r.wrap(r.handleGetTemplate))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks validation failures for the 400 mapping
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows),
				errors.Is(err, assets.ErrNotFound),
				errors.Is(err, templates.ErrNotFound),
				errors.Is(err, domain.ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.As(err, &badRequestError{}):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/{tenant}/ai/analyze
// Body: {"asset_id": "...", "template_id": "...", "evaluation_id": "..."}
// Without evaluation_id the analysis runs synchronously and the result is
// returned inline; with it, the job is advanced to processing and the
// pipeline finishes in the background.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		AssetID      string `json:"asset_id"`
		TemplateID   string `json:"template_id"`
		EvaluationID string `json:"evaluation_id,omitempty"`
		UserID       string `json:"user_id,omitempty"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{msg: err.Error()}
	}
	if body.AssetID == "" || body.TemplateID == "" {
		return badRequestError{msg: "asset_id and template_id are required"}
	}
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{msg: err.Error()}
	}
	if err := middleware.ValidateEntityID("asset_id", body.AssetID); err != nil {
		return badRequestError{msg: err.Error()}
	}
	if err := middleware.ValidateEntityID("template_id", body.TemplateID); err != nil {
		return badRequestError{msg: err.Error()}
	}

	middleware.IncrementEvaluations()
	resp, err := r.svc.Analyze(req.Context(), appevals.AnalyzeCommand{
		TenantID:     tenant,
		UserID:       body.UserID,
		AssetID:      body.AssetID,
		TemplateID:   body.TemplateID,
		EvaluationID: body.EvaluationID,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, resp)
}

// GET /v1/{tenant}/ai/usage
func (r *Router) handleUsage(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	return writeJSON(w, r.svc.UsageStats(tenant))
}

// DELETE /v1/{tenant}/ai/cache?asset_id=&template_id=
func (r *Router) handleClearCache(w http.ResponseWriter, req *http.Request) error {
	assetID := req.URL.Query().Get("asset_id")
	templateID := req.URL.Query().Get("template_id")
	if assetID == "" || templateID == "" {
		return badRequestError{msg: "asset_id and template_id are required"}
	}
	r.svc.ClearCache(assetID, templateID)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/{tenant}/evaluations
func (r *Router) handleCreateEvaluation(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		AssetID    string `json:"asset_id"`
		TemplateID string `json:"template_id"`
		CreatedBy  string `json:"created_by,omitempty"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{msg: err.Error()}
	}
	if body.AssetID == "" || body.TemplateID == "" {
		return badRequestError{msg: "asset_id and template_id are required"}
	}

	// the asset and template must exist before a job is minted
	if _, err := r.assets.Get(req.Context(), tenant, assets.AssetID(body.AssetID)); err != nil {
		return err
	}
	if _, err := r.templates.Get(req.Context(), tenant, templates.TemplateID(body.TemplateID)); err != nil {
		return err
	}

	createdBy := middleware.SanitizeString(body.CreatedBy)
	if createdBy == "" {
		createdBy = "api"
	}
	now := time.Now()
	e := &domain.Evaluation{
		ID:         domain.EvaluationID(uuid.New().String()),
		AssetID:    body.AssetID,
		TemplateID: body.TemplateID,
		TenantID:   tenant,
		CreatedBy:  createdBy,
		Status:     domain.StatusDraft,
		Progress:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.evaluations.Create(req.Context(), e); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(e)
}

// GET /v1/{tenant}/evaluations
func (r *Router) handleListEvaluations(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	list, err := r.evaluations.List(req.Context(), tenant)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/evaluations/{id}
func (r *Router) handleGetEvaluation(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	e, err := r.evaluations.Get(req.Context(), tenant, domain.EvaluationID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, e)
}

// GET /v1/{tenant}/evaluations/{id}/errors?limit=
// Degradation records for one job: upstream failures with their message,
// parse failures with the raw model output.
func (r *Router) handleListEvaluationErrors(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateEntityID("evaluation_id", id); err != nil {
		return badRequestError{msg: err.Error()}
	}
	if r.errors == nil {
		return writeJSON(w, []*evalerrors.EvalError{})
	}

	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.errors.ListByEvaluation(req.Context(), tenant, id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*evalerrors.EvalError{}
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/assets
func (r *Router) handleListAssets(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	list, err := r.assets.List(req.Context(), tenant)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/assets/{id}
func (r *Router) handleGetAsset(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	a, err := r.assets.Get(req.Context(), tenant, assets.AssetID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}

// GET /v1/{tenant}/templates
func (r *Router) handleListTemplates(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	list, err := r.templates.List(req.Context(), tenant)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/templates/{id}
func (r *Router) handleGetTemplate(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	t, err := r.templates.Get(req.Context(), tenant, templates.TemplateID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, t)
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
