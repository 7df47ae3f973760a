package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TaylorDurden/rank-everything/internal/application"
	appevals "github.com/TaylorDurden/rank-everything/internal/application/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/assets"
	domain "github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
	"github.com/TaylorDurden/rank-everything/internal/domain/templates"
	"github.com/TaylorDurden/rank-everything/internal/infra/cache"
	"github.com/TaylorDurden/rank-everything/internal/infra/httpserver"
	"github.com/TaylorDurden/rank-everything/internal/infra/report"
	"github.com/TaylorDurden/rank-everything/internal/infra/usage"
)

type assetStore struct{ byID map[assets.AssetID]*assets.Asset }

func (s *assetStore) Get(_ context.Context, _ string, id assets.AssetID) (*assets.Asset, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, assets.ErrNotFound
}

func (s *assetStore) List(context.Context, string) ([]*assets.Asset, error) {
	var out []*assets.Asset
	for _, a := range s.byID {
		out = append(out, a)
	}
	return out, nil
}

type templateStore struct{ byID map[templates.TemplateID]*templates.Template }

func (s *templateStore) Get(_ context.Context, _ string, id templates.TemplateID) (*templates.Template, error) {
	if t, ok := s.byID[id]; ok {
		return t, nil
	}
	return nil, templates.ErrNotFound
}

func (s *templateStore) List(context.Context, string) ([]*templates.Template, error) {
	var out []*templates.Template
	for _, t := range s.byID {
		out = append(out, t)
	}
	return out, nil
}

type evalStore struct {
	mu   sync.Mutex
	byID map[domain.EvaluationID]*domain.Evaluation
}

func (s *evalStore) Create(_ context.Context, e *domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[e.ID] = e
	return nil
}

func (s *evalStore) Get(_ context.Context, _ string, id domain.EvaluationID) (*domain.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (s *evalStore) List(context.Context, string) ([]*domain.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Evaluation
	for _, e := range s.byID {
		out = append(out, e)
	}
	return out, nil
}

func (s *evalStore) UpdateStatus(_ context.Context, id domain.EvaluationID, status domain.Status, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		e.Status = status
		e.Progress = progress
	}
	return nil
}

func (s *evalStore) UpdateResult(_ context.Context, id domain.EvaluationID, status domain.Status, progress int, results *domain.AnalysisResult, reportURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		e.Status = status
		e.Progress = progress
		e.Results = results
		e.ReportURL = reportURL
	}
	return nil
}

func (s *evalStore) LatestCompleted(context.Context, string, domain.EvaluationID) (*domain.Evaluation, error) {
	return nil, domain.ErrNotFound
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	assetRepo := &assetStore{byID: map[assets.AssetID]*assets.Asset{
		"asset-1": {ID: "asset-1", TenantID: "acme", Name: "Corporate Site", Type: "website"},
	}}
	templateRepo := &templateStore{byID: map[templates.TemplateID]*templates.Template{
		"tpl-1": {ID: "tpl-1", TenantID: "acme", Name: "Website Audit", AssetType: "website",
			Dimensions: []templates.Dimension{{Key: "performance", Weight: 1}}},
	}}
	evalRepo := &evalStore{byID: map[domain.EvaluationID]*domain.Evaluation{}}

	svc := &appevals.Service{
		Assets:      assetRepo,
		Templates:   templateRepo,
		Evaluations: evalRepo,
		Cache:       cache.New(time.Hour, 100),
		Limiter:     usage.NewWithClock(50, 1000, time.Now),
		Renderer:    report.Markdown{},
		Clock:       application.SystemClock{},
	}

	srv := httptest.NewServer(httpserver.NewRouter(svc, assetRepo, templateRepo, evalRepo, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeEndpointSyncFallback(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/acme/ai/analyze", "application/json",
		strings.NewReader(`{"asset_id": "asset-1", "template_id": "tpl-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Result *domain.AnalysisResult `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Result)
	require.Equal(t, 75, body.Result.OverallScore)
}

func TestAnalyzeEndpointUnknownAsset(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/acme/ai/analyze", "application/json",
		strings.NewReader(`{"asset_id": "nope", "template_id": "tpl-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyzeEndpointMissingFields(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/acme/ai/analyze", "application/json",
		strings.NewReader(`{"asset_id": "asset-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsageEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/acme/ai/usage")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		DailyLimit     int `json:"daily_limit"`
		RemainingDaily int `json:"remaining_daily"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 50, stats.DailyLimit)
	require.Equal(t, 50, stats.RemainingDaily)
}

func TestClearCacheEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete,
		srv.URL+"/v1/acme/ai/cache?asset_id=asset-1&template_id=tpl-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// missing query params
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/v1/acme/ai/cache", nil)
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestEvaluationLifecycleEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/acme/evaluations", "application/json",
		strings.NewReader(`{"asset_id": "asset-1", "template_id": "tpl-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Evaluation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, domain.StatusDraft, created.Status)
	require.Equal(t, 0, created.Progress)

	getResp, err := http.Get(srv.URL + "/v1/acme/evaluations/" + string(created.ID))
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	missing, err := http.Get(srv.URL + "/v1/acme/evaluations/no-such-id")
	require.NoError(t, err)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestEvaluationErrorsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// no error log configured still answers with an empty list
	resp, err := http.Get(srv.URL + "/v1/acme/evaluations/eval-1/errors")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Empty(t, list)

	bad, err := http.Get(srv.URL + "/v1/acme/evaluations/bad%20id/errors")
	require.NoError(t, err)
	defer bad.Body.Close()
	require.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestCreateEvaluationRejectsUnknownTemplate(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/acme/evaluations", "application/json",
		strings.NewReader(`{"asset_id": "asset-1", "template_id": "nope"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAssetAndTemplateReadEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/acme/assets/asset-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var a assets.Asset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	require.Equal(t, "Corporate Site", a.Name)

	tplResp, err := http.Get(srv.URL + "/v1/acme/templates/tpl-1")
	require.NoError(t, err)
	defer tplResp.Body.Close()
	require.Equal(t, http.StatusOK, tplResp.StatusCode)

	missing, err := http.Get(srv.URL + "/v1/acme/templates/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}
