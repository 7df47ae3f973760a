package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
)

type EvaluationRepository struct {
	db *sql.DB
}

func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts a fresh evaluation row (draft, progress 0)
func (r *EvaluationRepository) Create(ctx context.Context, e *domain.Evaluation) error {
	const q = `
INSERT INTO evaluations
(id, asset_id, template_id, tenant_id, created_by, status, progress, results, report_url, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?);
`
	now := e.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	var results sql.NullString
	if e.Results != nil {
		results = sql.NullString{String: marshalJSON(e.Results), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.AssetID, e.TemplateID, stringOrDash(e.TenantID), stringOrDash(e.CreatedBy),
		e.Status, e.Progress, results, e.ReportURL, now, now,
	)
	return err
}

// Get by ID + Tenant
func (r *EvaluationRepository) Get(ctx context.Context, tenant string, id domain.EvaluationID) (*domain.Evaluation, error) {
	const q = selectEvaluation + ` WHERE tenant_id=? AND id=? LIMIT 1;`
	return scanEvaluation(r.db.QueryRowContext(ctx, q, tenant, id))
}

// List evaluations per tenant, newest first
func (r *EvaluationRepository) List(ctx context.Context, tenant string) ([]*domain.Evaluation, error) {
	const q = selectEvaluation + ` WHERE tenant_id=? ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateStatus moves the job through its state machine
func (r *EvaluationRepository) UpdateStatus(ctx context.Context, id domain.EvaluationID, status domain.Status, progress int) error {
	const q = `UPDATE evaluations SET status=?, progress=?, updated_at=? WHERE id=?;`
	res, err := r.db.ExecContext(ctx, q, status, progress, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateResult attaches the final analysis to a completed (or failed) job
func (r *EvaluationRepository) UpdateResult(ctx context.Context, id domain.EvaluationID, status domain.Status, progress int, results *domain.AnalysisResult, reportURL string) error {
	const q = `UPDATE evaluations SET status=?, progress=?, results=?, report_url=?, updated_at=? WHERE id=?;`
	var encoded sql.NullString
	if results != nil {
		encoded = sql.NullString{String: marshalJSON(results), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q, status, progress, encoded, reportURL, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// LatestCompleted finds the newest completed evaluation of the asset,
// skipping excludeID (the currently running job)
func (r *EvaluationRepository) LatestCompleted(ctx context.Context, assetID string, excludeID domain.EvaluationID) (*domain.Evaluation, error) {
	const q = selectEvaluation + `
 WHERE asset_id=? AND status=? AND id<>?
 ORDER BY updated_at DESC LIMIT 1;`
	return scanEvaluation(r.db.QueryRowContext(ctx, q, assetID, domain.StatusCompleted, excludeID))
}

const selectEvaluation = `
SELECT id, asset_id, template_id, tenant_id, created_by, status, progress, results, report_url, created_at, updated_at
FROM evaluations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (*domain.Evaluation, error) {
	var e domain.Evaluation
	var results, reportURL sql.NullString
	if err := row.Scan(
		&e.ID, &e.AssetID, &e.TemplateID, &e.TenantID, &e.CreatedBy,
		&e.Status, &e.Progress, &results, &reportURL, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if results.Valid {
		var r domain.AnalysisResult
		if err := unmarshalJSON(results.String, &r); err != nil {
			return nil, err
		}
		e.Results = &r
	}
	e.ReportURL = reportURL.String
	return &e, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil // driver cannot report; assume the update landed
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
