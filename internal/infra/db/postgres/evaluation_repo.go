package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
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

func (r *EvaluationRepository) Create(ctx context.Context, e *domain.Evaluation) error {
	const q = `
INSERT INTO evaluations
(id, asset_id, template_id, tenant_id, created_by, status, progress, results, report_url, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`
	now := e.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	results, err := encodeResults(e.Results)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		e.ID, e.AssetID, e.TemplateID, e.TenantID, e.CreatedBy,
		e.Status, e.Progress, results, e.ReportURL, now, now,
	)
	return err
}

func (r *EvaluationRepository) Get(ctx context.Context, tenant string, id domain.EvaluationID) (*domain.Evaluation, error) {
	const q = selectEvaluation + ` WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	return scanEvaluation(r.db.QueryRowContext(ctx, q, tenant, id))
}

func (r *EvaluationRepository) List(ctx context.Context, tenant string) ([]*domain.Evaluation, error) {
	const q = selectEvaluation + ` WHERE tenant_id=$1 ORDER BY created_at DESC;`
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

func (r *EvaluationRepository) UpdateStatus(ctx context.Context, id domain.EvaluationID, status domain.Status, progress int) error {
	const q = `UPDATE evaluations SET status=$1, progress=$2, updated_at=$3 WHERE id=$4;`
	res, err := r.db.ExecContext(ctx, q, status, progress, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *EvaluationRepository) UpdateResult(ctx context.Context, id domain.EvaluationID, status domain.Status, progress int, results *domain.AnalysisResult, reportURL string) error {
	const q = `UPDATE evaluations SET status=$1, progress=$2, results=$3, report_url=$4, updated_at=$5 WHERE id=$6;`
	encoded, err := encodeResults(results)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, status, progress, encoded, reportURL, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *EvaluationRepository) LatestCompleted(ctx context.Context, assetID string, excludeID domain.EvaluationID) (*domain.Evaluation, error) {
	const q = selectEvaluation + `
 WHERE asset_id=$1 AND status=$2 AND id<>$3
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
	var results []byte
	var reportURL sql.NullString
	if err := row.Scan(
		&e.ID, &e.AssetID, &e.TemplateID, &e.TenantID, &e.CreatedBy,
		&e.Status, &e.Progress, &results, &reportURL, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(results) > 0 {
		var r domain.AnalysisResult
		if err := json.Unmarshal(results, &r); err != nil {
			return nil, err
		}
		e.Results = &r
	}
	e.ReportURL = reportURL.String
	return &e, nil
}

func encodeResults(r *domain.AnalysisResult) (any, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
