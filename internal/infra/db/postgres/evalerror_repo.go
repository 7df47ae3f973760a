package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/TaylorDurden/rank-everything/internal/domain/evalerrors"
)

type EvalErrorRepository struct {
	db *sql.DB
}

func NewEvalErrorRepository(db *sql.DB) *EvalErrorRepository { return &EvalErrorRepository{db: db} }

func (r *EvalErrorRepository) Save(ctx context.Context, e *domain.EvalError) error {
	const q = `
INSERT INTO evaluation_errors
  (tenant_id, evaluation_id, asset_id, stage, message, raw_output, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		orDash(e.TenantID), e.EvaluationID, orDash(e.AssetID),
		orDash(e.Stage), msg, e.RawOutput, created,
	)
	return err
}

func (r *EvalErrorRepository) ListByEvaluation(ctx context.Context, tenant string, evaluationID string, limit int) ([]*domain.EvalError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, evaluation_id, asset_id, stage, message, raw_output, created_at
FROM evaluation_errors
WHERE tenant_id=$1 AND evaluation_id=$2
ORDER BY created_at DESC, id DESC
LIMIT $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, evaluationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.EvalError
	for rows.Next() {
		var e domain.EvalError
		if err := rows.Scan(&e.ID, &e.TenantID, &e.EvaluationID, &e.AssetID, &e.Stage, &e.Message, &e.RawOutput, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
