package mysql

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
VALUES (?,?,?,?,?,?,?);
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
		stringOrDash(e.TenantID), e.EvaluationID, stringOrDash(e.AssetID),
		stringOrDash(e.Stage), msg, e.RawOutput, created,
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
WHERE tenant_id=? AND evaluation_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
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
