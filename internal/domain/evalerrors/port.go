package evalerrors

import "context"

// Repository defines persistence for evaluation error records
type Repository interface {
	Save(ctx context.Context, e *EvalError) error
	ListByEvaluation(ctx context.Context, tenant string, evaluationID string, limit int) ([]*EvalError, error)
}
