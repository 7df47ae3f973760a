package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/TaylorDurden/rank-everything/internal/domain/templates"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Get by ID + Tenant
func (r *TemplateRepository) Get(ctx context.Context, tenant string, id domain.TemplateID) (*domain.Template, error) {
	const q = `
SELECT id, tenant_id, name, asset_type, dimensions, created_at
FROM templates
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var t domain.Template
	var dims string
	if err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.AssetType, &dims, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalJSON(dims, &t.Dimensions); err != nil {
		return nil, err
	}
	return &t, nil
}

// List templates per tenant
func (r *TemplateRepository) List(ctx context.Context, tenant string) ([]*domain.Template, error) {
	const q = `
SELECT id, tenant_id, name, asset_type, dimensions, created_at
FROM templates
WHERE tenant_id=? ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Template
	for rows.Next() {
		var t domain.Template
		var dims string
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.AssetType, &dims, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(dims, &t.Dimensions); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
