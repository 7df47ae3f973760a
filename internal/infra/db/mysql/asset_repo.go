package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/TaylorDurden/rank-everything/internal/domain/assets"
)

type AssetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Get by ID + Tenant
func (r *AssetRepository) Get(ctx context.Context, tenant string, id domain.AssetID) (*domain.Asset, error) {
	const q = `
SELECT id, tenant_id, name, description, type, metadata, created_at
FROM assets
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var a domain.Asset
	var metadata string
	if err := row.Scan(&a.ID, &a.TenantID, &a.Name, &a.Description, &a.Type, &metadata, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalJSON(metadata, &a.Metadata); err != nil {
		return nil, err
	}
	return &a, nil
}

// List assets per tenant
func (r *AssetRepository) List(ctx context.Context, tenant string) ([]*domain.Asset, error) {
	const q = `
SELECT id, tenant_id, name, description, type, metadata, created_at
FROM assets
WHERE tenant_id=? ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Asset
	for rows.Next() {
		var a domain.Asset
		var metadata string
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Name, &a.Description, &a.Type, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(metadata, &a.Metadata); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
