package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	domassets "github.com/TaylorDurden/rank-everything/internal/domain/assets"
	domtemplates "github.com/TaylorDurden/rank-everything/internal/domain/templates"
)

type AssetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) *AssetRepository { return &AssetRepository{db: db} }

func (r *AssetRepository) Get(ctx context.Context, tenant string, id domassets.AssetID) (*domassets.Asset, error) {
	const q = `
SELECT id, tenant_id, name, description, type, metadata, created_at
FROM assets
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var a domassets.Asset
	var metadata []byte
	if err := row.Scan(&a.ID, &a.TenantID, &a.Name, &a.Description, &a.Type, &metadata, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domassets.ErrNotFound
		}
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *AssetRepository) List(ctx context.Context, tenant string) ([]*domassets.Asset, error) {
	const q = `
SELECT id, tenant_id, name, description, type, metadata, created_at
FROM assets
WHERE tenant_id=$1 ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domassets.Asset
	for rows.Next() {
		var a domassets.Asset
		var metadata []byte
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Name, &a.Description, &a.Type, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository { return &TemplateRepository{db: db} }

func (r *TemplateRepository) Get(ctx context.Context, tenant string, id domtemplates.TemplateID) (*domtemplates.Template, error) {
	const q = `
SELECT id, tenant_id, name, asset_type, dimensions, created_at
FROM templates
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	var t domtemplates.Template
	var dims []byte
	if err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.AssetType, &dims, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domtemplates.ErrNotFound
		}
		return nil, err
	}
	if len(dims) > 0 {
		if err := json.Unmarshal(dims, &t.Dimensions); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context, tenant string) ([]*domtemplates.Template, error) {
	const q = `
SELECT id, tenant_id, name, asset_type, dimensions, created_at
FROM templates
WHERE tenant_id=$1 ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domtemplates.Template
	for rows.Next() {
		var t domtemplates.Template
		var dims []byte
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Name, &t.AssetType, &dims, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(dims) > 0 {
			if err := json.Unmarshal(dims, &t.Dimensions); err != nil {
				return nil, err
			}
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
