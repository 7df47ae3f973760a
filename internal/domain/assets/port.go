package assets

import "context"

// Repository port for asset lookups
type Repository interface {
	Get(ctx context.Context, tenant string, id AssetID) (*Asset, error)
	List(ctx context.Context, tenant string) ([]*Asset, error)
}
