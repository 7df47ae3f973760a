package templates

import "context"

// Repository port for template lookups
type Repository interface {
	Get(ctx context.Context, tenant string, id TemplateID) (*Template, error)
	List(ctx context.Context, tenant string) ([]*Template, error)
}
