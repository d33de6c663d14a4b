package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("provider_not_found")

// Repository is the persistence boundary for registered providers.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Provider, error)
	List(ctx context.Context) ([]Provider, error)
	Create(ctx context.Context, provider *Provider) error
}
