package repository

import (
	"context"
	"errors"

	providerdomain "github.com/costmgmt/koku/internal/provider/domain"
	"gorm.io/gorm"
)

type providerRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) providerdomain.Repository {
	return &providerRepo{db: db}
}

func (r *providerRepo) FindByID(ctx context.Context, id int64) (*providerdomain.Provider, error) {
	var provider providerdomain.Provider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, providerdomain.ErrNotFound
		}
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepo) List(ctx context.Context) ([]providerdomain.Provider, error) {
	var providers []providerdomain.Provider
	err := r.db.WithContext(ctx).Order("id").Find(&providers).Error
	return providers, err
}

func (r *providerRepo) Create(ctx context.Context, provider *providerdomain.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}
