package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	manifestdomain "github.com/costmgmt/koku/internal/manifest/domain"
	"gorm.io/gorm"
)

type manifestRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) manifestdomain.Repository {
	return &manifestRepo{db: db}
}

func (r *manifestRepo) FindByAssembly(ctx context.Context, assemblyID string, providerID int64) (*manifestdomain.ReportManifest, error) {
	var manifest manifestdomain.ReportManifest
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND assembly_id = ?", providerID, assemblyID).
		First(&manifest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manifest, nil
}

func (r *manifestRepo) FindByID(ctx context.Context, id snowflake.ID) (*manifestdomain.ReportManifest, error) {
	var manifest manifestdomain.ReportManifest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&manifest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manifest, nil
}

func (r *manifestRepo) Create(ctx context.Context, manifest *manifestdomain.ReportManifest) error {
	return r.db.WithContext(ctx).Create(manifest).Error
}

func (r *manifestRepo) Save(ctx context.Context, manifest *manifestdomain.ReportManifest) error {
	return r.db.WithContext(ctx).Save(manifest).Error
}

func (r *manifestRepo) Delete(ctx context.Context, manifest *manifestdomain.ReportManifest) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&manifestdomain.ReportManifest{}, manifest.ID)
	return result.RowsAffected, result.Error
}
