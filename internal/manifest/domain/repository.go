package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository is the persistence boundary for manifests. Lookup methods
// return (nil, nil) when no row matches.
type Repository interface {
	FindByAssembly(ctx context.Context, assemblyID string, providerID int64) (*ReportManifest, error)
	FindByID(ctx context.Context, id snowflake.ID) (*ReportManifest, error)
	Create(ctx context.Context, manifest *ReportManifest) error
	Save(ctx context.Context, manifest *ReportManifest) error
	Delete(ctx context.Context, manifest *ReportManifest) (int64, error)
}
