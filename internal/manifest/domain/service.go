package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("manifest_not_found")
	ErrConflict        = errors.New("manifest_exists")
	ErrInvalidManifest = errors.New("invalid_manifest")
	ErrFilesExceeded   = errors.New("processed_files_exceed_total")
)

// AddRequest carries the fields for registering a new report batch.
// NumProcessedFiles and ManifestCreationDatetime are optional; the service
// fills in defaults.
type AddRequest struct {
	AssemblyID               string     `json:"assembly_id"`
	ProviderID               int64      `json:"provider_id"`
	BillingPeriodStart       time.Time  `json:"billing_period_start"`
	NumTotalFiles            int        `json:"num_total_files"`
	NumProcessedFiles        *int       `json:"num_processed_files,omitempty"`
	ManifestCreationDatetime *time.Time `json:"manifest_creation_datetime,omitempty"`
}

// Service is the report manifest store. Mutating calls other than Add and
// Delete change the manifest in memory only; Commit persists them. This keeps
// counter updates inside the caller's unit of work.
type Service interface {
	Get(ctx context.Context, assemblyID string, providerID int64) (*ReportManifest, error)
	GetByID(ctx context.Context, id int64) (*ReportManifest, error)
	Add(ctx context.Context, req AddRequest) (*ReportManifest, error)
	MarkUpdated(manifest *ReportManifest)
	MarkFileComplete(manifest *ReportManifest) error
	Delete(ctx context.Context, manifest *ReportManifest) error
	Commit(ctx context.Context, manifest *ReportManifest) error
}
