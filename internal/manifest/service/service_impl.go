package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/costmgmt/koku/internal/clock"
	manifestdomain "github.com/costmgmt/koku/internal/manifest/domain"
	"github.com/costmgmt/koku/pkg/db"
	"go.uber.org/zap"
)

type service struct {
	repo  manifestdomain.Repository
	clock clock.Clock
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(
	repo manifestdomain.Repository,
	clk clock.Clock,
	genID *snowflake.Node,
	log *zap.Logger,
) manifestdomain.Service {
	return &service{
		repo:  repo,
		clock: clk,
		genID: genID,
		log:   log.Named("manifest"),
	}
}

func (s *service) Get(ctx context.Context, assemblyID string, providerID int64) (*manifestdomain.ReportManifest, error) {
	manifest, err := s.repo.FindByAssembly(ctx, assemblyID, providerID)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, manifestdomain.ErrNotFound
	}
	return manifest, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*manifestdomain.ReportManifest, error) {
	manifest, err := s.repo.FindByID(ctx, snowflake.ID(id))
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, manifestdomain.ErrNotFound
	}
	return manifest, nil
}

func (s *service) Add(ctx context.Context, req manifestdomain.AddRequest) (*manifestdomain.ReportManifest, error) {
	if err := validateAdd(req); err != nil {
		return nil, err
	}

	manifest := &manifestdomain.ReportManifest{
		ID:                 s.genID.Generate(),
		AssemblyID:         strings.TrimSpace(req.AssemblyID),
		ProviderID:         req.ProviderID,
		BillingPeriodStart: req.BillingPeriodStart.UTC(),
		NumTotalFiles:      req.NumTotalFiles,
	}

	if req.NumProcessedFiles != nil {
		manifest.NumProcessedFiles = *req.NumProcessedFiles
	}
	if manifest.NumProcessedFiles > manifest.NumTotalFiles {
		return nil, fmt.Errorf("%w: %d > %d", manifestdomain.ErrFilesExceeded,
			manifest.NumProcessedFiles, manifest.NumTotalFiles)
	}

	if req.ManifestCreationDatetime != nil {
		manifest.ManifestCreationDatetime = req.ManifestCreationDatetime.UTC()
	} else {
		manifest.ManifestCreationDatetime = s.clock.Now()
	}

	existing, err := s.repo.FindByAssembly(ctx, manifest.AssemblyID, manifest.ProviderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, manifestdomain.ErrConflict
	}

	if err := s.repo.Create(ctx, manifest); err != nil {
		// A concurrent ingestion job may have won the race since the
		// pre-check; map the unique-index failure to the same conflict.
		if db.IsDuplicateKeyErr(err) {
			return nil, manifestdomain.ErrConflict
		}
		return nil, err
	}

	s.log.Info("manifest registered",
		zap.String("assembly_id", manifest.AssemblyID),
		zap.Int64("provider_id", manifest.ProviderID),
		zap.Int("num_total_files", manifest.NumTotalFiles),
	)
	return manifest, nil
}

// MarkUpdated refreshes the updated timestamp in memory. The caller persists
// it with Commit as part of its own unit of work.
func (s *service) MarkUpdated(manifest *manifestdomain.ReportManifest) {
	manifest.ManifestUpdatedDatetime = s.clock.Now()
}

// MarkFileComplete records one finished report file. The processed counter
// can never pass the expected total.
func (s *service) MarkFileComplete(manifest *manifestdomain.ReportManifest) error {
	if manifest.NumProcessedFiles >= manifest.NumTotalFiles {
		return fmt.Errorf("%w: %d files expected", manifestdomain.ErrFilesExceeded, manifest.NumTotalFiles)
	}
	manifest.NumProcessedFiles++
	s.MarkUpdated(manifest)
	return nil
}

func (s *service) Delete(ctx context.Context, manifest *manifestdomain.ReportManifest) error {
	rows, err := s.repo.Delete(ctx, manifest)
	if err != nil {
		return err
	}
	if rows == 0 {
		return manifestdomain.ErrNotFound
	}
	return nil
}

func (s *service) Commit(ctx context.Context, manifest *manifestdomain.ReportManifest) error {
	return s.repo.Save(ctx, manifest)
}

func validateAdd(req manifestdomain.AddRequest) error {
	missing := func(field string) error {
		return fmt.Errorf("%w: missing %s", manifestdomain.ErrInvalidManifest, field)
	}
	if strings.TrimSpace(req.AssemblyID) == "" {
		return missing("assembly_id")
	}
	if req.ProviderID == 0 {
		return missing("provider_id")
	}
	if req.BillingPeriodStart.IsZero() {
		return missing("billing_period_start")
	}
	if req.NumTotalFiles <= 0 {
		return missing("num_total_files")
	}
	return nil
}
