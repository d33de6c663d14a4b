package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/costmgmt/koku/internal/clock"
	manifestdomain "github.com/costmgmt/koku/internal/manifest/domain"
	"github.com/costmgmt/koku/internal/manifest/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2019, 2, 15, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (manifestdomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&manifestdomain.ReportManifest{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(fixedNow)
	svc := NewService(repository.Provide(db), clk, node, zap.NewNop())
	return svc, db, clk
}

func addRequest() manifestdomain.AddRequest {
	return manifestdomain.AddRequest{
		AssemblyID:         "9b5f3a2e-ingest-01",
		ProviderID:         1,
		BillingPeriodStart: time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
		NumTotalFiles:      3,
	}
}

func TestAdd_DefaultsAndRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Add(ctx, addRequest())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 0, created.NumProcessedFiles)
	assert.Equal(t, fixedNow, created.ManifestCreationDatetime)

	got, err := svc.Get(ctx, "9b5f3a2e-ingest-01", 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 3, got.NumTotalFiles)

	byID, err := svc.GetByID(ctx, int64(created.ID))
	require.NoError(t, err)
	assert.Equal(t, got.AssemblyID, byID.AssemblyID)
}

func TestAdd_ExplicitOptionalFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	processed := 2
	creation := time.Date(2019, 2, 1, 4, 0, 0, 0, time.UTC)
	req := addRequest()
	req.NumProcessedFiles = &processed
	req.ManifestCreationDatetime = &creation

	created, err := svc.Add(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, created.NumProcessedFiles)
	assert.Equal(t, creation, created.ManifestCreationDatetime)
}

func TestAdd_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*manifestdomain.AddRequest)
	}{
		{"missing assembly_id", func(r *manifestdomain.AddRequest) { r.AssemblyID = "  " }},
		{"missing provider_id", func(r *manifestdomain.AddRequest) { r.ProviderID = 0 }},
		{"missing billing_period_start", func(r *manifestdomain.AddRequest) { r.BillingPeriodStart = time.Time{} }},
		{"missing num_total_files", func(r *manifestdomain.AddRequest) { r.NumTotalFiles = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := addRequest()
			tt.mutate(&req)
			_, err := svc.Add(ctx, req)
			assert.ErrorIs(t, err, manifestdomain.ErrInvalidManifest)
		})
	}

	t.Run("processed above total", func(t *testing.T) {
		processed := 5
		req := addRequest()
		req.NumProcessedFiles = &processed
		_, err := svc.Add(ctx, req)
		assert.ErrorIs(t, err, manifestdomain.ErrFilesExceeded)
	})
}

func TestAdd_Conflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, addRequest())
	require.NoError(t, err)

	_, err = svc.Add(ctx, addRequest())
	assert.ErrorIs(t, err, manifestdomain.ErrConflict)

	// Same assembly under another provider is a distinct batch.
	other := addRequest()
	other.ProviderID = 2
	_, err = svc.Add(ctx, other)
	assert.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, manifestdomain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), 424242)
	assert.ErrorIs(t, err, manifestdomain.ErrNotFound)
}

func TestMarkFileComplete_StopsAtTotal(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	manifest, err := svc.Add(ctx, addRequest())
	require.NoError(t, err)

	for i := 1; i <= manifest.NumTotalFiles; i++ {
		clk.Advance(time.Minute)
		require.NoError(t, svc.MarkFileComplete(manifest))
		assert.Equal(t, i, manifest.NumProcessedFiles)
		assert.Equal(t, clk.Now(), manifest.ManifestUpdatedDatetime)
	}
	assert.True(t, manifest.Complete())

	err = svc.MarkFileComplete(manifest)
	assert.ErrorIs(t, err, manifestdomain.ErrFilesExceeded)
	assert.Equal(t, manifest.NumTotalFiles, manifest.NumProcessedFiles)
}

func TestCommit_PersistsCounterUpdates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	manifest, err := svc.Add(ctx, addRequest())
	require.NoError(t, err)
	require.NoError(t, svc.MarkFileComplete(manifest))

	// Not persisted until Commit.
	stored, err := svc.Get(ctx, manifest.AssemblyID, manifest.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.NumProcessedFiles)

	require.NoError(t, svc.Commit(ctx, manifest))

	stored, err = svc.Get(ctx, manifest.AssemblyID, manifest.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.NumProcessedFiles)
	assert.True(t, stored.ManifestUpdatedDatetime.Equal(manifest.ManifestUpdatedDatetime))
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	manifest, err := svc.Add(ctx, addRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, manifest))
	_, err = svc.Get(ctx, manifest.AssemblyID, manifest.ProviderID)
	assert.ErrorIs(t, err, manifestdomain.ErrNotFound)

	// Deleting again reports not found.
	err = svc.Delete(ctx, manifest)
	assert.ErrorIs(t, err, manifestdomain.ErrNotFound)
}
