// Package retention runs the periodic purge of expired billing data. Each
// run enumerates registered providers, groups them by tenant schema, and asks
// the report data cleaner for everything older than the retention window.
package retention

import (
	"context"
	"time"

	"github.com/costmgmt/koku/internal/clock"
	providerdomain "github.com/costmgmt/koku/internal/provider/domain"
	reportdomain "github.com/costmgmt/koku/internal/reportdata/domain"
	"github.com/costmgmt/koku/pkg/tenant"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Providers providerdomain.Repository
	Cleaner   reportdomain.Cleaner
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

type Worker struct {
	log       *zap.Logger
	providers providerdomain.Repository
	cleaner   reportdomain.Cleaner
	clock     clock.Clock
	cfg       Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:       p.Log.Named("retention"),
		providers: p.Providers,
		cleaner:   p.Cleaner,
		clock:     p.Clock,
		cfg:       p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("retention run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(parentCtx context.Context) error {
	ctx, cancel := context.WithTimeout(parentCtx, w.cfg.RunTimeout)
	defer cancel()

	providers, err := w.providers.List(ctx)
	if err != nil {
		return err
	}

	cutoff := w.ExpiredDate()
	for _, schema := range tenantSchemas(providers) {
		records, err := w.cleaner.PurgeExpiredReportData(ctx, schema, reportdomain.PurgeOptions{
			ExpiredDate: &cutoff,
		})
		if err != nil {
			// One tenant's failure must not starve the rest.
			w.log.Warn("tenant purge failed",
				zap.String("schema", schema.String()),
				zap.Error(err),
			)
			continue
		}
		if len(records) > 0 {
			w.log.Info("tenant purge complete",
				zap.String("schema", schema.String()),
				zap.Time("expired_date", cutoff),
				zap.Int("bills_removed", len(records)),
			)
		}
	}
	return nil
}

// ExpiredDate is the inclusive cutoff: the start of the billing month that
// fell RetentionMonths ago. Bills from that month or earlier are purged.
func (w *Worker) ExpiredDate() time.Time {
	now := w.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthStart.AddDate(0, -w.cfg.RetentionMonths, 0)
}

func tenantSchemas(providers []providerdomain.Provider) []tenant.Schema {
	seen := map[tenant.Schema]bool{}
	var schemas []tenant.Schema
	for _, p := range providers {
		schema, err := tenant.Parse(p.TenantSchema)
		if err != nil {
			continue
		}
		if !seen[schema] {
			seen[schema] = true
			schemas = append(schemas, schema)
		}
	}
	return schemas
}
