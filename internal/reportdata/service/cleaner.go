package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	reportdomain "github.com/costmgmt/koku/internal/reportdata/domain"
	"github.com/costmgmt/koku/pkg/tenant"
	"github.com/costmgmt/koku/pkg/transaction"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type cleaner struct {
	db    *gorm.DB
	guard *transaction.Guard
	repo  reportdomain.Repository
	log   *zap.Logger
}

func NewCleaner(
	conn *gorm.DB,
	guard *transaction.Guard,
	repo reportdomain.Repository,
	log *zap.Logger,
) reportdomain.Cleaner {
	return &cleaner{
		db:    conn,
		guard: guard,
		repo:  repo,
		log:   log.Named("reportdata.cleaner"),
	}
}

// PurgeExpiredReportData removes every bill matching the selector together
// with its dependent rows, children first. The whole purge runs inside one
// schema-scoped savepoint, so a mid-purge failure rolls everything back.
func (c *cleaner) PurgeExpiredReportData(ctx context.Context, schema tenant.Schema, opts reportdomain.PurgeOptions) ([]reportdomain.RemovalRecord, error) {
	if (opts.ExpiredDate == nil) == (opts.ProviderID == nil) {
		return nil, reportdomain.ErrPurgeSelector
	}

	filter := reportdomain.BillFilter{
		ExpiredDate: opts.ExpiredDate,
		ProviderID:  opts.ProviderID,
	}

	if opts.Simulate {
		bills, err := c.repo.SelectBills(ctx, c.db, schema, filter)
		if err != nil {
			return nil, err
		}
		return removalRecords(bills), nil
	}

	var records []reportdomain.RemovalRecord
	err := c.guard.RunInSchema(ctx, schema, func(tx *gorm.DB) error {
		bills, err := c.repo.SelectBills(ctx, tx, schema, filter)
		if err != nil {
			return err
		}
		if len(bills) == 0 {
			return nil
		}

		billIDs := make([]snowflake.ID, len(bills))
		for i, bill := range bills {
			billIDs[i] = bill.ID
		}

		refs, err := c.repo.DimensionRefs(ctx, tx, schema, billIDs)
		if err != nil {
			return err
		}

		lineItems, err := c.repo.DeleteLineItems(ctx, tx, schema, billIDs)
		if err != nil {
			return err
		}
		costEntries, err := c.repo.DeleteCostEntries(ctx, tx, schema, billIDs)
		if err != nil {
			return err
		}
		if err := c.repo.DeleteUnreferencedDimensions(ctx, tx, schema, refs); err != nil {
			return err
		}
		deletedBills, err := c.repo.DeleteBills(ctx, tx, schema, billIDs)
		if err != nil {
			return err
		}

		records = removalRecords(bills)
		c.log.Info("expired report data purged",
			zap.String("schema", schema.String()),
			zap.Int64("bills", deletedBills),
			zap.Int64("cost_entries", costEntries),
			zap.Int64("line_items", lineItems),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func removalRecords(bills []reportdomain.CostEntryBill) []reportdomain.RemovalRecord {
	records := make([]reportdomain.RemovalRecord, 0, len(bills))
	for _, bill := range bills {
		records = append(records, reportdomain.RemovalRecord{
			AccountPayerID:     bill.PayerAccountID,
			BillingPeriodStart: bill.BillingPeriodStart.Format("2006-01-02"),
		})
	}
	return records
}
