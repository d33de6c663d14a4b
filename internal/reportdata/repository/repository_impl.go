package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	reportdomain "github.com/costmgmt/koku/internal/reportdata/domain"
	"github.com/costmgmt/koku/pkg/tenant"
	"gorm.io/gorm"
)

type reportRepo struct{}

func Provide() reportdomain.Repository {
	return &reportRepo{}
}

func (r *reportRepo) SelectBills(ctx context.Context, tx *gorm.DB, schema tenant.Schema, filter reportdomain.BillFilter) ([]reportdomain.CostEntryBill, error) {
	stmt := tx.WithContext(ctx).
		Table(schema.Table(reportdomain.CostEntryBill{}.TableName())).
		Order("billing_period_start, id")

	switch {
	case filter.ExpiredDate != nil:
		stmt = stmt.Where("billing_period_start <= ?", *filter.ExpiredDate)
	case filter.ProviderID != nil:
		stmt = stmt.Where("provider_id = ?", *filter.ProviderID)
	default:
		return nil, reportdomain.ErrPurgeSelector
	}

	var bills []reportdomain.CostEntryBill
	if err := stmt.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *reportRepo) DimensionRefs(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (reportdomain.DimensionRefs, error) {
	var rows []struct {
		ProductID     snowflake.ID
		PricingID     snowflake.ID
		ReservationID snowflake.ID
	}

	err := tx.WithContext(ctx).
		Table(schema.Table(reportdomain.CostEntryLineItem{}.TableName())).
		Select("DISTINCT product_id, pricing_id, reservation_id").
		Where("cost_entry_bill_id IN ?", billIDs).
		Scan(&rows).Error
	if err != nil {
		return reportdomain.DimensionRefs{}, err
	}

	refs := reportdomain.DimensionRefs{}
	seenProduct := map[snowflake.ID]bool{}
	seenPricing := map[snowflake.ID]bool{}
	seenReservation := map[snowflake.ID]bool{}
	for _, row := range rows {
		if !seenProduct[row.ProductID] {
			seenProduct[row.ProductID] = true
			refs.ProductIDs = append(refs.ProductIDs, row.ProductID)
		}
		if !seenPricing[row.PricingID] {
			seenPricing[row.PricingID] = true
			refs.PricingIDs = append(refs.PricingIDs, row.PricingID)
		}
		if !seenReservation[row.ReservationID] {
			seenReservation[row.ReservationID] = true
			refs.ReservationIDs = append(refs.ReservationIDs, row.ReservationID)
		}
	}
	return refs, nil
}

func (r *reportRepo) DeleteLineItems(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE cost_entry_bill_id IN ?",
			schema.Table(reportdomain.CostEntryLineItem{}.TableName())),
		billIDs,
	)
	return result.RowsAffected, result.Error
}

func (r *reportRepo) DeleteCostEntries(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE bill_id IN ?",
			schema.Table(reportdomain.CostEntry{}.TableName())),
		billIDs,
	)
	return result.RowsAffected, result.Error
}

// DeleteUnreferencedDimensions removes the dimension rows that were tied to
// the purged line items. Rows still referenced by a surviving line item are
// left untouched; this is not a general reference-counted sweep.
func (r *reportRepo) DeleteUnreferencedDimensions(ctx context.Context, tx *gorm.DB, schema tenant.Schema, refs reportdomain.DimensionRefs) error {
	lineItems := schema.Table(reportdomain.CostEntryLineItem{}.TableName())

	type target struct {
		table  string
		column string
		ids    []snowflake.ID
	}
	targets := []target{
		{schema.Table(reportdomain.CostEntryReservation{}.TableName()), "reservation_id", refs.ReservationIDs},
		{schema.Table(reportdomain.CostEntryPricing{}.TableName()), "pricing_id", refs.PricingIDs},
		{schema.Table(reportdomain.CostEntryProduct{}.TableName()), "product_id", refs.ProductIDs},
	}

	for _, t := range targets {
		if len(t.ids) == 0 {
			continue
		}
		err := tx.WithContext(ctx).Exec(
			fmt.Sprintf("DELETE FROM %s WHERE id IN ? AND id NOT IN (SELECT %s FROM %s)",
				t.table, t.column, lineItems),
			t.ids,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reportRepo) DeleteBills(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (int64, error) {
	result := tx.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id IN ?",
			schema.Table(reportdomain.CostEntryBill{}.TableName())),
		billIDs,
	)
	return result.RowsAffected, result.Error
}
