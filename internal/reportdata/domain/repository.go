package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/costmgmt/koku/pkg/tenant"
	"gorm.io/gorm"
)

// BillFilter selects bills within one tenant schema. Cutoff is inclusive:
// a bill whose billing_period_start equals ExpiredDate matches.
type BillFilter struct {
	ExpiredDate *time.Time
	ProviderID  *int64
}

// DimensionRefs holds the dimension rows referenced by a set of line items.
type DimensionRefs struct {
	ProductIDs     []snowflake.ID
	PricingIDs     []snowflake.ID
	ReservationIDs []snowflake.ID
}

// Repository runs the schema-qualified queries of the billing graph. Methods
// take the transaction handle explicitly so the cleaner can run everything
// inside one savepoint.
type Repository interface {
	SelectBills(ctx context.Context, tx *gorm.DB, schema tenant.Schema, filter BillFilter) ([]CostEntryBill, error)
	DimensionRefs(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (DimensionRefs, error)
	DeleteLineItems(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (int64, error)
	DeleteCostEntries(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (int64, error)
	DeleteUnreferencedDimensions(ctx context.Context, tx *gorm.DB, schema tenant.Schema, refs DimensionRefs) error
	DeleteBills(ctx context.Context, tx *gorm.DB, schema tenant.Schema, billIDs []snowflake.ID) (int64, error)
}
