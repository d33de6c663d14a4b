package domain

import (
	"context"
	"errors"
	"time"

	"github.com/costmgmt/koku/pkg/tenant"
)

// ErrPurgeSelector is returned when a purge is requested with both or
// neither of the expired-date and provider selectors.
var ErrPurgeSelector = errors.New("invalid_purge_selector")

// PurgeOptions selects the bills to purge. Exactly one of ExpiredDate or
// ProviderID must be set. Simulate computes the removal report without
// deleting anything.
type PurgeOptions struct {
	ExpiredDate *time.Time
	ProviderID  *int64
	Simulate    bool
}

// RemovalRecord describes one purged bill.
type RemovalRecord struct {
	AccountPayerID     string `json:"account_payer_id"`
	BillingPeriodStart string `json:"billing_period_start"`
}

// Cleaner removes expired billing data from a tenant schema in dependency
// order, inside a single schema-scoped savepoint.
type Cleaner interface {
	PurgeExpiredReportData(ctx context.Context, schema tenant.Schema, opts PurgeOptions) ([]RemovalRecord, error)
}
