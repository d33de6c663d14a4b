package migration

import (
	"fmt"

	manifestdomain "github.com/costmgmt/koku/internal/manifest/domain"
	providerdomain "github.com/costmgmt/koku/internal/provider/domain"
	reportdomain "github.com/costmgmt/koku/internal/reportdata/domain"
	"github.com/costmgmt/koku/pkg/tenant"
	"gorm.io/gorm"
)

// EnsureTenantSchema creates a tenant's schema and its billing graph tables.
// Called when a provider is registered and from test fixtures.
func EnsureTenantSchema(db *gorm.DB, schema tenant.Schema) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
	}

	for _, target := range []struct {
		table string
		model any
	}{
		{reportdomain.CostEntryBill{}.TableName(), &reportdomain.CostEntryBill{}},
		{reportdomain.CostEntry{}.TableName(), &reportdomain.CostEntry{}},
		{reportdomain.CostEntryProduct{}.TableName(), &reportdomain.CostEntryProduct{}},
		{reportdomain.CostEntryPricing{}.TableName(), &reportdomain.CostEntryPricing{}},
		{reportdomain.CostEntryReservation{}.TableName(), &reportdomain.CostEntryReservation{}},
		{reportdomain.CostEntryLineItem{}.TableName(), &reportdomain.CostEntryLineItem{}},
	} {
		if err := db.Table(schema.Table(target.table)).AutoMigrate(target.model); err != nil {
			return fmt.Errorf("migrate %s: %w", schema.Table(target.table), err)
		}
	}
	return nil
}

// AutoMigrateShared creates the shared tables through gorm for dialects the
// SQL migrations do not cover (sqlite and mysql development setups).
func AutoMigrateShared(db *gorm.DB) error {
	return db.AutoMigrate(
		&manifestdomain.ReportManifest{},
		&providerdomain.Provider{},
	)
}
