// Package domain contains persistence models for cost-usage-report manifest
// tracking.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReportManifest tracks ingestion progress of one billing-report batch for
// one provider. Manifests live in the shared namespace, not per tenant.
type ReportManifest struct {
	ID                       snowflake.ID `gorm:"primaryKey" json:"id"`
	AssemblyID               string       `gorm:"type:text;not null;uniqueIndex:idx_manifests_provider_assembly,priority:2" json:"assembly_id"`
	ProviderID               int64        `gorm:"not null;uniqueIndex:idx_manifests_provider_assembly,priority:1" json:"provider_id"`
	BillingPeriodStart       time.Time    `gorm:"not null" json:"billing_period_start"`
	NumTotalFiles            int          `gorm:"not null" json:"num_total_files"`
	NumProcessedFiles        int          `gorm:"not null;default:0" json:"num_processed_files"`
	ManifestCreationDatetime time.Time    `gorm:"not null" json:"manifest_creation_datetime"`
	ManifestUpdatedDatetime  time.Time    `json:"manifest_updated_datetime"`
}

// TableName sets the database table name.
func (ReportManifest) TableName() string { return "report_manifests" }

// Complete reports whether every expected file has been processed.
func (m *ReportManifest) Complete() bool {
	return m.NumTotalFiles > 0 && m.NumProcessedFiles >= m.NumTotalFiles
}
