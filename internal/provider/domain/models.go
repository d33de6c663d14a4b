// Package domain contains the cloud provider registry. Providers live in the
// shared namespace and point at the tenant schema owning their billing data.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	TypeAWS = "AWS"
	TypeOCP = "OCP"
)

// Provider is one registered cloud billing account.
type Provider struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Type         string       `gorm:"type:text;not null" json:"type"`
	TenantSchema string       `gorm:"type:text;not null;index" json:"tenant_schema"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Provider) TableName() string { return "providers" }
