// Package domain contains the per-tenant billing record graph rooted at a
// cost entry bill. Tables live inside a tenant schema and are always
// addressed with schema-qualified names.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// CostEntryBill is the root record of one provider's billing period.
type CostEntryBill struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	ProviderID         int64        `gorm:"not null;index" json:"provider_id"`
	BillType           string       `gorm:"type:text" json:"bill_type"`
	PayerAccountID     string       `gorm:"type:text;not null" json:"payer_account_id"`
	BillingPeriodStart time.Time    `gorm:"not null;index" json:"billing_period_start"`
	BillingPeriodEnd   time.Time    `gorm:"not null" json:"billing_period_end"`
}

func (CostEntryBill) TableName() string { return "aws_cost_entry_bills" }

// CostEntry is one data-collection run within a bill's period.
type CostEntry struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	BillID        snowflake.ID `gorm:"not null;index" json:"bill_id"`
	IntervalStart time.Time    `gorm:"not null" json:"interval_start"`
	IntervalEnd   time.Time    `gorm:"not null" json:"interval_end"`
}

func (CostEntry) TableName() string { return "aws_cost_entries" }

// CostEntryLineItem is one billed usage row, the leaf of the graph. Every
// line item references exactly one bill, cost entry, product, pricing and
// reservation.
type CostEntryLineItem struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	CostEntryBillID snowflake.ID      `gorm:"not null;index" json:"cost_entry_bill_id"`
	CostEntryID     snowflake.ID      `gorm:"not null;index" json:"cost_entry_id"`
	ProductID       snowflake.ID      `gorm:"not null" json:"cost_entry_product_id"`
	PricingID       snowflake.ID      `gorm:"not null" json:"cost_entry_pricing_id"`
	ReservationID   snowflake.ID      `gorm:"not null" json:"cost_entry_reservation_id"`
	LineItemType    string            `gorm:"type:text" json:"line_item_type"`
	UsageAccountID  string            `gorm:"type:text" json:"usage_account_id"`
	UsageStart      time.Time         `json:"usage_start"`
	UsageEnd        time.Time         `json:"usage_end"`
	ProductCode     string            `gorm:"type:text" json:"product_code"`
	UsageAmount     float64           `json:"usage_amount"`
	Currency        string            `gorm:"type:text" json:"currency_code"`
	UnblendedCost   float64           `json:"unblended_cost"`
	Tags            datatypes.JSONMap `gorm:"type:jsonb" json:"tags"`
}

func (CostEntryLineItem) TableName() string { return "aws_cost_entry_line_items" }

// CostEntryProduct is a shared dimension row describing a billed product.
type CostEntryProduct struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SKU         string       `gorm:"type:text" json:"sku"`
	ProductName string       `gorm:"type:text" json:"product_name"`
	ServiceCode string       `gorm:"type:text" json:"service_code"`
	Region      string       `gorm:"type:text" json:"region"`
}

func (CostEntryProduct) TableName() string { return "aws_cost_entry_products" }

// CostEntryPricing is a shared dimension row describing rate terms.
type CostEntryPricing struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Term string       `gorm:"type:text" json:"term"`
	Unit string       `gorm:"type:text" json:"unit"`
}

func (CostEntryPricing) TableName() string { return "aws_cost_entry_pricings" }

// CostEntryReservation is a shared dimension row for reserved capacity.
type CostEntryReservation struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	ReservationARN       string       `gorm:"type:text" json:"reservation_arn"`
	NumberOfReservations int          `json:"number_of_reservations"`
}

func (CostEntryReservation) TableName() string { return "aws_cost_entry_reservations" }

// Tables lists every table of the billing graph in child-before-parent
// order, the order a purge must delete in.
func Tables() []string {
	return []string{
		CostEntryLineItem{}.TableName(),
		CostEntry{}.TableName(),
		CostEntryReservation{}.TableName(),
		CostEntryPricing{}.TableName(),
		CostEntryProduct{}.TableName(),
		CostEntryBill{}.TableName(),
	}
}
