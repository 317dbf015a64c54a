// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// InvoicePurpose feeds the human-readable invoice number prefix.
type InvoicePurpose string

const (
	PurposePlan    InvoicePurpose = "PLAN"
	PurposeTickets InvoicePurpose = "TIX"
)

// Invoice is the financial document recorded with a purchase. It owns its
// items; both are written in the purchase transaction or not at all.
type Invoice struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvoiceNumber     string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_number" json:"invoice_number"`
	TenantID          snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	UserID            snowflake.ID      `gorm:"not null;index" json:"user_id"`
	SubtotalCents     int64             `gorm:"not null" json:"subtotal_cents"`
	TaxRate           float64           `gorm:"not null" json:"tax_rate"`
	TaxAmountCents    int64             `gorm:"not null" json:"tax_amount_cents"`
	TotalAmountCents  int64             `gorm:"not null" json:"total_amount_cents"`
	Currency          string            `gorm:"type:text;not null" json:"currency"`
	Status            InvoiceStatus     `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	ExternalPaymentID string            `gorm:"type:text" json:"external_payment_id,omitempty"`
	PaidAt            *time.Time        `gorm:"" json:"paid_at,omitempty"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvoiceID       snowflake.ID      `gorm:"not null;index" json:"invoice_id"`
	TenantID        snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	ItemType        string            `gorm:"type:text;not null" json:"item_type"`
	ItemName        string            `gorm:"type:text;not null" json:"item_name"`
	Quantity        int64             `gorm:"not null" json:"quantity"`
	UnitPriceCents  int64             `gorm:"not null" json:"unit_price_cents"`
	TotalPriceCents int64             `gorm:"not null" json:"total_price_cents"`
	Currency        string            `gorm:"type:text;not null" json:"currency"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
