// Package domain contains persistence models for wallets, the transaction
// ledger and ticket allocations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Wallet holds the free ticket balance for one (tenant, user) pair.
// The balance is only ever written inside a ledger-append transaction.
type Wallet struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID `gorm:"not null;index;uniqueIndex:ux_wallets_tenant_user,priority:1" json:"tenant_id"`
	UserID        snowflake.ID `gorm:"not null;index;uniqueIndex:ux_wallets_tenant_user,priority:2" json:"user_id"`
	TicketBalance int64        `gorm:"not null;default:0" json:"ticket_balance"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Wallet) TableName() string { return "wallets" }

// LedgerEntryType classifies a balance-changing event.
type LedgerEntryType string

const (
	EntryTypePlanPurchase       LedgerEntryType = "plan_purchase"
	EntryTypeManualPurchase     LedgerEntryType = "manual_purchase"
	EntryTypeConsumption        LedgerEntryType = "consumption"
	EntryTypeAllocation         LedgerEntryType = "allocation"
	EntryTypeAllocationDecrease LedgerEntryType = "allocation_decrease"
	EntryTypeAllocationRelease  LedgerEntryType = "allocation_release"
	EntryTypeAdminGrant         LedgerEntryType = "admin_grant"
)

// LedgerEntry is the immutable record of one balance change. Rows are
// append-only; the wallet balance always equals the sum of its deltas.
type LedgerEntry struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	UserID        snowflake.ID      `gorm:"not null;index" json:"user_id"`
	WalletID      snowflake.ID      `gorm:"not null;index" json:"wallet_id"`
	Delta         int64             `gorm:"not null" json:"delta"`
	EntryType     LedgerEntryType   `gorm:"type:text;not null;index" json:"entry_type"`
	ReferenceType string            `gorm:"type:text" json:"reference_type"`
	ReferenceID   string            `gorm:"type:text;index" json:"reference_id"`
	Description   string            `gorm:"type:text" json:"description"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (LedgerEntry) TableName() string { return "wallet_ledger_entries" }

// Allocation tracks tickets earmarked for a specific ticket listing,
// separate from the free wallet balance. available <= allocated always.
type Allocation struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID          snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	UserID            snowflake.ID `gorm:"not null;index;uniqueIndex:ux_allocations_user_ticket,priority:1" json:"user_id"`
	TicketID          snowflake.ID `gorm:"not null;index;uniqueIndex:ux_allocations_user_ticket,priority:2" json:"ticket_id"`
	AllocatedQuantity int64        `gorm:"not null;default:0" json:"allocated_quantity"`
	AvailableQuantity int64        `gorm:"not null;default:0" json:"available_quantity"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Allocation) TableName() string { return "ticket_allocations" }
