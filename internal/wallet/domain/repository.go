package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository methods take the database handle so services can run several of
// them inside one transaction.
type Repository interface {
	// EnsureWallet inserts a zero-balance wallet if none exists and returns
	// the current row. Safe under concurrent first access.
	EnsureWallet(ctx context.Context, db *gorm.DB, id, tenantID, userID snowflake.ID, now time.Time) (*Wallet, error)
	// FindWalletForUpdate locks the wallet row for the rest of the
	// transaction so the balance check and the write are one serialized unit.
	FindWalletForUpdate(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*Wallet, error)
	UpdateWalletBalance(ctx context.Context, db *gorm.DB, walletID snowflake.ID, balance int64, now time.Time) error
	InsertLedgerEntry(ctx context.Context, db *gorm.DB, entry *LedgerEntry) error
	ListLedgerEntries(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID, afterID snowflake.ID, limit int) ([]LedgerEntry, error)

	FindAllocationForUpdate(ctx context.Context, db *gorm.DB, userID, ticketID snowflake.ID) (*Allocation, error)
	FindAllocation(ctx context.Context, db *gorm.DB, userID, ticketID snowflake.ID) (*Allocation, error)
	InsertAllocation(ctx context.Context, db *gorm.DB, alloc *Allocation) error
	UpdateAllocationQuantities(ctx context.Context, db *gorm.DB, allocID snowflake.ID, allocated, available int64, now time.Time) error
	DeleteAllocation(ctx context.Context, db *gorm.DB, allocID snowflake.ID) error
}
