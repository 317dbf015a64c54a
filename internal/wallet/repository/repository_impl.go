package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/wallet/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) EnsureWallet(ctx context.Context, db *gorm.DB, id, tenantID, userID snowflake.ID, now time.Time) (*domain.Wallet, error) {
	// Insert-or-fetch: a losing concurrent insert hits the unique index and
	// affects zero rows, after which the winner's row is read back.
	if err := db.WithContext(ctx).Exec(
		`INSERT INTO wallets (id, tenant_id, user_id, ticket_balance, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)
		 ON CONFLICT (tenant_id, user_id) DO NOTHING`,
		id, tenantID, userID, now, now,
	).Error; err != nil {
		return nil, err
	}

	var wallet domain.Wallet
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) FindWalletForUpdate(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, user_id, ticket_balance, created_at, updated_at
		 FROM wallets
		 WHERE tenant_id = ? AND user_id = ?
		 FOR UPDATE`,
		tenantID, userID,
	).Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (r *repository) UpdateWalletBalance(ctx context.Context, db *gorm.DB, walletID snowflake.ID, balance int64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE wallets SET ticket_balance = ?, updated_at = ? WHERE id = ?`,
		balance, now, walletID,
	).Error
}

func (r *repository) InsertLedgerEntry(ctx context.Context, db *gorm.DB, entry *domain.LedgerEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListLedgerEntries(ctx context.Context, db *gorm.DB, tenantID, userID, afterID snowflake.ID, limit int) ([]domain.LedgerEntry, error) {
	stmt := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("id DESC").
		Limit(limit)
	if afterID != 0 {
		stmt = stmt.Where("id < ?", afterID)
	}

	var entries []domain.LedgerEntry
	if err := stmt.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindAllocationForUpdate(ctx context.Context, db *gorm.DB, userID, ticketID snowflake.ID) (*domain.Allocation, error) {
	var alloc domain.Allocation
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, user_id, ticket_id, allocated_quantity, available_quantity, created_at, updated_at
		 FROM ticket_allocations
		 WHERE user_id = ? AND ticket_id = ?
		 FOR UPDATE`,
		userID, ticketID,
	).Scan(&alloc).Error
	if err != nil {
		return nil, err
	}
	if alloc.ID == 0 {
		return nil, nil
	}
	return &alloc, nil
}

func (r *repository) FindAllocation(ctx context.Context, db *gorm.DB, userID, ticketID snowflake.ID) (*domain.Allocation, error) {
	var alloc domain.Allocation
	err := db.WithContext(ctx).
		Where("user_id = ? AND ticket_id = ?", userID, ticketID).
		First(&alloc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alloc, nil
}

func (r *repository) InsertAllocation(ctx context.Context, db *gorm.DB, alloc *domain.Allocation) error {
	return db.WithContext(ctx).Create(alloc).Error
}

func (r *repository) UpdateAllocationQuantities(ctx context.Context, db *gorm.DB, allocID snowflake.ID, allocated, available int64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ticket_allocations
		 SET allocated_quantity = ?, available_quantity = ?, updated_at = ?
		 WHERE id = ?`,
		allocated, available, now, allocID,
	).Error
}

func (r *repository) DeleteAllocation(ctx context.Context, db *gorm.DB, allocID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM ticket_allocations WHERE id = ?`, allocID,
	).Error
}
