package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/report/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) SumLedgerDeltas(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, entryTypes []string, from, to time.Time) (int64, error) {
	q := db.WithContext(ctx).
		Table("wallet_ledger_entries e").
		Joins("JOIN wallets w ON w.id = e.wallet_id").
		Where("w.tenant_id = ?", tenantID).
		Where("e.entry_type IN ?", entryTypes)
	if !from.IsZero() {
		q = q.Where("e.created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("e.created_at < ?", to)
	}

	var total *int64
	if err := q.Select("SUM(e.delta)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) SumAllocated(ctx context.Context, db *gorm.DB, tenantID, ticketID snowflake.ID) (int64, error) {
	q := db.WithContext(ctx).
		Table("ticket_allocations").
		Where("tenant_id = ?", tenantID)
	if ticketID != 0 {
		q = q.Where("ticket_id = ?", ticketID)
	}

	var total *int64
	if err := q.Select("SUM(allocated_quantity)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) AllocationTotalsByTicket(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ticketIDs []snowflake.ID) (map[snowflake.ID]domain.AllocationTotals, error) {
	out := make(map[snowflake.ID]domain.AllocationTotals, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return out, nil
	}

	var rows []domain.AllocationTotals
	err := db.WithContext(ctx).
		Table("ticket_allocations").
		Select("ticket_id, SUM(allocated_quantity) AS allocated_quantity, SUM(available_quantity) AS available_quantity").
		Where("tenant_id = ? AND ticket_id IN ?", tenantID, ticketIDs).
		Group("ticket_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TicketID] = row
	}
	return out, nil
}
