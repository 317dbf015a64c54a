package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// AllocationTotals is the per-ticket aggregate over all holders.
type AllocationTotals struct {
	TicketID          snowflake.ID
	AllocatedQuantity int64
	AvailableQuantity int64
}

type Repository interface {
	// SumLedgerDeltas totals signed deltas for the given entry types across
	// all wallets of the tenant inside [from, to).
	SumLedgerDeltas(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, entryTypes []string, from, to time.Time) (int64, error)
	SumAllocated(ctx context.Context, db *gorm.DB, tenantID, ticketID snowflake.ID) (int64, error)
	AllocationTotalsByTicket(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ticketIDs []snowflake.ID) (map[snowflake.ID]AllocationTotals, error)
}
