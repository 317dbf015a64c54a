package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/pkg/db/pagination"
	"gorm.io/gorm"
)

// ApplyDeltaRequest describes one signed balance change.
type ApplyDeltaRequest struct {
	TenantID      snowflake.ID
	UserID        snowflake.ID
	Delta         int64
	EntryType     LedgerEntryType
	ReferenceType string
	ReferenceID   string
	Description   string
	Metadata      map[string]any
}

type ConsumeRequest struct {
	TenantID      snowflake.ID
	UserID        snowflake.ID
	Quantity      int64
	ReferenceType string
	ReferenceID   string
	Description   string
	Metadata      map[string]any
}

type AllocateRequest struct {
	TenantID snowflake.ID
	UserID   snowflake.ID
	TicketID snowflake.ID
	Quantity int64
}

type UpdateAllocationRequest struct {
	TenantID    snowflake.ID
	UserID      snowflake.ID
	TicketID    snowflake.ID
	NewQuantity int64
}

// ReleaseResult reports the compensating credit made when an allocation is
// released back to the wallet.
type ReleaseResult struct {
	ReleasedQuantity int64  `json:"released_quantity"`
	Wallet           Wallet `json:"wallet"`
}

type ListTransactionsRequest struct {
	TenantID snowflake.ID
	UserID   snowflake.ID
	pagination.Pagination
}

type ListTransactionsResponse struct {
	pagination.PageInfo
	Entries []LedgerEntry `json:"entries"`
}

type Service interface {
	GetOrCreateWallet(ctx context.Context, tenantID, userID snowflake.ID) (Wallet, error)
	// ApplyDelta atomically appends a ledger entry and moves the balance.
	ApplyDelta(ctx context.Context, req ApplyDeltaRequest) (Wallet, error)
	// ApplyDeltaIn is ApplyDelta running inside the caller's transaction, so
	// purchase flows can commit wallet credit, subscription and invoice as
	// one unit.
	ApplyDeltaIn(ctx context.Context, tx *gorm.DB, req ApplyDeltaRequest) (Wallet, error)
	Consume(ctx context.Context, req ConsumeRequest) (Wallet, error)
	ListTransactions(ctx context.Context, req ListTransactionsRequest) (ListTransactionsResponse, error)

	Allocate(ctx context.Context, req AllocateRequest) (Allocation, error)
	UpdateAllocation(ctx context.Context, req UpdateAllocationRequest) (Allocation, error)
	ReleaseAllocation(ctx context.Context, tenantID, userID, ticketID snowflake.ID) (ReleaseResult, error)
	ConsumeAllocated(ctx context.Context, tenantID, userID, ticketID snowflake.ID, quantity int64) (Allocation, error)
	GetAllocation(ctx context.Context, tenantID, userID, ticketID snowflake.ID) (Allocation, error)
}

var (
	ErrInvalidTenant          = errors.New("invalid_tenant")
	ErrInvalidUser            = errors.New("invalid_user")
	ErrInvalidTicket          = errors.New("invalid_ticket")
	ErrInvalidQuantity        = errors.New("invalid_quantity")
	ErrInvalidEntryType       = errors.New("invalid_entry_type")
	ErrInsufficientBalance    = errors.New("insufficient_balance")
	ErrInsufficientAllocation = errors.New("insufficient_allocation")
	ErrAllocationNotFound     = errors.New("allocation_not_found")
	ErrWalletNotFound         = errors.New("wallet_not_found")
)
