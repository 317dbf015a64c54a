// Package domain defines the read-only sales report surface. Reports join
// ledger entries, allocations and access grants; nothing here writes.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accessgrantdomain "github.com/showgrid/showgrid/internal/accessgrant/domain"
	"github.com/showgrid/showgrid/pkg/db/pagination"
)

type SalesReportRequest struct {
	TenantID snowflake.ID
	TicketID snowflake.ID
	Email    string
	From     time.Time
	To       time.Time
	pagination.Pagination
}

// SalesSummary aggregates ticket movement for the filtered window.
type SalesSummary struct {
	TicketsPurchased int64 `json:"tickets_purchased"`
	TicketsConsumed  int64 `json:"tickets_consumed"`
	TicketsAllocated int64 `json:"tickets_allocated"`
	AccessGrants     int64 `json:"access_grants"`
}

// SalesReportRow is one access grant enriched with the allocation standing
// behind it, when one exists.
type SalesReportRow struct {
	Grant             accessgrantdomain.AccessGrant `json:"grant"`
	AllocatedQuantity int64                         `json:"allocated_quantity"`
	AvailableQuantity int64                         `json:"available_quantity"`
}

type SalesReportResponse struct {
	pagination.PageInfo
	Summary SalesSummary     `json:"summary"`
	Rows    []SalesReportRow `json:"rows"`
}

type Service interface {
	SalesReport(ctx context.Context, req SalesReportRequest) (SalesReportResponse, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidRange  = errors.New("invalid_time_range")
)
