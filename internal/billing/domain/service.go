// Package domain defines the ticket purchase flow: pay-per-ticket top-ups
// outside any subscription plan.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
)

type PurchaseTicketsRequest struct {
	TenantID snowflake.ID
	UserID   snowflake.ID
	Quantity int64
	// ExternalPaymentID references the already-confirmed gateway payment.
	// Empty leaves the invoice pending.
	ExternalPaymentID string
}

type PurchaseTicketsResult struct {
	Wallet         walletdomain.Wallet   `json:"wallet"`
	Invoice        invoicedomain.Invoice `json:"invoice"`
	UnitPriceCents int64                 `json:"unit_price_cents"`
	TotalCents     int64                 `json:"total_cents"`
}

// Quote is a price preview. It writes nothing.
type Quote struct {
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
	Currency       string `json:"currency"`
}

type Service interface {
	PurchaseTickets(ctx context.Context, req PurchaseTicketsRequest) (PurchaseTicketsResult, error)
	QuoteTickets(ctx context.Context, quantity int64) (Quote, error)
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidQuantity = errors.New("invalid_quantity")
)
