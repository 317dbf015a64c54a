package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/pkg/db/pagination"
	"gorm.io/gorm"
)

type LineItem struct {
	ItemType        string         `json:"item_type"`
	ItemName        string         `json:"item_name"`
	Quantity        int64          `json:"quantity"`
	UnitPriceCents  int64          `json:"unit_price_cents"`
	TotalPriceCents int64          `json:"total_price_cents"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

type CreateInvoiceRequest struct {
	TenantID snowflake.ID
	UserID   snowflake.ID
	Purpose  InvoicePurpose
	// EntityID is embedded in the invoice number (subscription or wallet id).
	EntityID snowflake.ID
	Items    []LineItem
	TaxRate  float64
	Currency string
	Metadata map[string]any
}

type ListInvoiceRequest struct {
	TenantID snowflake.ID
	UserID   snowflake.ID
	pagination.Pagination
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	// Create runs in its own transaction.
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	// CreateIn writes the invoice and its items against the caller's
	// transaction so a purchase commits everything as one unit.
	CreateIn(ctx context.Context, tx *gorm.DB, req CreateInvoiceRequest) (Invoice, error)
	// MarkPaid transitions pending->paid. Re-marking a paid invoice is an
	// idempotent no-op success, so payment-webhook retries are harmless.
	MarkPaid(ctx context.Context, invoiceNumber, externalPaymentID string) (Invoice, error)
	// MarkPaidIn is MarkPaid against the caller's transaction.
	MarkPaidIn(ctx context.Context, tx *gorm.DB, invoiceNumber, externalPaymentID string) (Invoice, error)
	GetByNumber(ctx context.Context, invoiceNumber string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidItems    = errors.New("invalid_items")
	ErrInvalidTaxRate  = errors.New("invalid_tax_rate")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvoiceNotFound = errors.New("invoice_not_found")
)
