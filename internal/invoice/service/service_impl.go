package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/showgrid/showgrid/internal/clock"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	"github.com/showgrid/showgrid/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  invoicedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  invoicedomain.Repository
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.CreateIn(ctx, tx, req)
		if err != nil {
			return err
		}
		invoice = created
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) CreateIn(ctx context.Context, tx *gorm.DB, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	if req.TenantID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTenant
	}
	if req.UserID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidUser
	}
	if len(req.Items) == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidItems
	}
	if req.TaxRate < 0 || req.TaxRate >= 1 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTaxRate
	}
	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCurrency
	}

	var subtotal int64
	for _, item := range req.Items {
		subtotal += item.TotalPriceCents
	}

	// Tax in cents, rounded half away from zero.
	taxAmount := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(req.TaxRate)).
		Round(0).
		IntPart()

	now := s.clock.Now()
	invoice := invoicedomain.Invoice{
		ID:               s.genID.Generate(),
		InvoiceNumber:    s.nextInvoiceNumber(req.Purpose, req.EntityID, now),
		TenantID:         req.TenantID,
		UserID:           req.UserID,
		SubtotalCents:    subtotal,
		TaxRate:          req.TaxRate,
		TaxAmountCents:   taxAmount,
		TotalAmountCents: subtotal + taxAmount,
		Currency:         currency,
		Status:           invoicedomain.InvoiceStatusPending,
		Metadata:         datatypes.JSONMap(req.Metadata),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}

	items := make([]invoicedomain.InvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicedomain.InvoiceItem{
			ID:              s.genID.Generate(),
			InvoiceID:       invoice.ID,
			TenantID:        req.TenantID,
			ItemType:        item.ItemType,
			ItemName:        item.ItemName,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			TotalPriceCents: item.TotalPriceCents,
			Currency:        currency,
			Metadata:        datatypes.JSONMap(item.Metadata),
			CreatedAt:       now,
		})
	}
	if err := s.repo.InsertItems(ctx, tx, items); err != nil {
		return invoicedomain.Invoice{}, err
	}

	return invoice, nil
}

// nextInvoiceNumber builds a human-readable, collision-resistant number:
// timestamp + entity id + random suffix, so two purchases in the same
// millisecond still differ. The unique index on invoice_number is the final
// arbiter.
func (s *Service) nextInvoiceNumber(purpose invoicedomain.InvoicePurpose, entityID snowflake.ID, now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("INV-%s-%d-%d-%s", purpose, now.UnixMilli(), entityID, suffix)
}

func (s *Service) MarkPaid(ctx context.Context, invoiceNumber, externalPaymentID string) (invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.MarkPaidIn(ctx, tx, invoiceNumber, externalPaymentID)
		if err != nil {
			return err
		}
		invoice = updated
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) MarkPaidIn(ctx context.Context, tx *gorm.DB, invoiceNumber, externalPaymentID string) (invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByNumberForUpdate(ctx, tx, invoiceNumber)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}

	if invoice.Status == invoicedomain.InvoiceStatusPaid {
		// Payment webhooks retry; re-marking paid is a no-op success.
		return *invoice, nil
	}

	if err := s.repo.MarkPaid(ctx, tx, invoice.ID, externalPaymentID); err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice.Status = invoicedomain.InvoiceStatusPaid
	invoice.ExternalPaymentID = externalPaymentID
	s.log.Info("invoice paid",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("external_payment_id", externalPaymentID),
	)
	return *invoice, nil
}

func (s *Service) GetByNumber(ctx context.Context, invoiceNumber string) (invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByNumber(ctx, s.db, invoiceNumber)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if invoice == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	if req.TenantID == 0 {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidTenant
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 10
	}
	if limit > 250 {
		limit = 250
	}

	var afterID snowflake.ID
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		parsed, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		afterID = parsed
	}

	invoices, err := s.repo.List(ctx, s.db, req.TenantID, req.UserID, afterID, limit+1)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	resp := invoicedomain.ListInvoiceResponse{Invoices: invoices}
	if len(invoices) > limit {
		resp.Invoices = invoices[:limit]
		resp.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: resp.Invoices[limit-1].ID.String(),
		})
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, err
		}
		resp.NextPageToken = token
	}
	return resp, nil
}
