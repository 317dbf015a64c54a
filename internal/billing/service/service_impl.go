package service

import (
	"context"
	"fmt"

	"github.com/showgrid/showgrid/internal/billing/domain"
	"github.com/showgrid/showgrid/internal/config"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	obsmetrics "github.com/showgrid/showgrid/internal/observability/metrics"
	"github.com/showgrid/showgrid/internal/pricing"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  config.Config
	Pricing *pricing.Engine

	WalletSvc  walletdomain.Service
	InvoiceSvc invoicedomain.Service
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     config.Config
	pricing *pricing.Engine

	walletSvc  walletdomain.Service
	invoiceSvc invoicedomain.Service
	metrics    *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("billing.service"),
		cfg:     p.Config,
		pricing: p.Pricing,

		walletSvc:  p.WalletSvc,
		invoiceSvc: p.InvoiceSvc,
		metrics:    p.Metrics,
	}
}

// PurchaseTickets credits the wallet and raises the matching invoice in one
// transaction. The unit price is locked in from the tier table at call time
// and recorded on the invoice line, so later config reloads never reprice a
// past purchase.
func (s *Service) PurchaseTickets(ctx context.Context, req domain.PurchaseTicketsRequest) (domain.PurchaseTicketsResult, error) {
	if req.TenantID == 0 {
		return domain.PurchaseTicketsResult{}, domain.ErrInvalidTenant
	}
	if req.UserID == 0 {
		return domain.PurchaseTicketsResult{}, domain.ErrInvalidUser
	}
	if req.Quantity <= 0 {
		return domain.PurchaseTicketsResult{}, domain.ErrInvalidQuantity
	}

	unitPrice := s.pricing.UnitPrice(req.Quantity)
	total := unitPrice * req.Quantity

	var result domain.PurchaseTicketsResult
	result.UnitPriceCents = unitPrice
	result.TotalCents = total

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.walletSvc.ApplyDeltaIn(ctx, tx, walletdomain.ApplyDeltaRequest{
			TenantID:      req.TenantID,
			UserID:        req.UserID,
			Delta:         req.Quantity,
			EntryType:     walletdomain.EntryTypeManualPurchase,
			ReferenceType: "payment",
			ReferenceID:   req.ExternalPaymentID,
			Description:   fmt.Sprintf("purchase of %d tickets", req.Quantity),
			Metadata:      map[string]any{"unit_price_cents": unitPrice},
		})
		if err != nil {
			return err
		}
		result.Wallet = wallet

		invoice, err := s.invoiceSvc.CreateIn(ctx, tx, invoicedomain.CreateInvoiceRequest{
			TenantID: req.TenantID,
			UserID:   req.UserID,
			Purpose:  invoicedomain.PurposeTickets,
			EntityID: req.UserID,
			Items: []invoicedomain.LineItem{{
				ItemType:        "tickets",
				ItemName:        "event tickets",
				Quantity:        req.Quantity,
				UnitPriceCents:  unitPrice,
				TotalPriceCents: total,
			}},
			TaxRate:  s.cfg.DefaultTaxRate,
			Currency: s.cfg.DefaultCurrency,
		})
		if err != nil {
			return err
		}
		if req.ExternalPaymentID != "" {
			invoice, err = s.invoiceSvc.MarkPaidIn(ctx, tx, invoice.InvoiceNumber, req.ExternalPaymentID)
			if err != nil {
				return err
			}
		}
		result.Invoice = invoice
		return nil
	})
	if err != nil {
		return domain.PurchaseTicketsResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordTicketPurchase()
	}
	return result, nil
}

func (s *Service) QuoteTickets(ctx context.Context, quantity int64) (domain.Quote, error) {
	if quantity <= 0 {
		return domain.Quote{}, domain.ErrInvalidQuantity
	}
	unitPrice := s.pricing.UnitPrice(quantity)
	return domain.Quote{
		Quantity:       quantity,
		UnitPriceCents: unitPrice,
		TotalCents:     unitPrice * quantity,
		Currency:       s.cfg.DefaultCurrency,
	}, nil
}
