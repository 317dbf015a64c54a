package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingdomain "github.com/showgrid/showgrid/internal/billing/domain"
	"github.com/showgrid/showgrid/internal/clock"
	"github.com/showgrid/showgrid/internal/config"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	invoicerepo "github.com/showgrid/showgrid/internal/invoice/repository"
	invoicesvc "github.com/showgrid/showgrid/internal/invoice/service"
	"github.com/showgrid/showgrid/internal/pricing"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	walletrepo "github.com/showgrid/showgrid/internal/wallet/repository"
	walletsvc "github.com/showgrid/showgrid/internal/wallet/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testTenantID snowflake.ID = 1001
	testUserID   snowflake.ID = 2001
)

func newTestService(t *testing.T) (billingdomain.Service, walletdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripForUpdate))
	require.NoError(t, db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripForUpdate))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&walletdomain.Wallet{},
		&walletdomain.LedgerEntry{},
		&walletdomain.Allocation{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	holder, err := config.NewStaticPricingHolder(config.DefaultPricingConfig())
	require.NoError(t, err)

	wallet := walletsvc.NewService(walletsvc.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  walletrepo.NewRepository(),
	})
	invoice := invoicesvc.NewService(invoicesvc.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  invoicerepo.NewRepository(),
	})
	svc := NewService(Params{
		DB:      db,
		Log:     log,
		Config:  config.Config{DefaultTaxRate: 0.18, DefaultCurrency: "INR"},
		Pricing: pricing.NewEngine(holder),

		WalletSvc:  wallet,
		InvoiceSvc: invoice,
	})
	return svc, wallet, db
}

func TestPurchaseTicketsCreditsAndInvoices(t *testing.T) {
	svc, wallet, _ := newTestService(t)

	result, err := svc.PurchaseTickets(context.Background(), billingdomain.PurchaseTicketsRequest{
		TenantID:          testTenantID,
		UserID:            testUserID,
		Quantity:          100,
		ExternalPaymentID: "pay_1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.UnitPriceCents)
	assert.Equal(t, int64(2500), result.TotalCents)
	assert.Equal(t, int64(100), result.Wallet.TicketBalance)

	assert.True(t, strings.HasPrefix(result.Invoice.InvoiceNumber, "INV-TIX-"))
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, result.Invoice.Status)
	assert.Equal(t, int64(2500), result.Invoice.SubtotalCents)
	assert.Equal(t, int64(450), result.Invoice.TaxAmountCents)
	assert.Equal(t, int64(2950), result.Invoice.TotalAmountCents)

	current, err := wallet.GetOrCreateWallet(context.Background(), testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), current.TicketBalance)
}

func TestPurchaseTicketsPendingWithoutPayment(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.PurchaseTickets(context.Background(), billingdomain.PurchaseTicketsRequest{
		TenantID: testTenantID,
		UserID:   testUserID,
		Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, result.Invoice.Status)
	assert.Equal(t, int64(30), result.UnitPriceCents)
}

func TestPurchaseTicketsValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PurchaseTickets(ctx, billingdomain.PurchaseTicketsRequest{UserID: testUserID, Quantity: 1})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidTenant)

	_, err = svc.PurchaseTickets(ctx, billingdomain.PurchaseTicketsRequest{TenantID: testTenantID, Quantity: 1})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidUser)

	_, err = svc.PurchaseTickets(ctx, billingdomain.PurchaseTicketsRequest{TenantID: testTenantID, UserID: testUserID})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidQuantity)
}

func TestQuoteTickets(t *testing.T) {
	svc, _, _ := newTestService(t)

	quote, err := svc.QuoteTickets(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, int64(20), quote.UnitPriceCents)
	assert.Equal(t, int64(19980), quote.TotalCents)
	assert.Equal(t, "INR", quote.Currency)

	_, err = svc.QuoteTickets(context.Background(), 0)
	assert.ErrorIs(t, err, billingdomain.ErrInvalidQuantity)
}

func TestPurchaseTicketsLedgerEntry(t *testing.T) {
	svc, _, db := newTestService(t)

	_, err := svc.PurchaseTickets(context.Background(), billingdomain.PurchaseTicketsRequest{
		TenantID:          testTenantID,
		UserID:            testUserID,
		Quantity:          50,
		ExternalPaymentID: "pay_9",
	})
	require.NoError(t, err)

	var entry walletdomain.LedgerEntry
	require.NoError(t, db.Where("entry_type = ?", walletdomain.EntryTypeManualPurchase).First(&entry).Error)
	assert.Equal(t, int64(50), entry.Delta)
	assert.Equal(t, "pay_9", entry.ReferenceID)
}
