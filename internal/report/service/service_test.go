package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accessgrantdomain "github.com/showgrid/showgrid/internal/accessgrant/domain"
	accessgrantrepo "github.com/showgrid/showgrid/internal/accessgrant/repository"
	"github.com/showgrid/showgrid/internal/clock"
	reportdomain "github.com/showgrid/showgrid/internal/report/domain"
	reportrepo "github.com/showgrid/showgrid/internal/report/repository"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	walletrepo "github.com/showgrid/showgrid/internal/wallet/repository"
	walletsvc "github.com/showgrid/showgrid/internal/wallet/service"
	"github.com/showgrid/showgrid/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	testTenantID snowflake.ID = 1001
	testUserID   snowflake.ID = 2001
	testTicketID snowflake.ID = 3001
)

func newFixture(t *testing.T) (reportdomain.Service, walletdomain.Service, *gorm.DB) {
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
		&accessgrantdomain.AccessGrant{},
	))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	log := zap.NewNop()

	wallet := walletsvc.NewService(walletsvc.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  walletrepo.NewRepository(),
	})
	svc := NewService(Params{
		DB:        db,
		Log:       log,
		Repo:      reportrepo.NewRepository(),
		GrantRepo: accessgrantrepo.NewRepository(),
	})
	return svc, wallet, db
}

func seedGrant(t *testing.T, db *gorm.DB, id snowflake.ID, ticketID snowflake.ID, email string, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&accessgrantdomain.AccessGrant{
		ID:        id,
		TenantID:  testTenantID,
		TicketID:  ticketID,
		Email:     email,
		GrantedAt: at,
		CreatedAt: at,
	}).Error)
}

func TestSalesReportSummary(t *testing.T) {
	svc, wallet, db := newFixture(t)
	ctx := context.Background()

	_, err := wallet.ApplyDelta(ctx, walletdomain.ApplyDeltaRequest{
		TenantID: testTenantID, UserID: testUserID, Delta: 100,
		EntryType: walletdomain.EntryTypeManualPurchase,
	})
	require.NoError(t, err)
	_, err = wallet.Consume(ctx, walletdomain.ConsumeRequest{
		TenantID: testTenantID, UserID: testUserID, Quantity: 30,
	})
	require.NoError(t, err)
	_, err = wallet.Allocate(ctx, walletdomain.AllocateRequest{
		TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 20,
	})
	require.NoError(t, err)

	at := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	seedGrant(t, db, 1, testTicketID, "a@example.com", at)
	seedGrant(t, db, 2, testTicketID, "b@example.com", at)

	resp, err := svc.SalesReport(ctx, reportdomain.SalesReportRequest{TenantID: testTenantID})
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.Summary.TicketsPurchased)
	assert.Equal(t, int64(30), resp.Summary.TicketsConsumed)
	assert.Equal(t, int64(20), resp.Summary.TicketsAllocated)
	assert.Equal(t, int64(2), resp.Summary.AccessGrants)

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, int64(20), resp.Rows[0].AllocatedQuantity)
	assert.Equal(t, int64(20), resp.Rows[0].AvailableQuantity)
}

func TestSalesReportFilters(t *testing.T) {
	svc, _, db := newFixture(t)
	ctx := context.Background()

	early := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	seedGrant(t, db, 1, testTicketID, "a@example.com", early)
	seedGrant(t, db, 2, testTicketID, "b@example.com", late)
	seedGrant(t, db, 3, 4002, "a@example.com", late)

	byTicket, err := svc.SalesReport(ctx, reportdomain.SalesReportRequest{
		TenantID: testTenantID, TicketID: testTicketID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byTicket.Summary.AccessGrants)

	byEmail, err := svc.SalesReport(ctx, reportdomain.SalesReportRequest{
		TenantID: testTenantID, Email: "a@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byEmail.Summary.AccessGrants)

	byWindow, err := svc.SalesReport(ctx, reportdomain.SalesReportRequest{
		TenantID: testTenantID,
		From:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byWindow.Summary.AccessGrants)
}

func TestSalesReportPagination(t *testing.T) {
	svc, _, db := newFixture(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 5; i++ {
		seedGrant(t, db, snowflake.ID(i), testTicketID, "a@example.com", at)
	}

	page1, err := svc.SalesReport(ctx, reportdomain.SalesReportRequest{
		TenantID:   testTenantID,
		Pagination: pagination.Pagination{PageSize: 3},
	})
	require.NoError(t, err)
	require.Len(t, page1.Rows, 3)
	require.True(t, page1.HasMore)

	page2, err := svc.SalesReport(ctx, reportdomain.SalesReportRequest{
		TenantID:   testTenantID,
		Pagination: pagination.Pagination{PageSize: 3, PageToken: page1.NextPageToken},
	})
	require.NoError(t, err)
	assert.Len(t, page2.Rows, 2)
	assert.False(t, page2.HasMore)
}

func TestSalesReportRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.SalesReport(context.Background(), reportdomain.SalesReportRequest{
		TenantID: testTenantID,
		From:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, reportdomain.ErrInvalidRange)
}
