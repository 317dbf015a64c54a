package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/showgrid/showgrid/internal/clock"
	"github.com/showgrid/showgrid/internal/wallet/domain"
	"github.com/showgrid/showgrid/internal/wallet/repository"
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

func newTestDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, db.AutoMigrate(&domain.Wallet{}, &domain.LedgerEntry{}, &domain.Allocation{}))
	return db
}

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClock,
		Repo:  repository.NewRepository(),
	})
	return svc, db, fakeClock
}

func credit(t *testing.T, svc domain.Service, amount int64) domain.Wallet {
	t.Helper()
	wallet, err := svc.ApplyDelta(context.Background(), domain.ApplyDeltaRequest{
		TenantID:  testTenantID,
		UserID:    testUserID,
		Delta:     amount,
		EntryType: domain.EntryTypeManualPurchase,
	})
	require.NoError(t, err)
	return wallet
}

func TestGetOrCreateWalletIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.TicketBalance)

	second, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestApplyDeltaValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ApplyDelta(ctx, domain.ApplyDeltaRequest{UserID: testUserID, Delta: 1, EntryType: domain.EntryTypeAdminGrant})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)

	_, err = svc.ApplyDelta(ctx, domain.ApplyDeltaRequest{TenantID: testTenantID, Delta: 1, EntryType: domain.EntryTypeAdminGrant})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = svc.ApplyDelta(ctx, domain.ApplyDeltaRequest{TenantID: testTenantID, UserID: testUserID, EntryType: domain.EntryTypeAdminGrant})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.ApplyDelta(ctx, domain.ApplyDeltaRequest{TenantID: testTenantID, UserID: testUserID, Delta: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidEntryType)
}

func TestConsumeWithinBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 50)

	wallet, err := svc.Consume(ctx, domain.ConsumeRequest{
		TenantID: testTenantID,
		UserID:   testUserID,
		Quantity: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), wallet.TicketBalance)

	// A second consume of 30 against 20 must fail and change nothing.
	_, err = svc.Consume(ctx, domain.ConsumeRequest{
		TenantID: testTenantID,
		UserID:   testUserID,
		Quantity: 30,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	current, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), current.TicketBalance)
}

func TestFailedDebitWritesNoLedgerEntry(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 10)

	_, err := svc.Consume(ctx, domain.ConsumeRequest{
		TenantID: testTenantID,
		UserID:   testUserID,
		Quantity: 11,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	var count int64
	require.NoError(t, db.Model(&domain.LedgerEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBalanceEqualsLedgerSum(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	credit(t, svc, 100)
	_, err := svc.Consume(ctx, domain.ConsumeRequest{TenantID: testTenantID, UserID: testUserID, Quantity: 25})
	require.NoError(t, err)
	_, err = svc.Allocate(ctx, domain.AllocateRequest{TenantID: testTenantID, UserID: testUserID, TicketID: testTicketID, Quantity: 40})
	require.NoError(t, err)
	_, err = svc.ReleaseAllocation(ctx, testTenantID, testUserID, testTicketID)
	require.NoError(t, err)

	wallet, err := svc.GetOrCreateWallet(ctx, testTenantID, testUserID)
	require.NoError(t, err)

	var sum *int64
	require.NoError(t, db.Model(&domain.LedgerEntry{}).
		Where("wallet_id = ?", wallet.ID).
		Select("SUM(delta)").Scan(&sum).Error)
	require.NotNil(t, sum)
	assert.Equal(t, wallet.TicketBalance, *sum)
	assert.Equal(t, int64(75), wallet.TicketBalance)
}

func TestListTransactionsPaginates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		credit(t, svc, 1)
	}

	page1, err := svc.ListTransactions(ctx, domain.ListTransactionsRequest{
		TenantID:   testTenantID,
		UserID:     testUserID,
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, page1.Entries, 2)
	require.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextPageToken)

	page2, err := svc.ListTransactions(ctx, domain.ListTransactionsRequest{
		TenantID:   testTenantID,
		UserID:     testUserID,
		Pagination: pagination.Pagination{PageSize: 2, PageToken: page1.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, page2.Entries, 2)
	require.True(t, page2.HasMore)

	page3, err := svc.ListTransactions(ctx, domain.ListTransactionsRequest{
		TenantID:   testTenantID,
		UserID:     testUserID,
		Pagination: pagination.Pagination{PageSize: 2, PageToken: page2.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, page3.Entries, 1)
	assert.False(t, page3.HasMore)

	// No overlap between pages.
	seen := map[snowflake.ID]bool{}
	for _, e := range append(append(page1.Entries, page2.Entries...), page3.Entries...) {
		require.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}
