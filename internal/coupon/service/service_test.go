package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/showgrid/showgrid/internal/clock"
	"github.com/showgrid/showgrid/internal/coupon/domain"
	"github.com/showgrid/showgrid/internal/coupon/repository"
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

func newTestService(t *testing.T) (domain.Service, walletdomain.Service, *clock.FakeClock) {
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
		&domain.CouponCode{},
		&walletdomain.Wallet{},
		&walletdomain.LedgerEntry{},
		&walletdomain.Allocation{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	wallet := walletsvc.NewService(walletsvc.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  walletrepo.NewRepository(),
	})
	svc := NewService(Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  repository.NewRepository(),

		WalletSvc: wallet,
	})
	return svc, wallet, fakeClock
}

func createCoupon(t *testing.T, svc domain.Service, code string, limit int64, grant int64) domain.CouponCode {
	t.Helper()
	coupon, err := svc.Create(context.Background(), domain.CreateCouponRequest{
		TenantID:    testTenantID,
		Code:        code,
		TicketGrant: grant,
		UsageLimit:  limit,
		ValidFrom:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return coupon
}

func TestCreateCouponNormalizesCode(t *testing.T) {
	svc, _, _ := newTestService(t)

	coupon := createCoupon(t, svc, "  early-bird ", 5, 0)
	assert.Equal(t, "EARLY-BIRD", coupon.Code)
	assert.Equal(t, domain.DiscountTypePercent, coupon.DiscountType)
	assert.True(t, coupon.IsActive)
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	svc, _, _ := newTestService(t)

	createCoupon(t, svc, "LAUNCH", 5, 0)
	_, err := svc.Create(context.Background(), domain.CreateCouponRequest{
		TenantID:   testTenantID,
		Code:       "launch",
		UsageLimit: 5,
		ValidFrom:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrCouponCodeTaken)
}

func TestCreateCouponValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCouponRequest{TenantID: testTenantID, Code: "X", UsageLimit: 0,
		ValidFrom: time.Now(), ValidUntil: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidUsageLimit)

	_, err = svc.Create(ctx, domain.CreateCouponRequest{TenantID: testTenantID, Code: "X", UsageLimit: 1,
		ValidFrom: time.Now(), ValidUntil: time.Now().Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidValidity)

	_, err = svc.Create(ctx, domain.CreateCouponRequest{TenantID: testTenantID, Code: "X", UsageLimit: 1,
		DiscountType: "bogus",
		ValidFrom:    time.Now(), ValidUntil: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = svc.Create(ctx, domain.CreateCouponRequest{TenantID: testTenantID, Code: "X", UsageLimit: 1,
		DiscountType: domain.DiscountTypePercent, DiscountValue: 150,
		ValidFrom: time.Now(), ValidUntil: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)
}

func TestRedeemIncrementsUsedCount(t *testing.T) {
	svc, _, _ := newTestService(t)

	createCoupon(t, svc, "LAUNCH", 2, 0)

	result, err := svc.Redeem(context.Background(), domain.RedeemRequest{
		TenantID: testTenantID, UserID: testUserID, Code: "launch",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Coupon.UsedCount)
	assert.Nil(t, result.Wallet)
}

func TestRedeemGrantsTickets(t *testing.T) {
	svc, wallet, _ := newTestService(t)

	createCoupon(t, svc, "FREEBIE", 5, 25)

	result, err := svc.Redeem(context.Background(), domain.RedeemRequest{
		TenantID: testTenantID, UserID: testUserID, Code: "FREEBIE",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Wallet)
	assert.Equal(t, int64(25), result.Wallet.TicketBalance)

	current, err := wallet.GetOrCreateWallet(context.Background(), testTenantID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), current.TicketBalance)
}

func TestRedeemExhaustion(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	createCoupon(t, svc, "LAST-ONE", 1, 0)

	_, err := svc.Redeem(ctx, domain.RedeemRequest{TenantID: testTenantID, UserID: testUserID, Code: "LAST-ONE"})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, domain.RedeemRequest{TenantID: testTenantID, UserID: testUserID, Code: "LAST-ONE"})
	assert.ErrorIs(t, err, domain.ErrCouponExhausted)
}

func TestRedeemOutsideValidityWindow(t *testing.T) {
	svc, _, fakeClock := newTestService(t)
	ctx := context.Background()

	createCoupon(t, svc, "SUMMER", 5, 0)

	// Before the window opens.
	fakeClock.Advance(-45 * 24 * time.Hour)
	_, err := svc.Redeem(ctx, domain.RedeemRequest{TenantID: testTenantID, UserID: testUserID, Code: "SUMMER"})
	assert.ErrorIs(t, err, domain.ErrCouponNotStarted)

	// After it closes.
	fakeClock.Advance(120 * 24 * time.Hour)
	_, err = svc.Redeem(ctx, domain.RedeemRequest{TenantID: testTenantID, UserID: testUserID, Code: "SUMMER"})
	assert.ErrorIs(t, err, domain.ErrCouponExpired)
}

func TestRedeemInactiveCoupon(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	createCoupon(t, svc, "PAUSED", 5, 0)
	_, err := svc.Deactivate(ctx, testTenantID, "PAUSED")
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, domain.RedeemRequest{TenantID: testTenantID, UserID: testUserID, Code: "PAUSED"})
	assert.ErrorIs(t, err, domain.ErrCouponInactive)
}

func TestRedeemUnknownCode(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Redeem(context.Background(), domain.RedeemRequest{
		TenantID: testTenantID, UserID: testUserID, Code: "NOPE",
	})
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)
}
