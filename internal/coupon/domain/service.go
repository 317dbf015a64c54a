package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
)

type CreateCouponRequest struct {
	TenantID      snowflake.ID
	Code          string
	DiscountType  DiscountType
	DiscountValue int64
	TicketGrant   int64
	UsageLimit    int64
	ValidFrom     time.Time
	ValidUntil    time.Time
	Metadata      map[string]any
}

type RedeemRequest struct {
	TenantID snowflake.ID
	UserID   snowflake.ID
	Code     string
}

// RedeemResult reports a successful redemption. Wallet is set only when the
// coupon carried a ticket grant.
type RedeemResult struct {
	Coupon CouponCode           `json:"coupon"`
	Wallet *walletdomain.Wallet `json:"wallet,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateCouponRequest) (CouponCode, error)
	// Redeem consumes one use of the code. The used_count increment is guarded
	// against the usage limit under a row lock, so concurrent redemptions of
	// the last use cannot both succeed.
	Redeem(ctx context.Context, req RedeemRequest) (RedeemResult, error)
	Deactivate(ctx context.Context, tenantID snowflake.ID, code string) (CouponCode, error)
	GetByCode(ctx context.Context, tenantID snowflake.ID, code string) (CouponCode, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidCode       = errors.New("invalid_code")
	ErrInvalidDiscount   = errors.New("invalid_discount")
	ErrInvalidUsageLimit = errors.New("invalid_usage_limit")
	ErrInvalidValidity   = errors.New("invalid_validity_window")
	ErrCouponCodeTaken   = errors.New("coupon_code_taken")
	ErrCouponNotFound    = errors.New("coupon_not_found")
	ErrCouponInactive    = errors.New("coupon_inactive")
	ErrCouponNotStarted  = errors.New("coupon_not_started")
	ErrCouponExpired     = errors.New("coupon_expired")
	ErrCouponExhausted   = errors.New("coupon_exhausted")
)
