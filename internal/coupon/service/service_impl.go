package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/clock"
	"github.com/showgrid/showgrid/internal/coupon/domain"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"github.com/showgrid/showgrid/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository

	WalletSvc walletdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository

	walletSvc walletdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("coupon.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		walletSvc: p.WalletSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCouponRequest) (domain.CouponCode, error) {
	if req.TenantID == 0 {
		return domain.CouponCode{}, domain.ErrInvalidTenant
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.CouponCode{}, domain.ErrInvalidCode
	}
	if req.UsageLimit <= 0 {
		return domain.CouponCode{}, domain.ErrInvalidUsageLimit
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		return domain.CouponCode{}, domain.ErrInvalidValidity
	}

	discountType := req.DiscountType
	if discountType == "" {
		discountType = domain.DiscountTypePercent
	}
	switch discountType {
	case domain.DiscountTypePercent:
		if req.DiscountValue < 0 || req.DiscountValue > 100 {
			return domain.CouponCode{}, domain.ErrInvalidDiscount
		}
	case domain.DiscountTypeFixed:
		if req.DiscountValue < 0 {
			return domain.CouponCode{}, domain.ErrInvalidDiscount
		}
	default:
		return domain.CouponCode{}, domain.ErrInvalidDiscount
	}

	now := s.clock.Now()
	coupon := domain.CouponCode{
		ID:            s.genID.Generate(),
		TenantID:      req.TenantID,
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: req.DiscountValue,
		TicketGrant:   req.TicketGrant,
		UsageLimit:    req.UsageLimit,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
		Metadata:      req.Metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &coupon); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.CouponCode{}, domain.ErrCouponCodeTaken
		}
		return domain.CouponCode{}, err
	}
	return coupon, nil
}

func (s *Service) Redeem(ctx context.Context, req domain.RedeemRequest) (domain.RedeemResult, error) {
	if req.TenantID == 0 {
		return domain.RedeemResult{}, domain.ErrInvalidTenant
	}
	if req.UserID == 0 {
		return domain.RedeemResult{}, domain.ErrInvalidUser
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.RedeemResult{}, domain.ErrInvalidCode
	}

	var result domain.RedeemResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coupon, err := s.repo.FindByCodeForUpdate(ctx, tx, req.TenantID, code)
		if err != nil {
			return err
		}
		if coupon == nil {
			return domain.ErrCouponNotFound
		}
		if !coupon.IsActive {
			return domain.ErrCouponInactive
		}

		now := s.clock.Now()
		if now.Before(coupon.ValidFrom) {
			return domain.ErrCouponNotStarted
		}
		if now.After(coupon.ValidUntil) {
			return domain.ErrCouponExpired
		}
		if coupon.UsedCount >= coupon.UsageLimit {
			return domain.ErrCouponExhausted
		}

		if err := s.repo.IncrementUsedCount(ctx, tx, coupon.ID); err != nil {
			return err
		}
		coupon.UsedCount++
		result.Coupon = *coupon

		if coupon.TicketGrant > 0 {
			wallet, err := s.walletSvc.ApplyDeltaIn(ctx, tx, walletdomain.ApplyDeltaRequest{
				TenantID:      req.TenantID,
				UserID:        req.UserID,
				Delta:         coupon.TicketGrant,
				EntryType:     walletdomain.EntryTypeAdminGrant,
				ReferenceType: "coupon",
				ReferenceID:   coupon.ID.String(),
				Description:   fmt.Sprintf("coupon %s redeemed", coupon.Code),
			})
			if err != nil {
				return err
			}
			result.Wallet = &wallet
		}
		return nil
	})
	if err != nil {
		return domain.RedeemResult{}, err
	}
	return result, nil
}

func (s *Service) Deactivate(ctx context.Context, tenantID snowflake.ID, code string) (domain.CouponCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var out domain.CouponCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coupon, err := s.repo.FindByCodeForUpdate(ctx, tx, tenantID, code)
		if err != nil {
			return err
		}
		if coupon == nil {
			return domain.ErrCouponNotFound
		}
		if err := s.repo.SetActive(ctx, tx, coupon.ID, false); err != nil {
			return err
		}
		coupon.IsActive = false
		out = *coupon
		return nil
	})
	if err != nil {
		return domain.CouponCode{}, err
	}
	return out, nil
}

func (s *Service) GetByCode(ctx context.Context, tenantID snowflake.ID, code string) (domain.CouponCode, error) {
	coupon, err := s.repo.FindByCode(ctx, s.db, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return domain.CouponCode{}, err
	}
	if coupon == nil {
		return domain.CouponCode{}, domain.ErrCouponNotFound
	}
	return *coupon, nil
}
