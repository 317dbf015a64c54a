package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/coupon/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, coupon *domain.CouponCode) error {
	return db.WithContext(ctx).Create(coupon).Error
}

func (r *repository) FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*domain.CouponCode, error) {
	var coupon domain.CouponCode
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) FindByCodeForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*domain.CouponCode, error) {
	var coupon domain.CouponCode
	err := db.WithContext(ctx).Raw(
		`SELECT *
		 FROM coupon_codes
		 WHERE tenant_id = ? AND code = ?
		 FOR UPDATE`,
		tenantID, code,
	).Scan(&coupon).Error
	if err != nil {
		return nil, err
	}
	if coupon.ID == 0 {
		return nil, nil
	}
	return &coupon, nil
}

func (r *repository) IncrementUsedCount(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE coupon_codes
		 SET used_count = used_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND used_count < usage_limit`,
		id,
	).Error
}

func (r *repository) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE coupon_codes SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, id,
	).Error
}
