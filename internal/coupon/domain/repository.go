package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, coupon *CouponCode) error
	FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*CouponCode, error)
	FindByCodeForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*CouponCode, error)
	IncrementUsedCount(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error
}
