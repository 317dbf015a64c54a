// Package domain contains coupon code models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// CouponCode is a limited-use promotional code scoped to a tenant.
// used_count only moves forward and never past usage_limit.
type CouponCode struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID      `gorm:"not null;uniqueIndex:ux_coupon_codes_tenant_code,priority:1" json:"tenant_id"`
	Code          string            `gorm:"type:text;not null;uniqueIndex:ux_coupon_codes_tenant_code,priority:2" json:"code"`
	DiscountType  DiscountType      `gorm:"type:text;not null;default:'percent'" json:"discount_type"`
	DiscountValue int64             `gorm:"not null;default:0" json:"discount_value"`
	TicketGrant   int64             `gorm:"not null;default:0" json:"ticket_grant"`
	UsageLimit    int64             `gorm:"not null" json:"usage_limit"`
	UsedCount     int64             `gorm:"not null;default:0" json:"used_count"`
	ValidFrom     time.Time         `gorm:"not null" json:"valid_from"`
	ValidUntil    time.Time         `gorm:"not null" json:"valid_until"`
	IsActive      bool              `gorm:"not null;default:true" json:"is_active"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CouponCode) TableName() string { return "coupon_codes" }
