// Package domain contains persistence models for plan subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelAtPeriodEnd SubscriptionStatus = "CANCEL_AT_PERIOD_END"
	SubscriptionStatusCancelled         SubscriptionStatus = "CANCELLED"
)

// Subscription captures one purchased plan period. Renewals create new rows;
// nothing is mutated except the status on cancellation.
type Subscription struct {
	ID              snowflake.ID       `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID       `gorm:"not null;index" json:"tenant_id"`
	UserID          snowflake.ID       `gorm:"not null;index" json:"user_id"`
	PlanID          snowflake.ID       `gorm:"not null;index" json:"plan_id"`
	PeriodStart     time.Time          `gorm:"not null" json:"period_start"`
	PeriodEnd       time.Time          `gorm:"not null" json:"period_end"`
	PaymentMethodID string             `gorm:"type:text" json:"payment_method_id,omitempty"`
	Status          SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	CancelledAt     *time.Time         `gorm:"" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
