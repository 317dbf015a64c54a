// Package domain contains the billing plan reference data.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillingCycle is the renewal interval of a plan.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// BillingPlan is immutable reference data, edited independently of purchases.
type BillingPlan struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"type:text;not null;uniqueIndex:ux_billing_plans_name" json:"name"`
	PriceCents     int64        `gorm:"not null" json:"price_cents"`
	Currency       string       `gorm:"type:text;not null" json:"currency"`
	BillingCycle   BillingCycle `gorm:"type:text;not null" json:"billing_cycle"`
	InitialTickets int64        `gorm:"not null;default:0" json:"initial_tickets"`
	IsActive       bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (BillingPlan) TableName() string { return "billing_plans" }
