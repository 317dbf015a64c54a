// Package domain contains the tenant model and the pro-activation contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant is one producer account. CustomAppID is the scoping identifier
// stamped onto every tenant-owned row across the platform; pro activation
// rewrites it everywhere.
type Tenant struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	OwnerUserID snowflake.ID `gorm:"not null;uniqueIndex:ux_tenants_owner" json:"owner_user_id"`
	CustomAppID string       `gorm:"type:text;not null;index" json:"custom_app_id"`
	PlanTier    string       `gorm:"type:text;not null;default:'free'" json:"plan_tier"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// ScopedTable names one (table, column) pair the activation cascade rewrites.
type ScopedTable struct {
	Table  string
	Column string
}

// DefaultScopedTables lists the platform tables stamped with custom_app_id.
// Injected so deployments with extra tenant-scoped tables can extend it.
func DefaultScopedTables() []ScopedTable {
	return []ScopedTable{
		{Table: "events", Column: "custom_app_id"},
		{Table: "tickets", Column: "custom_app_id"},
		{Table: "ticket_sessions", Column: "custom_app_id"},
		{Table: "uploads", Column: "custom_app_id"},
		{Table: "chat_rooms", Column: "custom_app_id"},
		{Table: "access_grants", Column: "custom_app_id"},
	}
}
