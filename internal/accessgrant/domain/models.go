// Package domain holds the access grant model. Grants are written by the
// ticket delivery pipeline; this service only reads them for reporting.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AccessGrant struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	TicketID    snowflake.ID `gorm:"not null;index" json:"ticket_id"`
	Email       string       `gorm:"type:text;not null;index" json:"email"`
	CustomAppID string       `gorm:"type:text" json:"custom_app_id,omitempty"`
	GrantedAt   time.Time    `gorm:"not null;index" json:"granted_at"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AccessGrant) TableName() string { return "access_grants" }
