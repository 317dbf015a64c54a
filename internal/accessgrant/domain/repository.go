package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// GrantFilter narrows a grant listing. Zero values mean "no constraint".
type GrantFilter struct {
	TenantID snowflake.ID
	TicketID snowflake.ID
	Email    string
	From     time.Time
	To       time.Time
}

type Repository interface {
	List(ctx context.Context, db *gorm.DB, filter GrantFilter, afterID snowflake.ID, limit int) ([]AccessGrant, error)
	Count(ctx context.Context, db *gorm.DB, filter GrantFilter) (int64, error)
}
