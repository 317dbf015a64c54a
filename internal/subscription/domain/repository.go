package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindActive(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*Subscription, error)
	FindActiveForUpdate(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*Subscription, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status SubscriptionStatus, cancelledAt *time.Time, now time.Time) error
}
