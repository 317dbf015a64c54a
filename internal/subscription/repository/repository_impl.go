package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/subscription/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, subscription *domain.Subscription) error {
	return db.WithContext(ctx).Create(subscription).Error
}

func (r *repository) FindActive(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND status IN ?", tenantID, userID, []domain.SubscriptionStatus{
			domain.SubscriptionStatusActive,
			domain.SubscriptionStatusCancelAtPeriodEnd,
		}).
		Order("period_start DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) FindActiveForUpdate(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT *
		 FROM subscriptions
		 WHERE tenant_id = ? AND user_id = ? AND status IN (?, ?)
		 ORDER BY period_start DESC
		 LIMIT 1
		 FOR UPDATE`,
		tenantID, userID,
		domain.SubscriptionStatusActive,
		domain.SubscriptionStatusCancelAtPeriodEnd,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repository) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.SubscriptionStatus, cancelledAt *time.Time, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions SET status = ?, cancelled_at = ?, updated_at = ? WHERE id = ?`,
		status, cancelledAt, now, id,
	).Error
}
