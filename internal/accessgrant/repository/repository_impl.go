package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/accessgrant/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func applyFilter(q *gorm.DB, filter domain.GrantFilter) *gorm.DB {
	if filter.TenantID != 0 {
		q = q.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.TicketID != 0 {
		q = q.Where("ticket_id = ?", filter.TicketID)
	}
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}
	if !filter.From.IsZero() {
		q = q.Where("granted_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("granted_at < ?", filter.To)
	}
	return q
}

func (r *repository) List(ctx context.Context, db *gorm.DB, filter domain.GrantFilter, afterID snowflake.ID, limit int) ([]domain.AccessGrant, error) {
	q := applyFilter(db.WithContext(ctx).Model(&domain.AccessGrant{}), filter)
	if afterID != 0 {
		q = q.Where("id < ?", afterID)
	}
	var grants []domain.AccessGrant
	if err := q.Order("id DESC").Limit(limit).Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *repository) Count(ctx context.Context, db *gorm.DB, filter domain.GrantFilter) (int64, error) {
	var count int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.AccessGrant{}), filter).Count(&count).Error
	return count, err
}
