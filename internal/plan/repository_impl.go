package plan

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/showgrid/showgrid/internal/plan/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, plan *domain.BillingPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.BillingPlan, error) {
	var plan domain.BillingPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*domain.BillingPlan, error) {
	var plan domain.BillingPlan
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ListActive(ctx context.Context) ([]domain.BillingPlan, error) {
	var plans []domain.BillingPlan
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price_cents ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}
