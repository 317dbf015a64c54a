package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, plan *BillingPlan) error
	FindByID(ctx context.Context, id snowflake.ID) (*BillingPlan, error)
	FindByName(ctx context.Context, name string) (*BillingPlan, error)
	ListActive(ctx context.Context) ([]BillingPlan, error)
}

var (
	ErrPlanNotFound = errors.New("plan_not_found")
	ErrPlanInactive = errors.New("plan_inactive")
)
