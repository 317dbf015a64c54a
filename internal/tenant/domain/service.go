package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type ActivateProRequest struct {
	TenantID    snowflake.ID
	NewAppID    string
	PlanTier    string
	RequestedBy snowflake.ID
}

// CascadeResult reports one scoping-identifier rewrite.
type CascadeResult struct {
	Success           bool   `json:"success"`
	OldAppID          string `json:"old_app_id"`
	NewAppID          string `json:"new_app_id"`
	TotalRowsAffected int64  `json:"total_rows_affected"`
}

// Activator is the pro-activation cascade as its consumers see it. Callers
// invoke it only after their own writes are durably committed, never let its
// failure propagate, and log the outcome.
type Activator interface {
	ActivatePro(ctx context.Context, req ActivateProRequest) (CascadeResult, error)
}

type Service interface {
	Activator

	GetOrCreateTenantForUser(ctx context.Context, userID snowflake.ID, name string) (Tenant, error)
	GetByID(ctx context.Context, id snowflake.ID) (Tenant, error)
}

var (
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidAppID   = errors.New("invalid_app_id")
	ErrTenantNotFound = errors.New("tenant_not_found")
)
