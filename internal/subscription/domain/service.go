package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	tenantdomain "github.com/showgrid/showgrid/internal/tenant/domain"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
)

type PurchasePlanRequest struct {
	TenantID        snowflake.ID
	UserID          snowflake.ID
	PlanID          snowflake.ID
	PaymentMethodID string
	// ExternalPaymentID references the already-confirmed gateway payment.
	// Empty leaves the invoice pending (admin flows fill in a synthetic id).
	ExternalPaymentID string
}

// ProActivation is the tagged outcome of the pro-activation cascade: exactly
// one of Result or FailureReason is set. Deliberately non-fatal — attached to
// the purchase result, logged, retryable later, never an error.
type ProActivation struct {
	Result        *tenantdomain.CascadeResult `json:"result,omitempty"`
	FailureReason string                      `json:"failure_reason,omitempty"`
}

func (p ProActivation) Failed() bool { return p.FailureReason != "" }

type PurchasePlanResult struct {
	Subscription  Subscription          `json:"subscription"`
	Invoice       invoicedomain.Invoice `json:"invoice"`
	Wallet        walletdomain.Wallet   `json:"wallet"`
	ProActivation *ProActivation        `json:"pro_activation,omitempty"`
}

type CancelRequest struct {
	TenantID  snowflake.ID
	UserID    snowflake.ID
	Immediate bool
}

type Service interface {
	PurchasePlan(ctx context.Context, req PurchasePlanRequest) (PurchasePlanResult, error)
	CancelSubscription(ctx context.Context, req CancelRequest) (Subscription, error)
	// AdminGrantPlan resolves the plan by name and the tenant by id, then
	// runs the normal purchase path with a synthetic payment reference. It
	// skips payment collection, nothing else.
	AdminGrantPlan(ctx context.Context, tenantID snowflake.ID, planName string) (PurchasePlanResult, error)
	GetActive(ctx context.Context, tenantID, userID snowflake.ID) (Subscription, error)
}

var (
	ErrInvalidTenant         = errors.New("invalid_tenant")
	ErrInvalidUser           = errors.New("invalid_user")
	ErrInvalidBillingCycle   = errors.New("invalid_billing_cycle")
	ErrSubscriptionNotFound  = errors.New("subscription_not_found")
	ErrSubscriptionCancelled = errors.New("subscription_already_cancelled")
)
