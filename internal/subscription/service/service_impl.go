package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/showgrid/showgrid/internal/clock"
	"github.com/showgrid/showgrid/internal/config"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	obsmetrics "github.com/showgrid/showgrid/internal/observability/metrics"
	plandomain "github.com/showgrid/showgrid/internal/plan/domain"
	"github.com/showgrid/showgrid/internal/pricing"
	subscriptiondomain "github.com/showgrid/showgrid/internal/subscription/domain"
	tenantdomain "github.com/showgrid/showgrid/internal/tenant/domain"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     subscriptiondomain.Repository
	PlanRepo plandomain.Repository
	Pricing  *pricing.Engine

	WalletSvc  walletdomain.Service
	InvoiceSvc invoicedomain.Service
	TenantSvc  tenantdomain.Service
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.Config
	repo     subscriptiondomain.Repository
	planRepo plandomain.Repository
	pricing  *pricing.Engine

	walletSvc  walletdomain.Service
	invoiceSvc invoicedomain.Service
	tenantSvc  tenantdomain.Service
	metrics    *obsmetrics.Metrics
}

func NewService(p Params) subscriptiondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("subscription.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.Config,
		repo:     p.Repo,
		planRepo: p.PlanRepo,
		pricing:  p.Pricing,

		walletSvc:  p.WalletSvc,
		invoiceSvc: p.InvoiceSvc,
		tenantSvc:  p.TenantSvc,
		metrics:    p.Metrics,
	}
}

func (s *Service) PurchasePlan(ctx context.Context, req subscriptiondomain.PurchasePlanRequest) (subscriptiondomain.PurchasePlanResult, error) {
	if req.TenantID == 0 {
		return subscriptiondomain.PurchasePlanResult{}, subscriptiondomain.ErrInvalidTenant
	}
	if req.UserID == 0 {
		return subscriptiondomain.PurchasePlanResult{}, subscriptiondomain.ErrInvalidUser
	}

	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return subscriptiondomain.PurchasePlanResult{}, err
	}
	if plan == nil {
		return subscriptiondomain.PurchasePlanResult{}, plandomain.ErrPlanNotFound
	}
	if !plan.IsActive {
		return subscriptiondomain.PurchasePlanResult{}, plandomain.ErrPlanInactive
	}

	now := s.clock.Now()
	periodEnd, err := periodEndFor(plan.BillingCycle, now)
	if err != nil {
		return subscriptiondomain.PurchasePlanResult{}, err
	}

	var result subscriptiondomain.PurchasePlanResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := subscriptiondomain.Subscription{
			ID:              s.genID.Generate(),
			TenantID:        req.TenantID,
			UserID:          req.UserID,
			PlanID:          plan.ID,
			PeriodStart:     now,
			PeriodEnd:       periodEnd,
			PaymentMethodID: req.PaymentMethodID,
			Status:          subscriptiondomain.SubscriptionStatusActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Insert(ctx, tx, &sub); err != nil {
			return err
		}
		result.Subscription = sub

		if plan.InitialTickets > 0 {
			wallet, err := s.walletSvc.ApplyDeltaIn(ctx, tx, walletdomain.ApplyDeltaRequest{
				TenantID:      req.TenantID,
				UserID:        req.UserID,
				Delta:         plan.InitialTickets,
				EntryType:     walletdomain.EntryTypePlanPurchase,
				ReferenceType: "subscription",
				ReferenceID:   sub.ID.String(),
				Description:   fmt.Sprintf("initial tickets for plan %s", plan.Name),
			})
			if err != nil {
				return err
			}
			result.Wallet = wallet
		}

		invoice, err := s.invoiceSvc.CreateIn(ctx, tx, invoicedomain.CreateInvoiceRequest{
			TenantID: req.TenantID,
			UserID:   req.UserID,
			Purpose:  invoicedomain.PurposePlan,
			EntityID: sub.ID,
			Items: []invoicedomain.LineItem{{
				ItemType:        "plan",
				ItemName:        plan.Name,
				Quantity:        1,
				UnitPriceCents:  plan.PriceCents,
				TotalPriceCents: plan.PriceCents,
				Metadata:        map[string]any{"billing_cycle": string(plan.BillingCycle)},
			}},
			TaxRate:  s.cfg.DefaultTaxRate,
			Currency: plan.Currency,
			Metadata: map[string]any{"subscription_id": sub.ID.String()},
		})
		if err != nil {
			return err
		}
		if req.ExternalPaymentID != "" {
			invoice, err = s.invoiceSvc.MarkPaidIn(ctx, tx, invoice.InvoiceNumber, req.ExternalPaymentID)
			if err != nil {
				return err
			}
		}
		result.Invoice = invoice
		return nil
	})
	if err != nil {
		return subscriptiondomain.PurchasePlanResult{}, err
	}

	tier := s.pricing.ClassifyPlan(plan.Name)
	if s.metrics != nil {
		s.metrics.RecordPlanPurchase(string(tier))
	}

	// Subscription and invoice are committed. The cascade runs after the
	// fact and its failure is reported, never raised.
	if tier == pricing.PlanTierPro || tier == pricing.PlanTierPremium {
		result.ProActivation = s.runProActivation(ctx, req.TenantID, req.UserID, tier)
	}

	return result, nil
}

func (s *Service) runProActivation(ctx context.Context, tenantID, userID snowflake.ID, tier pricing.PlanTier) *subscriptiondomain.ProActivation {
	newAppID := fmt.Sprintf("%s-%d-%s", tier, tenantID, strings.Split(uuid.NewString(), "-")[0])

	cascade, err := s.tenantSvc.ActivatePro(ctx, tenantdomain.ActivateProRequest{
		TenantID:    tenantID,
		NewAppID:    newAppID,
		PlanTier:    string(tier),
		RequestedBy: userID,
	})
	if err != nil {
		s.log.Error("pro activation cascade failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("user_id", userID.String()),
			zap.String("attempted_app_id", newAppID),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordCascadeOutcome("failed")
		}
		return &subscriptiondomain.ProActivation{FailureReason: err.Error()}
	}

	s.log.Info("pro activation cascade succeeded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("old_app_id", cascade.OldAppID),
		zap.String("new_app_id", cascade.NewAppID),
		zap.Int64("total_rows_affected", cascade.TotalRowsAffected),
	)
	if s.metrics != nil {
		s.metrics.RecordCascadeOutcome("success")
	}
	return &subscriptiondomain.ProActivation{Result: &cascade}
}

// periodEndFor advances the period by one calendar unit. AddDate keeps the
// day-of-month where possible, so Jan 31 monthly lands on Mar 3 in a
// non-leap year rather than a synthetic "Feb 31".
func periodEndFor(cycle plandomain.BillingCycle, start time.Time) (time.Time, error) {
	switch cycle {
	case plandomain.BillingCycleMonthly:
		return start.AddDate(0, 1, 0), nil
	case plandomain.BillingCycleYearly:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, subscriptiondomain.ErrInvalidBillingCycle
	}
}

func (s *Service) CancelSubscription(ctx context.Context, req subscriptiondomain.CancelRequest) (subscriptiondomain.Subscription, error) {
	if req.TenantID == 0 {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidTenant
	}
	if req.UserID == 0 {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidUser
	}

	var sub subscriptiondomain.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindActiveForUpdate(ctx, tx, req.TenantID, req.UserID)
		if err != nil {
			return err
		}
		if current == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}

		now := s.clock.Now()
		if req.Immediate {
			cancelledAt := now
			if err := s.repo.UpdateStatus(ctx, tx, current.ID, subscriptiondomain.SubscriptionStatusCancelled, &cancelledAt, now); err != nil {
				return err
			}
			current.Status = subscriptiondomain.SubscriptionStatusCancelled
			current.CancelledAt = &cancelledAt
		} else {
			if current.Status == subscriptiondomain.SubscriptionStatusCancelAtPeriodEnd {
				return subscriptiondomain.ErrSubscriptionCancelled
			}
			if err := s.repo.UpdateStatus(ctx, tx, current.ID, subscriptiondomain.SubscriptionStatusCancelAtPeriodEnd, nil, now); err != nil {
				return err
			}
			current.Status = subscriptiondomain.SubscriptionStatusCancelAtPeriodEnd
		}
		sub = *current
		return nil
	})
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	return sub, nil
}

func (s *Service) AdminGrantPlan(ctx context.Context, tenantID snowflake.ID, planName string) (subscriptiondomain.PurchasePlanResult, error) {
	plan, err := s.planRepo.FindByName(ctx, planName)
	if err != nil {
		return subscriptiondomain.PurchasePlanResult{}, err
	}
	if plan == nil {
		return subscriptiondomain.PurchasePlanResult{}, plandomain.ErrPlanNotFound
	}

	tenant, err := s.tenantSvc.GetByID(ctx, tenantID)
	if err != nil {
		return subscriptiondomain.PurchasePlanResult{}, err
	}

	return s.PurchasePlan(ctx, subscriptiondomain.PurchasePlanRequest{
		TenantID:          tenant.ID,
		UserID:            tenant.OwnerUserID,
		PlanID:            plan.ID,
		PaymentMethodID:   "admin",
		ExternalPaymentID: fmt.Sprintf("admin-grant-%d", s.genID.Generate()),
	})
}

func (s *Service) GetActive(ctx context.Context, tenantID, userID snowflake.ID) (subscriptiondomain.Subscription, error) {
	sub, err := s.repo.FindActive(ctx, s.db, tenantID, userID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if sub == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotFound
	}
	return *sub, nil
}
