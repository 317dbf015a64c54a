package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/showgrid/showgrid/internal/accessgrant"
	"github.com/showgrid/showgrid/internal/billing"
	billingdomain "github.com/showgrid/showgrid/internal/billing/domain"
	"github.com/showgrid/showgrid/internal/config"
	"github.com/showgrid/showgrid/internal/coupon"
	coupondomain "github.com/showgrid/showgrid/internal/coupon/domain"
	"github.com/showgrid/showgrid/internal/invoice"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	"github.com/showgrid/showgrid/internal/plan"
	plandomain "github.com/showgrid/showgrid/internal/plan/domain"
	"github.com/showgrid/showgrid/internal/pricing"
	"github.com/showgrid/showgrid/internal/report"
	reportdomain "github.com/showgrid/showgrid/internal/report/domain"
	"github.com/showgrid/showgrid/internal/subscription"
	subscriptiondomain "github.com/showgrid/showgrid/internal/subscription/domain"
	"github.com/showgrid/showgrid/internal/tenant"
	tenantdomain "github.com/showgrid/showgrid/internal/tenant/domain"
	"github.com/showgrid/showgrid/internal/wallet"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	pricing.Module,
	wallet.Module,
	plan.Module,
	invoice.Module,
	tenant.Module,
	subscription.Module,
	billing.Module,
	coupon.Module,
	accessgrant.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine

	walletSvc       walletdomain.Service
	subscriptionSvc subscriptiondomain.Service
	billingSvc      billingdomain.Service
	invoiceSvc      invoicedomain.Service
	tenantSvc       tenantdomain.Service
	couponSvc       coupondomain.Service
	reportSvc       reportdomain.Service
	planRepo        plandomain.Repository
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine

	WalletSvc       walletdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	BillingSvc      billingdomain.Service
	InvoiceSvc      invoicedomain.Service
	TenantSvc       tenantdomain.Service
	CouponSvc       coupondomain.Service
	ReportSvc       reportdomain.Service
	PlanRepo        plandomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,

		walletSvc:       p.WalletSvc,
		subscriptionSvc: p.SubscriptionSvc,
		billingSvc:      p.BillingSvc,
		invoiceSvc:      p.InvoiceSvc,
		tenantSvc:       p.TenantSvc,
		couponSvc:       p.CouponSvc,
		reportSvc:       p.ReportSvc,
		planRepo:        p.PlanRepo,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Plans --------
	v1.GET("/plans", s.ListPlans)

	// -------- Subscriptions --------
	v1.POST("/subscriptions/purchase", s.PurchasePlan)
	v1.POST("/subscriptions/cancel", s.CancelSubscription)
	v1.GET("/subscriptions/active", s.GetActiveSubscription)

	// -------- Ticket purchases --------
	v1.GET("/tickets/quote", s.QuoteTickets)
	v1.POST("/tickets/purchase", s.PurchaseTickets)
	v1.POST("/tickets/consume", s.ConsumeTickets)

	// -------- Wallet --------
	v1.GET("/wallet", s.GetWallet)
	v1.GET("/wallet/transactions", s.ListTransactions)

	// -------- Allocations --------
	v1.POST("/allocations", s.CreateAllocation)
	v1.PATCH("/allocations/:ticketId", s.UpdateAllocation)
	v1.POST("/allocations/:ticketId/release", s.ReleaseAllocation)
	v1.POST("/allocations/:ticketId/consume", s.ConsumeAllocated)
	v1.GET("/allocations/:ticketId", s.GetAllocation)

	// -------- Invoices --------
	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/:number", s.GetInvoiceByNumber)
	v1.POST("/invoices/:number/mark-paid", s.MarkInvoicePaid)

	// -------- Coupons --------
	v1.POST("/coupons", s.CreateCoupon)
	v1.POST("/coupons/redeem", s.RedeemCoupon)
	v1.GET("/coupons/:code", s.GetCoupon)
	v1.POST("/coupons/:code/deactivate", s.DeactivateCoupon)

	// -------- Reporting --------
	v1.GET("/reports/sales", s.SalesReport)

	// -------- Admin --------
	admin := s.engine.Group("/admin")
	admin.POST("/tenants/:tenantId/grant-plan", s.AdminGrantPlan)
}
