package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	plandomain "github.com/showgrid/showgrid/internal/plan/domain"
	subscriptiondomain "github.com/showgrid/showgrid/internal/subscription/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.planRepo.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type purchasePlanRequest struct {
	TenantID          string `json:"tenant_id" binding:"required"`
	UserID            string `json:"user_id" binding:"required"`
	PlanID            string `json:"plan_id" binding:"required"`
	PaymentMethodID   string `json:"payment_method_id"`
	ExternalPaymentID string `json:"external_payment_id"`
}

func (s *Server) PurchasePlan(c *gin.Context) {
	var req purchasePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(req.UserID)
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidUser)
		return
	}
	planID, err := parseSnowflakeID(req.PlanID)
	if err != nil {
		AbortWithError(c, plandomain.ErrPlanNotFound)
		return
	}

	result, err := s.subscriptionSvc.PurchasePlan(c.Request.Context(), subscriptiondomain.PurchasePlanRequest{
		TenantID:          tenantID,
		UserID:            userID,
		PlanID:            planID,
		PaymentMethodID:   req.PaymentMethodID,
		ExternalPaymentID: req.ExternalPaymentID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type cancelSubscriptionRequest struct {
	TenantID  string `json:"tenant_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	Immediate bool   `json:"immediate"`
}

func (s *Server) CancelSubscription(c *gin.Context) {
	var req cancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(req.UserID)
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidUser)
		return
	}

	sub, err := s.subscriptionSvc.CancelSubscription(c.Request.Context(), subscriptiondomain.CancelRequest{
		TenantID:  tenantID,
		UserID:    userID,
		Immediate: req.Immediate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (s *Server) GetActiveSubscription(c *gin.Context) {
	tenantID, err := parseSnowflakeID(c.Query("tenant_id"))
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(c.Query("user_id"))
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidUser)
		return
	}

	sub, err := s.subscriptionSvc.GetActive(c.Request.Context(), tenantID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

type adminGrantPlanRequest struct {
	PlanName string `json:"plan_name" binding:"required"`
}

func (s *Server) AdminGrantPlan(c *gin.Context) {
	tenantID, err := parseSnowflakeID(c.Param("tenantId"))
	if err != nil {
		AbortWithError(c, subscriptiondomain.ErrInvalidTenant)
		return
	}

	var req adminGrantPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.subscriptionSvc.AdminGrantPlan(c.Request.Context(), tenantID, req.PlanName)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
