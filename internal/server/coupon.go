package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	coupondomain "github.com/showgrid/showgrid/internal/coupon/domain"
)

type createCouponRequest struct {
	TenantID      string         `json:"tenant_id" binding:"required"`
	Code          string         `json:"code" binding:"required"`
	DiscountType  string         `json:"discount_type"`
	DiscountValue int64          `json:"discount_value"`
	TicketGrant   int64          `json:"ticket_grant"`
	UsageLimit    int64          `json:"usage_limit" binding:"required"`
	ValidFrom     time.Time      `json:"valid_from" binding:"required"`
	ValidUntil    time.Time      `json:"valid_until" binding:"required"`
	Metadata      map[string]any `json:"metadata"`
}

func (s *Server) CreateCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, coupondomain.ErrInvalidTenant)
		return
	}

	coupon, err := s.couponSvc.Create(c.Request.Context(), coupondomain.CreateCouponRequest{
		TenantID:      tenantID,
		Code:          req.Code,
		DiscountType:  coupondomain.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		TicketGrant:   req.TicketGrant,
		UsageLimit:    req.UsageLimit,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		Metadata:      req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}

type redeemCouponRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

func (s *Server) RedeemCoupon(c *gin.Context) {
	var req redeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, coupondomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(req.UserID)
	if err != nil {
		AbortWithError(c, coupondomain.ErrInvalidUser)
		return
	}

	result, err := s.couponSvc.Redeem(c.Request.Context(), coupondomain.RedeemRequest{
		TenantID: tenantID,
		UserID:   userID,
		Code:     req.Code,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) GetCoupon(c *gin.Context) {
	tenantID, err := parseSnowflakeID(c.Query("tenant_id"))
	if err != nil {
		AbortWithError(c, coupondomain.ErrInvalidTenant)
		return
	}

	coupon, err := s.couponSvc.GetByCode(c.Request.Context(), tenantID, c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}

type deactivateCouponRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
}

func (s *Server) DeactivateCoupon(c *gin.Context) {
	var req deactivateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, coupondomain.ErrInvalidTenant)
		return
	}

	coupon, err := s.couponSvc.Deactivate(c.Request.Context(), tenantID, c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}
