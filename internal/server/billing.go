package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/showgrid/showgrid/internal/billing/domain"
)

func (s *Server) QuoteTickets(c *gin.Context) {
	quantity, err := parseOptionalInt64(c.Query("quantity"))
	if err != nil || quantity <= 0 {
		AbortWithError(c, billingdomain.ErrInvalidQuantity)
		return
	}

	quote, err := s.billingSvc.QuoteTickets(c.Request.Context(), quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

type purchaseTicketsRequest struct {
	TenantID          string `json:"tenant_id" binding:"required"`
	UserID            string `json:"user_id" binding:"required"`
	Quantity          int64  `json:"quantity" binding:"required"`
	ExternalPaymentID string `json:"external_payment_id"`
}

func (s *Server) PurchaseTickets(c *gin.Context) {
	var req purchaseTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(req.UserID)
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidUser)
		return
	}

	result, err := s.billingSvc.PurchaseTickets(c.Request.Context(), billingdomain.PurchaseTicketsRequest{
		TenantID:          tenantID,
		UserID:            userID,
		Quantity:          req.Quantity,
		ExternalPaymentID: req.ExternalPaymentID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
