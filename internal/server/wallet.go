package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"github.com/showgrid/showgrid/pkg/db/pagination"
)

func (s *Server) GetWallet(c *gin.Context) {
	tenantID, err := parseSnowflakeID(c.Query("tenant_id"))
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(c.Query("user_id"))
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidUser)
		return
	}

	wallet, err := s.walletSvc.GetOrCreateWallet(c.Request.Context(), tenantID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

func (s *Server) ListTransactions(c *gin.Context) {
	tenantID, err := parseSnowflakeID(c.Query("tenant_id"))
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(c.Query("user_id"))
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidUser)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.walletSvc.ListTransactions(c.Request.Context(), walletdomain.ListTransactionsRequest{
		TenantID:   tenantID,
		UserID:     userID,
		Pagination: page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type consumeTicketsRequest struct {
	TenantID      string         `json:"tenant_id" binding:"required"`
	UserID        string         `json:"user_id" binding:"required"`
	Quantity      int64          `json:"quantity" binding:"required"`
	ReferenceType string         `json:"reference_type"`
	ReferenceID   string         `json:"reference_id"`
	Description   string         `json:"description"`
	Metadata      map[string]any `json:"metadata"`
}

func (s *Server) ConsumeTickets(c *gin.Context) {
	var req consumeTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, err := parseSnowflakeID(req.TenantID)
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidTenant)
		return
	}
	userID, err := parseSnowflakeID(req.UserID)
	if err != nil {
		AbortWithError(c, walletdomain.ErrInvalidUser)
		return
	}

	wallet, err := s.walletSvc.Consume(c.Request.Context(), walletdomain.ConsumeRequest{
		TenantID:      tenantID,
		UserID:        userID,
		Quantity:      req.Quantity,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		Metadata:      req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}
