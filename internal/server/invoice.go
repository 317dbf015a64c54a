package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	"github.com/showgrid/showgrid/pkg/db/pagination"
)

func (s *Server) ListInvoices(c *gin.Context) {
	tenantID, err := parseSnowflakeID(c.Query("tenant_id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidTenant)
		return
	}
	userID, err := parseOptionalSnowflakeID(c.Query("user_id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidUser)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
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

func (s *Server) GetInvoiceByNumber(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

type markInvoicePaidRequest struct {
	ExternalPaymentID string `json:"external_payment_id" binding:"required"`
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	var req markInvoicePaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	invoice, err := s.invoiceSvc.MarkPaid(c.Request.Context(), c.Param("number"), req.ExternalPaymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}
