package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/showgrid/showgrid/internal/report/domain"
	"github.com/showgrid/showgrid/pkg/db/pagination"
)

func (s *Server) SalesReport(c *gin.Context) {
	tenantID, err := parseSnowflakeID(c.Query("tenant_id"))
	if err != nil {
		AbortWithError(c, reportdomain.ErrInvalidTenant)
		return
	}
	ticketID, err := parseOptionalSnowflakeID(c.Query("ticket_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.reportSvc.SalesReport(c.Request.Context(), reportdomain.SalesReportRequest{
		TenantID:   tenantID,
		TicketID:   ticketID,
		Email:      c.Query("email"),
		From:       from,
		To:         to,
		Pagination: page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
