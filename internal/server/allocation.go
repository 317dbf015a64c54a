package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
)

type createAllocationRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
	TicketID string `json:"ticket_id" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

func (s *Server) CreateAllocation(c *gin.Context) {
	var req createAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, userID, ticketID, err := parseAllocationIDs(req.TenantID, req.UserID, req.TicketID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	allocation, err := s.walletSvc.Allocate(c.Request.Context(), walletdomain.AllocateRequest{
		TenantID: tenantID,
		UserID:   userID,
		TicketID: ticketID,
		Quantity: req.Quantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

type updateAllocationRequest struct {
	TenantID    string `json:"tenant_id" binding:"required"`
	UserID      string `json:"user_id" binding:"required"`
	NewQuantity int64  `json:"new_quantity" binding:"required"`
}

func (s *Server) UpdateAllocation(c *gin.Context) {
	var req updateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, userID, ticketID, err := parseAllocationIDs(req.TenantID, req.UserID, c.Param("ticketId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	allocation, err := s.walletSvc.UpdateAllocation(c.Request.Context(), walletdomain.UpdateAllocationRequest{
		TenantID:    tenantID,
		UserID:      userID,
		TicketID:    ticketID,
		NewQuantity: req.NewQuantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

type allocationActorRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
	Quantity int64  `json:"quantity"`
}

func (s *Server) ReleaseAllocation(c *gin.Context) {
	var req allocationActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, userID, ticketID, err := parseAllocationIDs(req.TenantID, req.UserID, c.Param("ticketId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.walletSvc.ReleaseAllocation(c.Request.Context(), tenantID, userID, ticketID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) ConsumeAllocated(c *gin.Context) {
	var req allocationActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenantID, userID, ticketID, err := parseAllocationIDs(req.TenantID, req.UserID, c.Param("ticketId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	allocation, err := s.walletSvc.ConsumeAllocated(c.Request.Context(), tenantID, userID, ticketID, req.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

func (s *Server) GetAllocation(c *gin.Context) {
	tenantID, userID, ticketID, err := parseAllocationIDs(c.Query("tenant_id"), c.Query("user_id"), c.Param("ticketId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	allocation, err := s.walletSvc.GetAllocation(c.Request.Context(), tenantID, userID, ticketID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

func parseAllocationIDs(tenant, user, ticket string) (snowflake.ID, snowflake.ID, snowflake.ID, error) {
	tenantID, err := parseSnowflakeID(tenant)
	if err != nil {
		return 0, 0, 0, walletdomain.ErrInvalidTenant
	}
	userID, err := parseSnowflakeID(user)
	if err != nil {
		return 0, 0, 0, walletdomain.ErrInvalidUser
	}
	ticketID, err := parseSnowflakeID(ticket)
	if err != nil {
		return 0, 0, 0, walletdomain.ErrInvalidTicket
	}
	return tenantID, userID, ticketID, nil
}
