package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	coupondomain "github.com/showgrid/showgrid/internal/coupon/domain"
	invoicedomain "github.com/showgrid/showgrid/internal/invoice/domain"
	plandomain "github.com/showgrid/showgrid/internal/plan/domain"
	subscriptiondomain "github.com/showgrid/showgrid/internal/subscription/domain"
	tenantdomain "github.com/showgrid/showgrid/internal/tenant/domain"
	walletdomain "github.com/showgrid/showgrid/internal/wallet/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isInsufficientError(err):
		// 422: the request was well formed, the balance just does not cover it.
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "insufficient_balance",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isInvalidStateError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_state",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	if errors.Is(err, ErrInvalidRequest) {
		return true
	}
	// Domain validation sentinels all follow the invalid_* convention.
	if strings.HasPrefix(err.Error(), "invalid_") && !errors.Is(err, subscriptiondomain.ErrInvalidBillingCycle) {
		return true
	}
	return false
}

func isInsufficientError(err error) bool {
	return errors.Is(err, walletdomain.ErrInsufficientBalance) ||
		errors.Is(err, walletdomain.ErrInsufficientAllocation)
}

func isConflictError(err error) bool {
	return errors.Is(err, coupondomain.ErrCouponCodeTaken)
}

func isInvalidStateError(err error) bool {
	switch {
	case errors.Is(err, subscriptiondomain.ErrInvalidBillingCycle),
		errors.Is(err, subscriptiondomain.ErrSubscriptionCancelled),
		errors.Is(err, plandomain.ErrPlanInactive),
		errors.Is(err, coupondomain.ErrCouponInactive),
		errors.Is(err, coupondomain.ErrCouponNotStarted),
		errors.Is(err, coupondomain.ErrCouponExpired),
		errors.Is(err, coupondomain.ErrCouponExhausted):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, walletdomain.ErrWalletNotFound),
		errors.Is(err, walletdomain.ErrAllocationNotFound),
		errors.Is(err, plandomain.ErrPlanNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, tenantdomain.ErrTenantNotFound),
		errors.Is(err, coupondomain.ErrCouponNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
