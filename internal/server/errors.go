package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	notifydomain "github.com/rapidwifi/zone/internal/notify/domain"
	operatordomain "github.com/rapidwifi/zone/internal/operator/domain"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	profiledomain "github.com/rapidwifi/zone/internal/profile/domain"
	routerdomain "github.com/rapidwifi/zone/internal/router/domain"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type invalidRequest struct {
	msg string
}

func (e *invalidRequest) Error() string { return e.msg }

func badRequestError(msg string) error {
	return &invalidRequest{msg: msg}
}

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

		status, msg := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: msg})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	var ir *invalidRequest
	if errors.As(err, &ir) {
		return http.StatusBadRequest, ir.msg
	}

	switch {
	case errors.Is(err, voucherdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, profiledomain.ErrProfileNotFound),
		errors.Is(err, operatordomain.ErrOperatorNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, voucherdomain.ErrDuplicateIdentity),
		errors.Is(err, operatordomain.ErrDuplicateUsername),
		errors.Is(err, paymentdomain.ErrVoucherNotSellable):
		return http.StatusConflict, err.Error()

	case voucherdomain.IsInvalidTransition(err):
		return http.StatusConflict, err.Error()

	case errors.Is(err, paymentdomain.ErrSignatureMismatch):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, operatordomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()

	case paymentdomain.IsAmountMismatch(err),
		errors.Is(err, voucherdomain.ErrInvalidCount),
		errors.Is(err, profiledomain.ErrUnpricedProfile),
		errors.Is(err, operatordomain.ErrInvalidRole),
		errors.Is(err, notifydomain.ErrUnknownChannel),
		errors.Is(err, notifydomain.ErrChannelDisabled),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, routerdomain.ErrChannelUnavailable),
		errors.Is(err, voucherdomain.ErrRemoteRejected):
		return http.StatusBadGateway, err.Error()
	}

	return http.StatusInternalServerError, "internal_error"
}
