package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
)

type initiatePaymentRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
	Phone    string `json:"phone"`
}

func (s *Server) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		AbortWithError(c, badRequestError("username is required"))
		return
	}

	payment, err := s.paymentSvc.Initiate(c.Request.Context(), req.Username, req.Amount, paymentdomain.MethodMobileMoney, req.Phone)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// PaymentCallback receives gateway confirmations. Both the signed production
// shape and the sandbox shape land here; the reconciler tells them apart.
func (s *Server) PaymentCallback(c *gin.Context) {
	var callback paymentdomain.Callback
	if err := c.ShouldBindJSON(&callback); err != nil {
		AbortWithError(c, badRequestError("invalid request body"))
		return
	}

	result, err := s.paymentSvc.Confirm(c.Request.Context(), callback)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cashSaleRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
}

func (s *Server) RecordCashSale(c *gin.Context) {
	var req cashSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		AbortWithError(c, badRequestError("username is required"))
		return
	}

	payment, err := s.paymentSvc.RecordCash(c.Request.Context(), actor(c), req.Username, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
