package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type distributeRequest struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Username  string `json:"username"`
}

func (s *Server) DistributeVoucher(c *gin.Context) {
	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		AbortWithError(c, badRequestError("username is required"))
		return
	}

	voucher, err := s.voucherSvc.Get(c.Request.Context(), req.Username)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.notifySvc.Distribute(c.Request.Context(), req.Channel, req.Recipient, voucher, actor(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": true, "channel": req.Channel})
}
