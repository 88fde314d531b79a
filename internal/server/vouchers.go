package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
)

type createBatchRequest struct {
	Count    int    `json:"count"`
	Profile  string `json:"profile"`
	BatchTag string `json:"batchTag"`
}

func (s *Server) CreateVoucherBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, badRequestError("invalid request body"))
		return
	}
	if req.Profile == "" {
		AbortWithError(c, badRequestError("profile is required"))
		return
	}

	result, err := s.voucherSvc.CreateBatch(c.Request.Context(), req.Count, req.Profile, req.BatchTag, actor(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if len(result.Failed) > 0 {
		// Partial success still reports what was created.
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

func (s *Server) ListVouchers(c *gin.Context) {
	filter := voucherdomain.Filter{
		Batch:   c.Query("batch"),
		Status:  voucherdomain.Status(c.Query("status")),
		Profile: c.Query("profile"),
	}
	vouchers, err := s.voucherSvc.ListFiltered(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": vouchers})
}

func (s *Server) ExportVouchersCSV(c *gin.Context) {
	filter := voucherdomain.Filter{
		Batch:   c.Query("batch"),
		Status:  voucherdomain.Status(c.Query("status")),
		Profile: c.Query("profile"),
	}
	vouchers, err := s.voucherSvc.ListFiltered(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="vouchers.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(s.voucherSvc.ExportCSV(vouchers)))
}

func (s *Server) ListRemoteUsers(c *gin.Context) {
	users, err := s.voucherSvc.FetchRemote(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type validateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) ValidateVoucher(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, badRequestError("invalid request body"))
		return
	}

	voucher, ok, err := s.voucherSvc.Validate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "profile": voucher.Profile})
}

func (s *Server) BlockVoucher(c *gin.Context) {
	voucher, err := s.voucherSvc.Block(c.Request.Context(), c.Param("username"), actor(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

func (s *Server) DeleteVoucher(c *gin.Context) {
	if err := s.voucherSvc.Delete(c.Request.Context(), c.Param("username"), actor(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type revokeBatchRequest struct {
	BatchTag string `json:"batchTag"`
}

func (s *Server) RevokeVoucherBatch(c *gin.Context) {
	var req revokeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BatchTag == "" {
		AbortWithError(c, badRequestError("batchTag is required"))
		return
	}

	revoked, err := s.voucherSvc.RevokeBatch(c.Request.Context(), req.BatchTag, actor(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batchTag": req.BatchTag, "revoked": revoked})
}
