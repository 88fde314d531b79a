package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	operatordomain "github.com/rapidwifi/zone/internal/operator/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	if !s.loginLimiter.Allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "too_many_attempts"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, badRequestError("invalid request body"))
		return
	}

	op, err := s.operatorSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": op.Username, "role": op.Role})
}

type createOperatorRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) CreateOperator(c *gin.Context) {
	var req createOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		AbortWithError(c, badRequestError("username and password are required"))
		return
	}

	op, err := s.operatorSvc.Create(c.Request.Context(), req.Username, req.Password, operatordomain.Role(req.Role))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

func (s *Server) ListOperators(c *gin.Context) {
	operators, err := s.operatorSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operators": operators})
}

func (s *Server) ActivateOperator(c *gin.Context) {
	if err := s.operatorSvc.Activate(c.Request.Context(), c.Param("username")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) DeactivateOperator(c *gin.Context) {
	if err := s.operatorSvc.Deactivate(c.Request.Context(), c.Param("username")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
