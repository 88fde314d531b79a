package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) StatsOverview(c *gin.Context) {
	overview, err := s.statsSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) ListProfiles(c *gin.Context) {
	profiles, err := s.profileSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}
