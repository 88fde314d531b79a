package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) ExportAuditCSV(c *gin.Context) {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="audit.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(s.auditSvc.ExportCSV(entries)))
}

func auditFilterFromQuery(c *gin.Context) (auditdomain.ListFilter, error) {
	filter := auditdomain.ListFilter{
		Action: strings.TrimSpace(c.Query("action")),
		Actor:  strings.TrimSpace(c.Query("actor")),
		Target: strings.TrimSpace(c.Query("target")),
	}

	if from := strings.TrimSpace(c.Query("from")); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return auditdomain.ListFilter{}, badRequestError("invalid from timestamp")
		}
		filter.From = &parsed
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return auditdomain.ListFilter{}, badRequestError("invalid to timestamp")
		}
		filter.To = &parsed
	}
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return auditdomain.ListFilter{}, badRequestError("invalid limit")
		}
		filter.Limit = n
	}
	return filter, nil
}
