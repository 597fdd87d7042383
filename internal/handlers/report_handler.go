package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"janmitra/internal/models"
	"janmitra/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// GET /reports/summary
func (h *ReportHandler) GetSummary(c *gin.Context) {
	data, err := h.Service.GetSummary(c.Request.Context(), getScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// GET /reports/sla?at_risk=true&warn=75
func (h *ReportHandler) ListOverdue(c *gin.Context) {
	scope := getScope(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	var tasks []models.Task
	var err error
	if c.Query("at_risk") == "true" {
		warn, _ := strconv.Atoi(c.DefaultQuery("warn", "0"))
		tasks, err = h.Service.ListAtRisk(c.Request.Context(), scope, warn, limit)
	} else {
		tasks, err = h.Service.ListOverdue(c.Request.Context(), scope, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /reports/leaderboard
func (h *ReportHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	users, err := h.Service.Leaderboard(c.Request.Context(), getScope(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}
