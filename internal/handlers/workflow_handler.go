package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"janmitra/internal/models"
	"janmitra/internal/services"
)

type WorkflowHandler struct {
	service services.WorkflowService
}

func NewWorkflowHandler(service services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// POST /workflows
func (h *WorkflowHandler) Create(c *gin.Context) {
	var req struct {
		CategoryID       int64  `json:"category_id" binding:"required"`
		SubCategory      string `json:"sub_category"` // empty or "all" = catch-all
		SLADays          int    `json:"sla_days"`
		SLAHours         int    `json:"sla_hours"`
		WarningThreshold int    `json:"warning_threshold"`
		Steps            []struct {
			Sequence       int    `json:"sequence"`
			Title          string `json:"title" binding:"required"`
			Description    string `json:"description"`
			Required       *bool  `json:"required"`
			EstimatedHours int    `json:"estimated_hours"`
		} `json:"steps" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[workflow][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template := &models.WorkflowTemplate{
		CategoryID:       req.CategoryID,
		SubCategory:      req.SubCategory,
		SLADays:          req.SLADays,
		SLAHours:         req.SLAHours,
		WarningThreshold: req.WarningThreshold,
	}
	for _, s := range req.Steps {
		required := true
		if s.Required != nil {
			required = *s.Required
		}
		template.Steps = append(template.Steps, models.StepTemplate{
			Sequence:       s.Sequence,
			Title:          s.Title,
			Description:    s.Description,
			Required:       required,
			EstimatedHours: s.EstimatedHours,
		})
	}

	created, err := h.service.CreateTemplate(c.Request.Context(), template)
	if err != nil {
		log.Printf("[workflow][create][err] category_id=%d scope=%q: %v", req.CategoryID, req.SubCategory, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[workflow][create][ok] id=%d category_id=%d scope=%q steps=%d",
		created.ID, created.CategoryID, created.SubCategory, len(created.Steps))
	c.JSON(http.StatusCreated, created)
}

// GET /workflows
func (h *WorkflowHandler) List(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		log.Printf("[workflow][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list workflow templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GET /workflows/:id
func (h *WorkflowHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	template, err := h.service.GetTemplate(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, template)
}
