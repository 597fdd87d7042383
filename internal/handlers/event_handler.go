package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"janmitra/internal/models"
	"janmitra/internal/services"
)

type EventHandler struct {
	service services.EventService
}

func NewEventHandler(service services.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req struct {
		Title       string               `json:"title" binding:"required"`
		Type        string               `json:"type" binding:"required"`
		ScheduledAt string               `json:"scheduled_at" binding:"required"` // RFC3339
		Priority    models.EventPriority `json:"priority"`                        // normal|urgent
	}

	scope := getScope(c)
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[event][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_at (RFC3339)"})
		return
	}

	event := &models.Event{
		Title:       req.Title,
		Type:        req.Type,
		ScheduledAt: scheduledAt,
		Priority:    req.Priority,
	}
	created, err := h.service.Create(c.Request.Context(), scope, event)
	if err != nil {
		log.Printf("[event][create][err] type=%q: %v", req.Type, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[event][create][ok] id=%d type=%q chain_len=%d", created.ID, created.Type, len(created.Approvals))
	c.JSON(http.StatusCreated, created)
}

// GET /events
func (h *EventHandler) GetAll(c *gin.Context) {
	scope := getScope(c)
	events, err := h.service.GetAll(c.Request.Context(), scope)
	if err != nil {
		log.Printf("[event][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (h *EventHandler) GetByID(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	event, err := h.service.GetByID(c.Request.Context(), scope, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// POST /events/:id/approvals/:level/decide { "decision": "approve" | "reject" }
func (h *EventHandler) Decide(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level"})
		return
	}

	var body struct {
		Decision string `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var approve bool
	switch body.Decision {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be approve or reject"})
		return
	}

	event, err := h.service.Decide(c.Request.Context(), scope, id, level, approve)
	if err != nil {
		log.Printf("[event][decide][err] id=%d level=%d: %v", id, level, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[event][decide][ok] id=%d level=%d decision=%s status=%s", id, level, body.Decision, event.Status)
	c.JSON(http.StatusOK, event)
}
