package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"janmitra/internal/models"
	"janmitra/internal/repositories"
)

type OfficeHandler struct {
	repo repositories.OfficeRepository
}

func NewOfficeHandler(repo repositories.OfficeRepository) *OfficeHandler {
	return &OfficeHandler{repo: repo}
}

// POST /offices
func (h *OfficeHandler) Create(c *gin.Context) {
	var req struct {
		Name   string `json:"name" binding:"required"`
		Region string `json:"region"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	office := &models.Office{
		Name:      strings.TrimSpace(req.Name),
		Region:    strings.TrimSpace(req.Region),
		CreatedAt: time.Now(),
	}
	if err := h.repo.Store(c.Request.Context(), office); err != nil {
		log.Printf("[office][create][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create office"})
		return
	}
	log.Printf("[office][create][ok] id=%d name=%q", office.ID, office.Name)
	c.JSON(http.StatusCreated, office)
}

// GET /offices
func (h *OfficeHandler) List(c *gin.Context) {
	offices, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		log.Printf("[office][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list offices"})
		return
	}
	c.JSON(http.StatusOK, offices)
}

// GET /offices/:id
func (h *OfficeHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	office, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get office"})
		return
	}
	if office == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "office not found"})
		return
	}
	c.JSON(http.StatusOK, office)
}
