package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"janmitra/internal/models"
	"janmitra/internal/services"
)

type CategoryHandler struct {
	service services.CategoryService
}

func NewCategoryHandler(service services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Value         string   `json:"value" binding:"required"`
		Label         string   `json:"label" binding:"required"`
		SubCategories []string `json:"sub_categories"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[category][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{
		Value:         req.Value,
		Label:         req.Label,
		SubCategories: req.SubCategories,
	}
	created, err := h.service.Create(c.Request.Context(), category)
	if err != nil {
		log.Printf("[category][create][err] value=%q: %v", req.Value, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[category][create][ok] id=%d value=%q", created.ID, created.Value)
	c.JSON(http.StatusCreated, created)
}

// GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		log.Printf("[category][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GET /categories/:id
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	category, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// PUT /categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Label         string   `json:"label"`
		SubCategories []string `json:"sub_categories"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.service.Update(c.Request.Context(), id, req.Label, req.SubCategories)
	if err != nil {
		log.Printf("[category][update][err] id=%d: %v", id, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[category][update][ok] id=%d", id)
	c.JSON(http.StatusOK, updated)
}

// DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		log.Printf("[category][delete][err] id=%d: %v", id, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[category][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}
