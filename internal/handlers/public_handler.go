package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"janmitra/internal/services"
)

// PublicHandler serves unauthenticated citizen-facing lookups.
type PublicHandler struct {
	tasks services.TaskService
}

func NewPublicHandler(tasks services.TaskService) *PublicHandler {
	return &PublicHandler{tasks: tasks}
}

// GET /public/track/:code
// Deliberately returns only the fields a citizen may see.
func (h *PublicHandler) Track(c *gin.Context) {
	code := c.Param("code")
	task, err := h.tasks.Track(c.Request.Context(), code)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	resp := gin.H{
		"tracking_code": task.TrackingCode,
		"status":        task.Status,
		"progress":      task.Progress,
		"created_at":    task.CreatedAt,
	}
	if task.CompletedAt != nil {
		resp["completed_at"] = task.CompletedAt
	}
	c.JSON(http.StatusOK, resp)
}
