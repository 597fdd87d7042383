package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"janmitra/internal/models"
	"janmitra/internal/pdf"
	"janmitra/internal/services"
)

type TaskHandler struct {
	service  services.TaskService
	receipts pdf.Generator
}

func NewTaskHandler(service services.TaskService, receipts pdf.Generator) *TaskHandler {
	return &TaskHandler{service: service, receipts: receipts}
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req struct {
		Title        string              `json:"title" binding:"required"`
		Description  string              `json:"description"`
		Category     string              `json:"category" binding:"required"`
		SubCategory  string              `json:"sub_category"`
		Priority     models.TaskPriority `json:"priority"` // low|medium|high
		Source       models.TaskSource   `json:"source"`   // walk_in|qr|ivr|bot|email
		AssigneeID   int                 `json:"assignee_id"`
		CitizenName  string              `json:"citizen_name"`
		CitizenEmail string              `json:"citizen_email"`
	}

	scope := getScope(c)
	log.Printf("[task][create] call by userID=%d role=%d office=%d", scope.UserID, scope.RoleID, scope.OfficeID)

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		SubCategory:  req.SubCategory,
		Priority:     req.Priority,
		Source:       req.Source,
		AssigneeID:   req.AssigneeID,
		CitizenName:  req.CitizenName,
		CitizenEmail: req.CitizenEmail,
	}

	created, err := h.service.Create(c.Request.Context(), scope, task)
	if err != nil {
		log.Printf("[task][create][err] category=%q sub=%q: %v", req.Category, req.SubCategory, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[task][create][ok] id=%d code=%s steps=%d", created.ID, created.TrackingCode, len(created.Steps))
	c.JSON(http.StatusCreated, created)
}

// GET /tasks
func (h *TaskHandler) GetAll(c *gin.Context) {
	scope := getScope(c)

	var filter models.TaskFilter
	if v, ok := c.GetQuery("status"); ok {
		st := models.TaskStatus(v)
		filter.Status = &st
	}
	if v, ok := c.GetQuery("priority"); ok {
		p := models.TaskPriority(v)
		filter.Priority = &p
	}
	if v, ok := c.GetQuery("category"); ok {
		cat := v
		filter.Category = &cat
	}
	if v, ok := c.GetQuery("source"); ok {
		src := models.TaskSource(v)
		filter.Source = &src
	}
	if v, ok := c.GetQuery("assignee_id"); ok {
		if id, err := strconv.Atoi(v); err == nil {
			filter.AssigneeID = &id
		} else {
			log.Printf("[task][list][warn] bad assignee_id=%q: %v", v, err)
		}
	}

	tasks, err := h.service.GetAll(c.Request.Context(), scope, filter)
	if err != nil {
		log.Printf("[task][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), scope, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	current, err := h.service.GetByID(c.Request.Context(), scope, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	var req struct {
		AssigneeID   *int                 `json:"assignee_id"`
		Title        *string              `json:"title"`
		Description  *string              `json:"description"`
		Priority     *models.TaskPriority `json:"priority"`
		CitizenName  *string              `json:"citizen_name"`
		CitizenEmail *string              `json:"citizen_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := *current
	if req.AssigneeID != nil {
		update.AssigneeID = *req.AssigneeID
	}
	if req.Title != nil {
		update.Title = *req.Title
	}
	if req.Description != nil {
		update.Description = *req.Description
	}
	if req.Priority != nil {
		update.Priority = *req.Priority
	}
	if req.CitizenName != nil {
		update.CitizenName = *req.CitizenName
	}
	if req.CitizenEmail != nil {
		update.CitizenEmail = *req.CitizenEmail
	}

	updated, err := h.service.Update(c.Request.Context(), scope, id, &update)
	if err != nil {
		log.Printf("[task][update][err] id=%d: %v", id, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[task][update][ok] id=%d", id)
	c.JSON(http.StatusOK, updated)
}

// DELETE /tasks/:id (soft)
func (h *TaskHandler) Delete(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, id); err != nil {
		log.Printf("[task][delete][err] id=%d: %v", id, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[task][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}

// POST /tasks/:id/status { "to": "completed" }
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body struct {
		To models.TaskStatus `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.ChangeStatus(c.Request.Context(), scope, id, body.To)
	if err != nil {
		log.Printf("[task][status][err] id=%d to=%q: %v", id, body.To, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[task][status][ok] id=%d new=%q", id, body.To)
	c.JSON(http.StatusOK, updated)
}

// GET /tasks/:id/steps
func (h *TaskHandler) ListSteps(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	steps, err := h.service.ListSteps(c.Request.Context(), scope, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, steps)
}

// POST /tasks/:id/steps/:step_id/complete { "notes": "..." }
func (h *TaskHandler) CompleteStep(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	stepID, err := strconv.ParseInt(c.Param("step_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step id"})
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.service.CompleteStep(c.Request.Context(), scope, id, stepID, body.Notes)
	if err != nil {
		log.Printf("[task][step][err] task=%d step=%d: %v", id, stepID, err)
		writeDomainError(c, err)
		return
	}
	log.Printf("[task][step][ok] task=%d step=%d progress=%d completed=%v side_effects=%d",
		id, stepID, result.Task.Progress, result.TaskCompleted, len(result.SideEffects))
	c.JSON(http.StatusOK, result)
}

// GET /tasks/:id/receipt
func (h *TaskHandler) Receipt(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), scope, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	path, err := h.receipts.GenerateReceipt(pdf.ReceiptData{
		TrackingCode: task.TrackingCode,
		Title:        task.Title,
		Category:     task.Category,
		SubCategory:  task.SubCategory,
		CitizenName:  task.CitizenName,
		Priority:     string(task.Priority),
		DueDate:      task.DueDate,
		CreatedAt:    task.CreatedAt,
	})
	if err != nil {
		log.Printf("[task][receipt][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate receipt"})
		return
	}
	c.FileAttachment(path, task.TrackingCode+".pdf")
}
