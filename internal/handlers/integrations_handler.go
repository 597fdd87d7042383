package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"janmitra/internal/authz"
	"janmitra/internal/models"
	"janmitra/internal/services"
)

// IntegrationsHandler is the Telegram webhook intake: citizen messages
// become grievances with source "bot".
type IntegrationsHandler struct {
	tasks           services.TaskService
	tg              *services.TelegramService
	officeID        int64
	defaultCategory string
}

func NewIntegrationsHandler(tasks services.TaskService, tg *services.TelegramService, officeID int64, defaultCategory string) *IntegrationsHandler {
	if defaultCategory == "" {
		defaultCategory = "general"
	}
	return &IntegrationsHandler{tasks: tasks, tg: tg, officeID: officeID, defaultCategory: defaultCategory}
}

// POST /integrations/telegram/webhook
func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	var upd services.TelegramUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		log.Printf("[tg][webhook][bind][err] %v", err)
		c.Status(http.StatusOK) // never make Telegram retry on bad payloads
		return
	}
	if upd.Message == nil || strings.TrimSpace(upd.Message.Text) == "" {
		c.Status(http.StatusOK)
		return
	}
	text := strings.TrimSpace(upd.Message.Text)
	if strings.HasPrefix(text, "/start") {
		_ = h.tg.SendMessage(upd.Message.Chat.ID,
			"Namaste! Describe your grievance in one message and we will register it.")
		c.Status(http.StatusOK)
		return
	}

	citizen := strings.TrimSpace(upd.Message.From.FirstName + " " + upd.Message.From.LastName)
	title := text
	if len(title) > 80 {
		title = title[:80]
	}

	// bot intake runs without a staff session; it files into the office the
	// bot is registered for, under the catch-all intake category
	scope := authz.Scope{UserID: 0, RoleID: authz.RoleFieldStaff, OfficeID: h.officeID}
	task := &models.Task{
		Title:       title,
		Description: text,
		Category:    h.defaultCategory,
		Source:      models.SourceBot,
		CitizenName: citizen,
	}

	created, err := h.tasks.Create(c.Request.Context(), scope, task)
	if err != nil {
		log.Printf("[tg][webhook][err] create task failed: %v", err)
		_ = h.tg.SendMessage(upd.Message.Chat.ID,
			"We could not register your grievance right now. Please try again later or visit the office.")
		c.Status(http.StatusOK)
		return
	}

	log.Printf("[tg][webhook][ok] task=%d code=%s chat=%d", created.ID, created.TrackingCode, upd.Message.Chat.ID)
	_ = h.tg.SendMessage(upd.Message.Chat.ID,
		"Your grievance is registered.\n• Reference: <code>"+created.TrackingCode+"</code>\nUse it to track progress.")
	c.Status(http.StatusOK)
}
