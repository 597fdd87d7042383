package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"janmitra/internal/authz"
	"janmitra/internal/models"
	"janmitra/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		RoleID   int    `json:"role_id"`
		OfficeID int64  `json:"office_id"`
	}
	scope := getScope(c)
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[user][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// only the super admin places users in another office
	officeID := req.OfficeID
	if scope.RoleID != authz.RoleSuperAdmin || officeID == 0 {
		officeID = scope.OfficeID
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		RoleID:   req.RoleID,
		OfficeID: officeID,
	}
	if err := h.service.CreateUserWithPassword(c.Request.Context(), user, req.Password); err != nil {
		log.Printf("[user][create][err] email=%q: %v", req.Email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[user][create][ok] id=%d role=%d office=%d", user.ID, user.RoleID, user.OfficeID)
	c.JSON(http.StatusCreated, user)
}

// GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	scope := getScope(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	users, err := h.service.ListUsers(c.Request.Context(), scope, limit, offset)
	if err != nil {
		log.Printf("[user][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /users/:id
func (h *UserHandler) GetUserByID(c *gin.Context) {
	scope := getScope(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	if user == nil || (!scope.AllOffices() && user.OfficeID != scope.OfficeID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
