package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"janmitra/internal/authz"
	"janmitra/internal/services"
)

// tolerant of the value type in the gin context (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID, roleID int) {
	if id, ok := getIntFromCtx(c, "user_id"); ok {
		userID = id
	}
	if id, ok := getIntFromCtx(c, "role_id"); ok {
		roleID = id
	}
	return
}

// getScope builds the caller's tenant scope from the auth claims.
func getScope(c *gin.Context) authz.Scope {
	userID, roleID := getUserAndRole(c)
	officeID := int64(0)
	if v, ok := getIntFromCtx(c, "office_id"); ok {
		officeID = int64(v)
	}
	return authz.Scope{UserID: userID, RoleID: roleID, OfficeID: officeID}
}

// writeDomainError maps engine errors onto HTTP responses so clients get
// an actionable message instead of a blanket 500.
func writeDomainError(c *gin.Context, err error) {
	var sv *services.SequenceViolationError
	if errors.As(err, &sv) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "sequence violation",
			"step":        sv.StepSequence,
			"predecessor": sv.PredecessorSequence,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrStepNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrTemplateConflict),
		errors.Is(err, services.ErrConcurrentModification),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrCategoryInUse),
		errors.Is(err, services.ErrApprovalChainExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrApprovalOutOfOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
