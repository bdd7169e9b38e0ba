package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/entities"
)

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{reader: reader}
}

// GetAuditEvents returns the caller's audit events, newest first.
// GET /api/audit?type=workout&page=1&limit=25
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit

	eventType := entities.AuditEventType(c.Query("type"))
	switch eventType {
	case "", entities.AuditEventWorkout, entities.AuditEventExercise, entities.AuditEventAuth:
	default:
		respondValidationError(c, []FieldError{{Field: "type", Message: "must be one of: workout exercise auth"}})
		return
	}

	events, total, err := ac.reader.GetEvents(userID, eventType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}

// GetWorkoutHistory returns the audit trail of one of the caller's workouts.
// Events are filtered by the caller, so another owner's workout yields an empty list.
// GET /api/workouts/:id/history
func (ac *AuditController) GetWorkoutHistory(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	events, err := ac.reader.GetEntityHistory(userID, entities.AuditEntityWorkout, c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "load workout history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
