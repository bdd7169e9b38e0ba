package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/liftlog/internal/entities"
)

func setupAuditRouter(userID string, reader AuditReader) *gin.Engine {
	router := newTestRouter(userID)
	controller := NewAuditController(reader)
	router.GET("/api/audit", controller.GetAuditEvents)
	router.GET("/api/workouts/:id/history", controller.GetWorkoutHistory)
	return router
}

func TestAuditController_GetAuditEvents(t *testing.T) {
	t.Run("pages through the caller's events", func(t *testing.T) {
		reader := &mockAuditReader{
			events: []entities.AuditEvent{{ID: 3, UserID: testUserID, Action: "set_add"}},
			total:  51,
		}
		router := setupAuditRouter(testUserID, reader)

		w := doRequest(router, http.MethodGet, "/api/audit?type=workout&page=3&limit=25", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Events      []entities.AuditEvent `json:"events"`
			Page        int                   `json:"page"`
			Limit       int                   `json:"limit"`
			TotalPages  int                   `json:"total_pages"`
			TotalEvents int64                 `json:"total_events"`
		}
		decodeJSON(t, w, &resp)
		assert.Len(t, resp.Events, 1)
		assert.Equal(t, 3, resp.Page)
		assert.Equal(t, 3, resp.TotalPages)
		assert.Equal(t, int64(51), resp.TotalEvents)

		assert.Equal(t, testUserID, reader.lastUser)
		assert.Equal(t, entities.AuditEventWorkout, reader.lastType)
		assert.Equal(t, 25, reader.lastLimit)
		assert.Equal(t, 50, reader.lastOffset)
	})

	t.Run("clamps paging parameters", func(t *testing.T) {
		reader := &mockAuditReader{}
		router := setupAuditRouter(testUserID, reader)

		w := doRequest(router, http.MethodGet, "/api/audit?page=-2&limit=5000", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 25, reader.lastLimit)
		assert.Equal(t, 0, reader.lastOffset)
		assert.Equal(t, entities.AuditEventType(""), reader.lastType)
		assert.Contains(t, w.Body.String(), `"total_pages":1`)
	})

	t.Run("rejects unknown event types", func(t *testing.T) {
		reader := &mockAuditReader{}
		router := setupAuditRouter(testUserID, reader)

		w := doRequest(router, http.MethodGet, "/api/audit?type=sync", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, reader.lastUser)
	})

	t.Run("hides reader errors", func(t *testing.T) {
		router := setupAuditRouter(testUserID, &mockAuditReader{err: errors.New("no such table: audit_events")})

		w := doRequest(router, http.MethodGet, "/api/audit", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "audit_events")
	})

	t.Run("requires caller", func(t *testing.T) {
		router := setupAuditRouter("", &mockAuditReader{})
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, http.MethodGet, "/api/audit", nil).Code)
	})
}

func TestAuditController_GetWorkoutHistory(t *testing.T) {
	reader := &mockAuditReader{events: []entities.AuditEvent{
		{ID: 2, Action: "set_add", EntityType: "workout", EntityID: "w-1"},
		{ID: 1, Action: "workout_create", EntityType: "workout", EntityID: "w-1"},
	}}
	router := setupAuditRouter(testUserID, reader)

	w := doRequest(router, http.MethodGet, "/api/workouts/w-1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []entities.AuditEvent `json:"events"`
	}
	decodeJSON(t, w, &resp)
	assert.Len(t, resp.Events, 2)
	assert.Equal(t, testUserID, reader.lastUser)
	assert.Equal(t, [2]string{"workout", "w-1"}, reader.lastEntity)
}
