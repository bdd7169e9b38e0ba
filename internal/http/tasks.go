package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/liftlog/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	runner        TaskRunner
	retentionDays int
}

// NewTasksController creates a new TasksController. retentionDays is
// used for cleanup runs that do not name their own.
func NewTasksController(runner TaskRunner, retentionDays int) *TasksController {
	return &TasksController{runner: runner, retentionDays: retentionDays}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

var taskTypes = []TaskTypeInfo{
	{
		Type:        tasks.CleanupAuditEventsQueue,
		Description: "Delete audit events older than the retention period",
	},
	{
		Type:        tasks.SeedExercisesQueue,
		Description: "Add missing default exercises to the library",
	},
}

type runTaskRequest struct {
	RetentionDays int `json:"retention_days" binding:"omitempty,min=1,max=3650"`
}

// RegisterRoutes registers the task endpoints.
func (tc *TasksController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/api/tasks/types", tc.ListTaskTypes)
	router.GET("/api/tasks/:id", tc.GetTaskStatus)
	router.POST("/api/tasks/:id/run", tc.RunTask)
}

// ListTaskTypes returns the task types registered with the queue.
// GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := make([]TaskTypeInfo, 0, len(taskTypes))
	for _, t := range taskTypes {
		if tc.runner.HasQueue(t.Type) {
			types = append(types, t)
		}
	}
	c.JSON(http.StatusOK, gin.H{"task_types": types})
}

// GetTaskStatus returns the state of one task.
// GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.runner.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == "not_found" {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": status,
	})
}

// RunTask enqueues a task of the given type.
// POST /api/tasks/:id/run where :id is the task type
func (tc *TasksController) RunTask(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}

	taskType := c.Param("id")
	if !tc.runner.HasQueue(taskType) {
		respondNotFound(c, "task type")
		return
	}

	var req runTaskRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	var task backlite.Task
	switch taskType {
	case tasks.CleanupAuditEventsQueue:
		days := req.RetentionDays
		if days == 0 {
			days = tc.retentionDays
		}
		task = tasks.CleanupAuditEventsTask{RetentionDays: days}
	case tasks.SeedExercisesQueue:
		task = tasks.SeedExercisesTask{}
	default:
		respondBadRequest(c, fmt.Sprintf("task type %s cannot be run manually", taskType))
		return
	}

	id, err := tc.runner.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	respondAccepted(c, "task enqueued", gin.H{
		"task_id": id,
		"type":    taskType,
	})
}
