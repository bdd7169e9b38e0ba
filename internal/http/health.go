package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"

	pingTimeout = 2 * time.Second
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// QueueState reports whether background workers are processing. Implemented by *tasks.Client.
type QueueState interface {
	Running() bool
}

// HealthController answers /health. Only the database decides the overall
// status; the task queue is informational.
type HealthController struct {
	db      Pinger
	queue   QueueState
	version string
	now     func() time.Time
}

// NewHealthController creates a health controller. db may be nil.
func NewHealthController(db Pinger, version string) *HealthController {
	return &HealthController{db: db, version: version, now: time.Now}
}

// WithQueue adds a "tasks" entry to the report.
func (h *HealthController) WithQueue(q QueueState) *HealthController {
	h.queue = q
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  healthy,
		Time:    h.now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"database": h.checkDatabase(c.Request.Context())},
	}
	if resp.Checks["database"] != "ok" && resp.Checks["database"] != "not configured" {
		resp.Status = unhealthy
	}

	if h.queue != nil {
		resp.Checks["tasks"] = "stopped"
		if h.queue.Running() {
			resp.Checks["tasks"] = "running"
		}
	}

	code := http.StatusOK
	if resp.Status != healthy {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// Ping is a liveness probe that never touches the store.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
