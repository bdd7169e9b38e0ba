package entities

import "time"

// AuditEventType groups audit events for filtering on /api/audit.
type AuditEventType string

const (
	AuditEventWorkout  AuditEventType = "workout"
	AuditEventExercise AuditEventType = "exercise"
	AuditEventAuth     AuditEventType = "auth"
)

// Entity kinds stored in AuditEvent.EntityType. Set and workout-exercise
// changes are filed under their parent workout.
const (
	AuditEntityWorkout  = "workout"
	AuditEntityExercise = "exercise"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one row of the append-only change log. Rows are only
// removed by the retention cleanup task.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"index:idx_audit_user_entity,priority:1;size:255" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"` // workout_create, set_add, login, ...
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"index:idx_audit_user_entity,priority:2;size:50" json:"entity_type"`
	EntityID    string         `gorm:"index:idx_audit_user_entity,priority:3;size:36" json:"entity_id,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// Succeeded reports whether the recorded action completed.
func (e AuditEvent) Succeeded() bool {
	return e.Status == AuditStatusSuccess
}
