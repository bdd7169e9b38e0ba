// Package audit records who changed what.
//
// Writes are fire-and-forget: callers on the request path use the Log*
// helpers, which persist in the background and only log failures. A nil
// *Service is valid and records nothing, which is how AUDIT_ENABLED=false
// is wired.
package audit

import (
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/liftlog/internal/database/audit"
	"github.com/mrlokans/liftlog/internal/entities"
)

const maxMessageLength = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	if s == nil {
		return nil
	}
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT] Failed to log %s event: %v", event.Action, err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogWorkout records a change to a workout or one of its children.
// Action is e.g. "workout_create", "set_add".
func (s *Service) LogWorkout(userID, action, workoutID, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventWorkout,
		Action:      action,
		Description: truncate(description, maxMessageLength),
		EntityType:  entities.AuditEntityWorkout,
		EntityID:    workoutID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxMessageLength)
	}

	s.LogAsync(event)
}

// LogExercise records a change to the shared exercise library.
func (s *Service) LogExercise(userID, action, exerciseID, name string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExercise,
		Action:      action,
		Description: truncate(name, maxMessageLength),
		EntityType:  entities.AuditEntityExercise,
		EntityID:    exerciseID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID, action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events for a user.
func (s *Service) GetEvents(userID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if s == nil {
		return []entities.AuditEvent{}, 0, nil
	}
	return s.repo.GetEvents(userID, eventType, limit, offset)
}

// GetEntityHistory returns every recorded change of one entity.
func (s *Service) GetEntityHistory(userID, entityType, entityID string) ([]entities.AuditEvent, error) {
	if s == nil {
		return []entities.AuditEvent{}, nil
	}
	return s.repo.GetEventsForEntity(userID, entityType, entityID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	if s == nil {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens s to at most maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	// Cut on a rune boundary so the stored text stays valid UTF-8.
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
