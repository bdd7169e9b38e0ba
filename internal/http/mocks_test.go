package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/liftlog/internal/auth"
	"github.com/mrlokans/liftlog/internal/civil"
	"github.com/mrlokans/liftlog/internal/database/workouts"
	"github.com/mrlokans/liftlog/internal/entities"
)

const testUserID = "user-1"

// withCaller stands in for the auth middleware.
func withCaller(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(auth.ContextKeyUserID, userID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
		}
		c.Next()
	}
}

func newTestRouter(userID string) *gin.Engine {
	router := gin.New()
	router.Use(withCaller(userID))
	return router
}

func doRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	return resp
}

// mockWorkoutStore records the caller of every call and returns canned results.
type mockWorkoutStore struct {
	callers []string

	workouts    []entities.Workout
	workout     *entities.Workout
	entry       *entities.WorkoutExercise
	set         *entities.Set
	dates       []civil.Date
	err         error
	lastCreate  workouts.NewWorkout
	lastUpdate  workouts.WorkoutUpdate
	lastEntry   workouts.NewWorkoutExercise
	lastSet     workouts.NewSet
	lastDate    civil.Date
	lastRange   [2]civil.Date
	lastID      string
	lastChildID string
}

func (m *mockWorkoutStore) called(callerID string) {
	m.callers = append(m.callers, callerID)
}

func (m *mockWorkoutStore) GetWorkoutsByDate(_ context.Context, callerID string, date civil.Date) ([]entities.Workout, error) {
	m.called(callerID)
	m.lastDate = date
	return m.workouts, m.err
}

func (m *mockWorkoutStore) GetWorkoutByID(_ context.Context, callerID, id string) (*entities.Workout, error) {
	m.called(callerID)
	m.lastID = id
	return m.workout, m.err
}

func (m *mockWorkoutStore) CreateWorkout(_ context.Context, callerID string, in workouts.NewWorkout) (*entities.Workout, error) {
	m.called(callerID)
	m.lastCreate = in
	return m.workout, m.err
}

func (m *mockWorkoutStore) UpdateWorkout(_ context.Context, callerID, id string, upd workouts.WorkoutUpdate) (*entities.Workout, error) {
	m.called(callerID)
	m.lastID = id
	m.lastUpdate = upd
	return m.workout, m.err
}

func (m *mockWorkoutStore) DeleteWorkout(_ context.Context, callerID, id string) error {
	m.called(callerID)
	m.lastID = id
	return m.err
}

func (m *mockWorkoutStore) AddExercise(_ context.Context, callerID, workoutID string, in workouts.NewWorkoutExercise) (*entities.WorkoutExercise, error) {
	m.called(callerID)
	m.lastID = workoutID
	m.lastEntry = in
	return m.entry, m.err
}

func (m *mockWorkoutStore) RemoveExercise(_ context.Context, callerID, workoutID, entryID string) error {
	m.called(callerID)
	m.lastID = workoutID
	m.lastChildID = entryID
	return m.err
}

func (m *mockWorkoutStore) AddSet(_ context.Context, callerID, workoutID, entryID string, in workouts.NewSet) (*entities.Set, error) {
	m.called(callerID)
	m.lastID = workoutID
	m.lastChildID = entryID
	m.lastSet = in
	return m.set, m.err
}

func (m *mockWorkoutStore) DeleteSet(_ context.Context, callerID, workoutID, setID string) error {
	m.called(callerID)
	m.lastID = workoutID
	m.lastChildID = setID
	return m.err
}

func (m *mockWorkoutStore) ListDates(_ context.Context, callerID string, from, to civil.Date) ([]civil.Date, error) {
	m.called(callerID)
	m.lastRange = [2]civil.Date{from, to}
	return m.dates, m.err
}

type mockExerciseStore struct {
	exercises    []entities.Exercise
	exercise     *entities.Exercise
	err          error
	lastName     string
	lastCategory *string
}

func (m *mockExerciseStore) ListExercises(context.Context) ([]entities.Exercise, error) {
	return m.exercises, m.err
}

func (m *mockExerciseStore) GetExerciseByID(_ context.Context, id string) (*entities.Exercise, error) {
	return m.exercise, m.err
}

func (m *mockExerciseStore) CreateExercise(_ context.Context, name string, category *string) (*entities.Exercise, error) {
	m.lastName = name
	m.lastCategory = category
	return m.exercise, m.err
}

type auditCall struct {
	UserID   string
	Action   string
	EntityID string
}

// recordingAuditor captures audit writes.
type recordingAuditor struct {
	mu    sync.Mutex
	calls []auditCall
}

func (r *recordingAuditor) LogWorkout(userID, action, workoutID, _ string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, auditCall{UserID: userID, Action: action, EntityID: workoutID})
}

func (r *recordingAuditor) LogExercise(userID, action, exerciseID, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, auditCall{UserID: userID, Action: action, EntityID: exerciseID})
}

func (r *recordingAuditor) LogAuth(userID, action, _ string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "ok"
	if !success {
		status = "failed"
	}
	r.calls = append(r.calls, auditCall{UserID: userID, Action: action, EntityID: status})
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Action)
	}
	return out
}

type mockAuditReader struct {
	events     []entities.AuditEvent
	total      int64
	err        error
	lastUser   string
	lastType   entities.AuditEventType
	lastLimit  int
	lastOffset int
	lastEntity [2]string
}

func (m *mockAuditReader) GetEvents(userID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	m.lastUser = userID
	m.lastType = eventType
	m.lastLimit = limit
	m.lastOffset = offset
	return m.events, m.total, m.err
}

func (m *mockAuditReader) GetEntityHistory(userID, entityType, entityID string) ([]entities.AuditEvent, error) {
	m.lastUser = userID
	m.lastEntity = [2]string{entityType, entityID}
	return m.events, m.err
}

type mockTaskRunner struct {
	queues   map[string]bool
	enqueued []backlite.Task
	status   string
	err      error
}

func (m *mockTaskRunner) HasQueue(name string) bool {
	return m.queues[name]
}

func (m *mockTaskRunner) Enqueue(_ context.Context, task backlite.Task) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.enqueued = append(m.enqueued, task)
	return "task-42", nil
}

func (m *mockTaskRunner) Status(context.Context, string) (string, error) {
	return m.status, m.err
}

type mockPasswordChanger struct {
	err     error
	userID  string
	oldPass string
	newPass string
}

func (m *mockPasswordChanger) ChangePassword(_ context.Context, userID, oldPassword, newPassword string) error {
	m.userID = userID
	m.oldPass = oldPassword
	m.newPass = newPassword
	return m.err
}

func newJSONRequest(method, path string, body any) *http.Request {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}
