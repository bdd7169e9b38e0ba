package http

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/liftlog/internal/audit"
	"github.com/mrlokans/liftlog/internal/auth"
	"github.com/mrlokans/liftlog/internal/config"
	"github.com/mrlokans/liftlog/internal/database"
	auditrepo "github.com/mrlokans/liftlog/internal/database/audit"
	"github.com/mrlokans/liftlog/internal/database/exercises"
	"github.com/mrlokans/liftlog/internal/database/users"
	"github.com/mrlokans/liftlog/internal/database/workouts"
)

type testApp struct {
	router    *Router
	db        *database.Database
	auditor   *audit.Service
	exercises *exercises.Repository
}

func newTestApp(t *testing.T, authCfg config.Auth) *testApp {
	t.Helper()

	db, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	lib := exercises.NewRepository(db.DB)
	_, err = lib.Seed(t.Context())
	require.NoError(t, err)

	auditor := audit.NewService(auditrepo.NewRepository(db.DB))
	workoutRepo := workouts.NewRepository(db.DB)

	cfg := RouterConfig{
		Database:   db,
		Workouts:   workoutRepo,
		Calendar:   workoutRepo,
		Exercises:  lib,
		Auditor:    auditor,
		AuthConfig: authCfg,
		Version:    "test",
	}

	if authCfg.Mode == config.AuthModeLocal {
		cfg.AuthService = auth.NewService(users.NewRepository(db.DB), authCfg)
		sqlDB, err := db.SQLDB()
		require.NoError(t, err)
		cfg.SessionManager, err = auth.NewSessionManager(sqlDB, authCfg)
		require.NoError(t, err)
		cfg.CSRFSecret = []byte("0123456789abcdef0123456789abcdef")
	}

	router := NewRouter(cfg)
	t.Cleanup(func() {
		router.Close()
		auditor.Wait()
	})

	return &testApp{router: router, db: db, auditor: auditor, exercises: lib}
}

func (a *testApp) do(method, path string, body any, user string) (int, map[string]any, string) {
	req := newJSONRequest(method, path, body)
	if user != "" {
		req.Header.Set(config.DefaultProxyHeader, user)
	}
	w := serve(a.router, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w.Code, decoded, w.Body.String()
}

func proxyAuthConfig() config.Auth {
	return config.Auth{Mode: config.AuthModeProxy, ProxyHeader: config.DefaultProxyHeader}
}

func TestRouter_ProxyModeOwnerIsolation(t *testing.T) {
	app := newTestApp(t, proxyAuthConfig())

	bench, err := app.exercises.GetExerciseByName(t.Context(), "Barbell Bench Press")
	require.NoError(t, err)

	code, created, body := app.do(http.MethodPost, "/api/workouts", map[string]any{"name": "Push", "date": "2026-03-14"}, "alice")
	require.Equal(t, http.StatusCreated, code, body)
	workoutID := created["id"].(string)
	assert.Equal(t, "alice", created["user_id"])

	code, entry, body := app.do(http.MethodPost, "/api/workouts/"+workoutID+"/exercises", map[string]any{"exercise_id": bench.ID}, "alice")
	require.Equal(t, http.StatusCreated, code, body)
	entryID := entry["id"].(string)
	assert.EqualValues(t, 1, entry["order"])

	code, set, body := app.do(http.MethodPost, "/api/workouts/"+workoutID+"/exercises/"+entryID+"/sets", map[string]any{"reps": 5, "weight": "100"}, "alice")
	require.Equal(t, http.StatusCreated, code, body)
	assert.EqualValues(t, 1, set["set_number"])
	assert.Equal(t, "kg", set["unit"])

	code, got, _ := app.do(http.MethodGet, "/api/workouts/"+workoutID, nil, "alice")
	require.Equal(t, http.StatusOK, code)
	items := got["workout_exercises"].([]any)
	require.Len(t, items, 1)
	sets := items[0].(map[string]any)["sets"].([]any)
	assert.Len(t, sets, 1)

	// Another owner cannot see, change or extend alice's workout.
	code, _, _ = app.do(http.MethodGet, "/api/workouts/"+workoutID, nil, "bob")
	assert.Equal(t, http.StatusNotFound, code)
	code, _, _ = app.do(http.MethodPatch, "/api/workouts/"+workoutID, map[string]any{"name": "Mine"}, "bob")
	assert.Equal(t, http.StatusNotFound, code)
	code, _, _ = app.do(http.MethodPost, "/api/workouts/"+workoutID+"/exercises", map[string]any{"exercise_id": bench.ID}, "bob")
	assert.Equal(t, http.StatusNotFound, code)
	code, _, _ = app.do(http.MethodDelete, "/api/workouts/"+workoutID, nil, "bob")
	assert.Equal(t, http.StatusNotFound, code)

	code, list, _ := app.do(http.MethodGet, "/api/workouts?date=2026-03-14", nil, "bob")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, list["workouts"])

	code, list, _ = app.do(http.MethodGet, "/api/workouts?date=2026-03-14", nil, "alice")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list["workouts"], 1)

	code, cal, _ := app.do(http.MethodGet, "/api/calendar?from=2026-03-01&to=2026-03-31", nil, "alice")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"2026-03-14"}, cal["dates"])

	app.auditor.Wait()
	code, history, _ := app.do(http.MethodGet, "/api/workouts/"+workoutID+"/history", nil, "alice")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, history["events"], 3)

	code, history, _ = app.do(http.MethodGet, "/api/workouts/"+workoutID+"/history", nil, "bob")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, history["events"])

	// Anonymous requests are rejected before reaching any store.
	code, _, _ = app.do(http.MethodGet, "/api/workouts?date=2026-03-14", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_SingleUserMode(t *testing.T) {
	app := newTestApp(t, config.Auth{Mode: config.AuthModeNone, DefaultUserID: config.DefaultSingleUserID})

	code, created, body := app.do(http.MethodPost, "/api/workouts", map[string]any{"date": "2026-03-14"}, "")
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, config.DefaultSingleUserID, created["user_id"])
	assert.Equal(t, "Workout", created["display_name"])

	code, me, _ := app.do(http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, config.DefaultSingleUserID, me["user_id"])

	code, lib, _ := app.do(http.MethodGet, "/api/exercises", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, len(exercises.DefaultLibrary), lib["total"])

	// Login routes only exist in local mode.
	code, _, _ = app.do(http.MethodGet, "/login", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_HealthAndSecurityHeaders(t *testing.T) {
	app := newTestApp(t, proxyAuthConfig())

	w := serve(app.router, newJSONRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database": "ok"`)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(app.router, newJSONRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_LocalModeRequiresSession(t *testing.T) {
	app := newTestApp(t, config.Auth{
		Mode:             config.AuthModeLocal,
		BcryptCost:       4,
		MaxLoginAttempts: 5,
	})

	code, _, _ := app.do(http.MethodGet, "/api/workouts?date=2026-03-14", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	// Proxy headers carry no weight outside proxy mode.
	code, _, _ = app.do(http.MethodGet, "/api/workouts?date=2026-03-14", nil, "alice")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, status, body := app.do(http.MethodGet, "/setup", nil, "")
	require.Equal(t, http.StatusOK, code, body)
	assert.NotEmpty(t, status["csrf_token"])
}
