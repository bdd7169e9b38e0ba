package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/liftlog/internal/civil"
	"github.com/mrlokans/liftlog/internal/database/workouts"
	"github.com/mrlokans/liftlog/internal/entities"
)

// maxWeight matches the decimal(10,2) column.
var maxWeight = decimal.RequireFromString("99999999.99")

type createWorkoutRequest struct {
	Name *string    `json:"name" binding:"omitempty,max=255"`
	Date civil.Date `json:"date"`
}

type updateWorkoutRequest struct {
	Name *string     `json:"name" binding:"omitempty,max=255"`
	Date *civil.Date `json:"date"`
}

type addExerciseRequest struct {
	ExerciseID string  `json:"exercise_id" binding:"required,uuid"`
	Order      *int    `json:"order" binding:"omitempty,min=1"`
	Notes      *string `json:"notes" binding:"omitempty,max=1000"`
}

type addSetRequest struct {
	SetNumber *int            `json:"set_number" binding:"omitempty,min=1"`
	Reps      int             `json:"reps" binding:"required,min=1,max=1000"`
	Weight    decimal.Decimal `json:"weight"`
	Unit      string          `json:"unit" binding:"omitempty,oneof=kg lb"`
	RPE       *int            `json:"rpe" binding:"omitempty,min=1,max=10"`
	Notes     *string         `json:"notes" binding:"omitempty,max=1000"`
}

// WorkoutResponse is a workout with its display name resolved.
type WorkoutResponse struct {
	entities.Workout
	DisplayName string `json:"display_name"`
}

func newWorkoutResponse(w entities.Workout) WorkoutResponse {
	return WorkoutResponse{Workout: w, DisplayName: w.DisplayName()}
}

// WorkoutsController serves the owner-scoped workout API.
type WorkoutsController struct {
	store   WorkoutStore
	auditor AuditWriter
}

// NewWorkoutsController creates a new WorkoutsController. auditor may be a nil *audit.Service.
func NewWorkoutsController(store WorkoutStore, auditor AuditWriter) *WorkoutsController {
	return &WorkoutsController{store: store, auditor: auditor}
}

// RegisterRoutes registers the workout endpoints.
func (wc *WorkoutsController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/api/workouts", wc.ListByDate)
	router.POST("/api/workouts", wc.Create)
	router.GET("/api/workouts/:id", wc.Get)
	router.PATCH("/api/workouts/:id", wc.Update)
	router.DELETE("/api/workouts/:id", wc.Delete)
	router.POST("/api/workouts/:id/exercises", wc.AddExercise)
	router.DELETE("/api/workouts/:id/exercises/:entryId", wc.RemoveExercise)
	router.POST("/api/workouts/:id/exercises/:entryId/sets", wc.AddSet)
	router.DELETE("/api/workouts/:id/sets/:setId", wc.DeleteSet)
}

// ListByDate returns the caller's workouts on one calendar date, newest first.
// GET /api/workouts?date=YYYY-MM-DD
func (wc *WorkoutsController) ListByDate(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	list, err := wc.store.GetWorkoutsByDate(c.Request.Context(), userID, date)
	if err != nil {
		respondWorkoutError(c, err, "list workouts")
		return
	}

	resp := make([]WorkoutResponse, 0, len(list))
	for _, w := range list {
		resp = append(resp, newWorkoutResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     date,
		"workouts": resp,
	})
}

// Get returns one workout with its exercises and sets.
// GET /api/workouts/:id
func (wc *WorkoutsController) Get(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	w, err := wc.store.GetWorkoutByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWorkoutError(c, err, "get workout")
		return
	}
	c.JSON(http.StatusOK, newWorkoutResponse(*w))
}

// Create starts a new workout for the caller.
// POST /api/workouts
func (wc *WorkoutsController) Create(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req createWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Date.IsZero() {
		respondValidationError(c, []FieldError{{Field: "date", Message: "is required"}})
		return
	}

	w, err := wc.store.CreateWorkout(c.Request.Context(), userID, workouts.NewWorkout{
		Name: req.Name,
		Date: req.Date,
	})
	if err != nil {
		respondWorkoutError(c, err, "create workout")
		return
	}

	wc.auditor.LogWorkout(userID, "workout_create", w.ID,
		fmt.Sprintf("Created %q on %s", w.DisplayName(), w.Date), nil)
	respondCreated(c, newWorkoutResponse(*w))
}

// Update changes the name and/or date of one of the caller's workouts.
// A blank name clears it.
// PATCH /api/workouts/:id
func (wc *WorkoutsController) Update(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req updateWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil && req.Date == nil {
		respondValidationError(c, []FieldError{{Field: "body", Message: "name or date is required"}})
		return
	}
	if req.Date != nil && req.Date.IsZero() {
		respondValidationError(c, []FieldError{{Field: "date", Message: civil.ErrInvalidDate.Error()}})
		return
	}

	id := c.Param("id")
	w, err := wc.store.UpdateWorkout(c.Request.Context(), userID, id, workouts.WorkoutUpdate{
		Name: req.Name,
		Date: req.Date,
	})
	if err != nil {
		respondWorkoutError(c, err, "update workout")
		return
	}

	wc.auditor.LogWorkout(userID, "workout_update", w.ID,
		fmt.Sprintf("Updated %q on %s", w.DisplayName(), w.Date), nil)
	c.JSON(http.StatusOK, newWorkoutResponse(*w))
}

// Delete removes a workout with its exercises and sets.
// DELETE /api/workouts/:id
func (wc *WorkoutsController) Delete(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := wc.store.DeleteWorkout(c.Request.Context(), userID, id); err != nil {
		respondWorkoutError(c, err, "delete workout")
		return
	}

	wc.auditor.LogWorkout(userID, "workout_delete", id, "Deleted workout", nil)
	respondSuccess(c, "workout deleted")
}

// AddExercise appends a library exercise to a workout.
// POST /api/workouts/:id/exercises
func (wc *WorkoutsController) AddExercise(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req addExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	workoutID := c.Param("id")
	entry, err := wc.store.AddExercise(c.Request.Context(), userID, workoutID, workouts.NewWorkoutExercise{
		ExerciseID: req.ExerciseID,
		Order:      req.Order,
		Notes:      req.Notes,
	})
	if err != nil {
		respondWorkoutError(c, err, "add exercise")
		return
	}

	wc.auditor.LogWorkout(userID, "exercise_add", workoutID,
		fmt.Sprintf("Added %s at position %d", entry.Exercise.Name, entry.Order), nil)
	respondCreated(c, entry)
}

// RemoveExercise deletes an exercise entry and its sets.
// DELETE /api/workouts/:id/exercises/:entryId
func (wc *WorkoutsController) RemoveExercise(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	workoutID := c.Param("id")
	if err := wc.store.RemoveExercise(c.Request.Context(), userID, workoutID, c.Param("entryId")); err != nil {
		respondWorkoutError(c, err, "remove exercise")
		return
	}

	wc.auditor.LogWorkout(userID, "exercise_remove", workoutID, "Removed exercise "+c.Param("entryId"), nil)
	respondSuccess(c, "exercise removed")
}

// AddSet records a set for an exercise entry.
// POST /api/workouts/:id/exercises/:entryId/sets
func (wc *WorkoutsController) AddSet(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req addSetRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Weight.IsNegative() || req.Weight.GreaterThan(maxWeight) {
		respondValidationError(c, []FieldError{{Field: "weight", Message: "must be between 0 and 99999999.99"}})
		return
	}

	workoutID := c.Param("id")
	set, err := wc.store.AddSet(c.Request.Context(), userID, workoutID, c.Param("entryId"), workouts.NewSet{
		SetNumber: req.SetNumber,
		Reps:      req.Reps,
		Weight:    req.Weight.Round(2),
		Unit:      req.Unit,
		RPE:       req.RPE,
		Notes:     req.Notes,
	})
	if err != nil {
		respondWorkoutError(c, err, "add set")
		return
	}

	wc.auditor.LogWorkout(userID, "set_add", workoutID,
		fmt.Sprintf("Set %d: %d x %s %s", set.SetNumber, set.Reps, set.Weight.StringFixed(2), set.Unit), nil)
	respondCreated(c, set)
}

// DeleteSet removes one set from a workout.
// DELETE /api/workouts/:id/sets/:setId
func (wc *WorkoutsController) DeleteSet(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	workoutID := c.Param("id")
	if err := wc.store.DeleteSet(c.Request.Context(), userID, workoutID, c.Param("setId")); err != nil {
		respondWorkoutError(c, err, "delete set")
		return
	}

	wc.auditor.LogWorkout(userID, "set_delete", workoutID, "Deleted set "+c.Param("setId"), nil)
	respondSuccess(c, "set deleted")
}
