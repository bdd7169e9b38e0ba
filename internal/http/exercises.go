package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/database/exercises"
)

type createExerciseRequest struct {
	Name     string  `json:"name" binding:"required,max=255"`
	Category *string `json:"category" binding:"omitempty,max=100"`
}

// ExercisesController serves the shared exercise library.
type ExercisesController struct {
	store   ExerciseStore
	auditor AuditWriter
}

func NewExercisesController(store ExerciseStore, auditor AuditWriter) *ExercisesController {
	return &ExercisesController{store: store, auditor: auditor}
}

// RegisterRoutes registers the exercise library endpoints.
func (ec *ExercisesController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/api/exercises", ec.List)
	router.POST("/api/exercises", ec.Create)
	router.GET("/api/exercises/:id", ec.Get)
}

// List returns every exercise ordered by name.
// GET /api/exercises
func (ec *ExercisesController) List(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}

	list, err := ec.store.ListExercises(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list exercises")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exercises": list,
		"total":     len(list),
	})
}

// Get returns one library entry.
// GET /api/exercises/:id
func (ec *ExercisesController) Get(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}

	exercise, err := ec.store.GetExerciseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, exercises.ErrNotFound) {
			respondNotFound(c, "exercise")
			return
		}
		respondInternalError(c, err, "get exercise")
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// Create adds a library entry.
// POST /api/exercises
func (ec *ExercisesController) Create(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req createExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := ec.store.CreateExercise(c.Request.Context(), req.Name, req.Category)
	if err != nil {
		switch {
		case errors.Is(err, exercises.ErrNameRequired):
			respondValidationError(c, []FieldError{{Field: "name", Message: "is required"}})
		case errors.Is(err, exercises.ErrExerciseExists):
			respondConflict(c, err.Error())
		default:
			respondInternalError(c, err, "create exercise")
		}
		return
	}

	ec.auditor.LogExercise(userID, "exercise_create", exercise.ID, exercise.Name)
	respondCreated(c, exercise)
}
