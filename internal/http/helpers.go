package http

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/liftlog/internal/civil"
	"github.com/mrlokans/liftlog/internal/database/workouts"
)

func init() {
	// Report JSON field names in validation errors instead of Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

// respondValidationError sends a 400 with per-field details.
func respondValidationError(c *gin.Context, details []FieldError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Code:    "validation_failed",
		Details: details,
	})
}

// respondUnauthorized sends a 401 Unauthorized response.
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: message, Code: "conflict"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// respondWorkoutError maps repository errors onto HTTP responses.
func respondWorkoutError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, workouts.ErrUnauthorized):
		respondUnauthorized(c)
	case errors.Is(err, workouts.ErrNotFound):
		respondNotFound(c, "workout")
	case errors.Is(err, workouts.ErrEntryNotFound):
		respondNotFound(c, "workout exercise")
	case errors.Is(err, workouts.ErrSetNotFound):
		respondNotFound(c, "set")
	case errors.Is(err, workouts.ErrExerciseNotFound):
		respondNotFound(c, "exercise")
	case errors.Is(err, workouts.ErrOrderConflict), errors.Is(err, workouts.ErrSetNumberConflict):
		respondConflict(c, err.Error())
	case errors.Is(err, workouts.ErrInvalidRange), errors.Is(err, civil.ErrInvalidDate):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// parseDateQuery reads a required YYYY-MM-DD query parameter.
// Responds with 400 and returns false when it is missing or malformed.
func parseDateQuery(c *gin.Context, name string) (civil.Date, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		respondValidationError(c, []FieldError{{Field: name, Message: "is required"}})
		return civil.Date{}, false
	}
	d, err := civil.Parse(raw)
	if err != nil {
		respondValidationError(c, []FieldError{{Field: name, Message: civil.ErrInvalidDate.Error()}})
		return civil.Date{}, false
	}
	return d, true
}

// bindJSON decodes the request body into req and runs binding validation.
// Responds with 400 and returns false on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidationError(c, bindingErrors(err))
		return false
	}
	return true
}

// bindingErrors flattens validator output into field errors.
func bindingErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		return out
	}
	if errors.Is(err, civil.ErrInvalidDate) {
		return []FieldError{{Field: "date", Message: civil.ErrInvalidDate.Error()}}
	}
	return []FieldError{{Field: "body", Message: "malformed JSON"}}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "uuid":
		return "must be a UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
