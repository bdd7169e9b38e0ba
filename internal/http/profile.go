package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/auth"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=12,max=72"`
}

// AuthEventLogger records authentication events. Implemented by *audit.Service.
type AuthEventLogger interface {
	LogAuth(userID, action, ipAddr string, success bool)
}

// ProfileController handles the caller's own account settings in local mode.
type ProfileController struct {
	passwords PasswordChanger
	auditor   AuthEventLogger
}

// NewProfileController creates a new ProfileController. auditor may be a nil *audit.Service.
func NewProfileController(passwords PasswordChanger, auditor AuthEventLogger) *ProfileController {
	return &ProfileController{passwords: passwords, auditor: auditor}
}

// ChangePassword replaces the caller's password after checking the current one.
// POST /api/profile/password
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CurrentPassword == req.NewPassword {
		respondValidationError(c, []FieldError{{Field: "new_password", Message: "must differ from the current password"}})
		return
	}

	err := pc.passwords.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidPassword):
		pc.auditor.LogAuth(userID, "password_change", c.ClientIP(), false)
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "current password is incorrect", Code: "invalid_password"})
		return
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		respondValidationError(c, []FieldError{{Field: "new_password", Message: err.Error()}})
		return
	case errors.Is(err, auth.ErrUserNotFound):
		respondUnauthorized(c)
		return
	default:
		respondInternalError(c, err, "change password")
		return
	}

	pc.auditor.LogAuth(userID, "password_change", c.ClientIP(), true)
	respondSuccess(c, "password updated")
}
