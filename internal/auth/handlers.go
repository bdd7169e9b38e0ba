package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/audit"
	"github.com/mrlokans/liftlog/internal/config"
	"github.com/mrlokans/liftlog/internal/entities"
)

// isLocalPath reports whether path is safe to redirect to (no open redirects).
func isLocalPath(path string) bool {
	switch {
	case path == "", !strings.HasPrefix(path, "/"):
		return false
	case strings.HasPrefix(path, "//"):
		return false
	case strings.Contains(path, "://"), strings.Contains(path, "\\"):
		return false
	}
	return true
}

// sanitizeRedirectPath returns path if it is local, otherwise "/".
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

type credentialsRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

type setupRequest struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func newUserResponse(u *entities.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// AuthController serves login, logout and first-user setup in local mode.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	auditor        *audit.Service
	rateLimiter    *RateLimiter

	// setupMu serializes setup so two requests cannot both create the first user.
	setupMu sync.Mutex
}

// NewAuthController creates a new authentication controller. auditor may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, auditor *audit.Service, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		auditor:        auditor,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginStatus)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/setup", ac.SetupStatus)
	router.POST("/setup", ac.Setup)
}

// Stop releases the rate limiter's background goroutine.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// LoginStatus tells a client whether it is logged in and hands out a CSRF token.
// GET /login
func (ac *AuthController) LoginStatus(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers(c.Request.Context())
	if err != nil {
		log.Printf("Failed to count users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	_, authenticated := CallerID(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated":  authenticated,
		"setup_required": !hasUsers,
		"csrf_token":     GetCSRFToken(c),
		"next":           sanitizeRedirectPath(c.Query("next")),
	})
}

// Login verifies credentials and starts a session.
// POST /login
func (ac *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts, try again later",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Username)
		ac.auditor.LogAuth("", "login_failed", clientIP, false)

		msg := "invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			msg = "account is locked, try again later"
		} else if !errors.Is(err, ErrUserNotFound) && !errors.Is(err, ErrInvalidPassword) {
			log.Printf("Login failed for %q: %v", req.Username, err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	ac.auditor.LogAuth(user.ID, "login", clientIP, true)

	c.JSON(http.StatusOK, gin.H{
		"user": newUserResponse(user),
		"next": sanitizeRedirectPath(req.Next),
	})
}

// Logout destroys the session.
// POST /logout
func (ac *AuthController) Logout(c *gin.Context) {
	if userID, ok := CallerID(c); ok {
		ac.auditor.LogAuth(userID, "logout", c.ClientIP(), true)
	}
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// SetupStatus reports whether the first account still has to be created.
// GET /setup
func (ac *AuthController) SetupStatus(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers(c.Request.Context())
	if err != nil {
		log.Printf("Failed to count users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"setup_required": !hasUsers,
		"csrf_token":     GetCSRFToken(c),
	})
}

// Setup creates the first local account and logs it in. Closed once any user exists.
// POST /setup
func (ac *AuthController) Setup(c *gin.Context) {
	ac.setupMu.Lock()
	defer ac.setupMu.Unlock()

	ctx := c.Request.Context()
	hasUsers, err := ac.service.HasUsers(ctx)
	if err != nil {
		log.Printf("Failed to count users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if hasUsers {
		c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		return
	}

	var req setupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	user, err := ac.service.CreateUser(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if isUserInputError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
			return
		}
		log.Printf("Failed to create first user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Failed to create session: %v", err)
	}
	ac.auditor.LogAuth(user.ID, "setup", c.ClientIP(), true)

	c.JSON(http.StatusCreated, gin.H{"user": newUserResponse(user)})
}

// isUserInputError reports validation failures that are safe to echo back.
func isUserInputError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired, ErrUsernameInvalid,
		ErrEmailRequired, ErrEmailInvalid,
		ErrPasswordRequired, ErrPasswordTooShort, ErrPasswordTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// APITokenController manages the caller's API token.
type APITokenController struct {
	service *Service
	auditor *audit.Service
}

// NewAPITokenController creates a new API token controller. auditor may be nil.
func NewAPITokenController(service *Service, auditor *audit.Service) *APITokenController {
	return &APITokenController{service: service, auditor: auditor}
}

// GenerateToken replaces the caller's API token and returns it once.
// POST /api/auth/token
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	token, err := tc.service.GenerateToken(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Failed to generate token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	tc.auditor.LogAuth(userID, "token_generate", c.ClientIP(), true)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken removes the caller's API token.
// DELETE /api/auth/token
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	if err := tc.service.RevokeToken(c.Request.Context(), userID); err != nil {
		log.Printf("Failed to revoke token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	tc.auditor.LogAuth(userID, "token_revoke", c.ClientIP(), true)

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

// Me describes the current caller in any auth mode.
// GET /api/auth/me
func Me(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"username":  GetUsername(c),
		"auth_type": GetAuthType(c),
	})
}
