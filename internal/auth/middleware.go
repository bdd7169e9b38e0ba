package auth

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/config"
	"github.com/mrlokans/liftlog/internal/entities"
)

// Context keys for caller data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the caller was identified.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
	AuthTypeProxy   AuthType = "proxy"
)

// maxProxyIdentityLength matches the width of workouts.user_id.
const maxProxyIdentityLength = 255

// Middleware resolves the caller identity for every request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
// service and sessionManager may be nil outside local mode.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths: map[string]bool{
			"/health": true,
			"/ping":   true,
			"/login":  true,
			"/setup":  true,
		},
	}
}

// Handler returns the gin middleware for the configured mode.
func (m *Middleware) Handler() gin.HandlerFunc {
	switch m.config.Mode {
	case config.AuthModeLocal:
		return m.localHandler()
	case config.AuthModeProxy:
		return m.proxyHandler()
	case config.AuthModeNone:
		return m.singleUserHandler()
	default:
		return m.misconfiguredHandler()
	}
}

// misconfiguredHandler serves an unknown mode: nobody is authenticated and
// only public paths are reachable.
func (m *Middleware) misconfiguredHandler() gin.HandlerFunc {
	log.Printf("WARNING: unknown auth mode %q, rejecting all authenticated requests", m.config.Mode)

	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": ErrAuthRequired.Error(),
		})
	}
}

// singleUserHandler attributes every request to the configured default owner.
func (m *Middleware) singleUserHandler() gin.HandlerFunc {
	userID := m.config.DefaultUserID
	if userID == "" {
		userID = config.DefaultSingleUserID
	}

	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

// proxyHandler trusts the identity header set by an upstream identity-aware proxy.
func (m *Middleware) proxyHandler() gin.HandlerFunc {
	header := m.config.ProxyHeader
	if header == "" {
		header = config.DefaultProxyHeader
	}

	return func(c *gin.Context) {
		identity := strings.TrimSpace(c.GetHeader(header))
		if identity != "" && len(identity) <= maxProxyIdentityLength {
			c.Set(ContextKeyUserID, identity)
			c.Set(ContextKeyUsername, identity)
			c.Set(ContextKeyAuthType, AuthTypeProxy)
			c.Next()
			return
		}

		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		m.reject(c)
	}
}

// localHandler authenticates with bearer tokens first, then session cookies.
func (m *Middleware) localHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := m.tryBearerAuth(c); user != nil {
			m.setUserContext(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			m.setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		m.reject(c)
	}
}

func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	token, ok := bearerToken(c)
	if !ok || m.service == nil {
		return nil
	}

	user, err := m.service.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil || m.service == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == "" {
		return nil
	}

	user, err := m.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyAuthType, authType)
}

// reject answers API clients with 401 and browsers with a login redirect.
func (m *Middleware) reject(c *gin.Context) {
	if m.config.Mode == config.AuthModeProxy || isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": ErrAuthRequired.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
	c.Abort()
}

func (m *Middleware) isPublicPath(path string) bool {
	return m.publicPaths[path]
}

// RequireAuth rejects requests that reached it without a caller identity.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CallerID(c); !ok {
			m.reject(c)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.GetHeader("Authorization") != ""
}

// CallerID returns the identity resolved by the middleware.
// ok is false for anonymous requests.
func CallerID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}

// GetUsername retrieves the caller's display name, if any.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
