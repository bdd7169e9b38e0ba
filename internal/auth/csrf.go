package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/mrlokans/liftlog/internal/entities"
)

// CSRFTokenHeader is the header API clients using cookie sessions send the token in.
const CSRFTokenHeader = "X-CSRF-Token"

const contextKeyCSRFToken = "csrf_token"

// TokenValidator checks bearer tokens. Implemented by *Service.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*entities.User, error)
}

// CSRFMiddleware protects cookie-authenticated unsafe requests.
// Requests carrying a valid bearer token are exempt: they cannot be forged
// by a third-party page. With a nil validator any bearer header is exempt.
func CSRFMiddleware(secret []byte, secure bool, validator TokenValidator) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c, validator) {
			c.Next()
			return
		}

		request := c.Request
		if !secure {
			request = csrf.PlaintextHTTPRequest(request)
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, request)

		// The error handler already wrote the response.
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing","code":"csrf_failed"}`))
}

func hasValidBearer(c *gin.Context, validator TokenValidator) bool {
	token, ok := bearerToken(c)
	if !ok {
		return false
	}
	if validator == nil {
		return true
	}
	_, err := validator.ValidateToken(c.Request.Context(), token)
	return err == nil
}

// GetCSRFToken retrieves the token for the current request, if CSRF protection ran.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(contextKeyCSRFToken)
}
