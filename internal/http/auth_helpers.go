package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/liftlog/internal/auth"
)

// requireCaller returns the identity resolved by the auth middleware.
// Responds with 401 and returns false for anonymous requests, so
// handlers never reach the repository without an owner.
func requireCaller(c *gin.Context) (string, bool) {
	userID, ok := auth.CallerID(c)
	if !ok {
		respondUnauthorized(c)
		return "", false
	}
	return userID, true
}
