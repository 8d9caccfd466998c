package middleware

import (
	"net/http"
	"strings"

	"sprintsync/internal/policy"
	"sprintsync/internal/util"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// AuthMiddleware verifies the bearer token and puts the caller identity
// into the request context. Verification is signature and expiry only;
// the store is not consulted here (the verify endpoint does its own
// freshness check).
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL query ?token=xxx (for export downloads where a header
		//    cannot be set)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, "Access token required")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(callerKey, policy.Caller{
			ID:       claims.UserID,
			Username: claims.Username,
			IsAdmin:  claims.IsAdmin,
		})
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers with 403. Must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, "Access token required")
			c.Abort()
			return
		}
		if !policy.CanAdminister(caller) {
			util.Error(c, http.StatusForbidden, "Access denied. Admin privileges required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCaller returns the authenticated caller stored by AuthMiddleware.
func GetCaller(c *gin.Context) (policy.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return policy.Caller{}, false
	}
	caller, ok := v.(policy.Caller)
	return caller, ok
}
