package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/database/models"
	"fieldforce-system/internal/session"
	"fieldforce-system/internal/utils"
)

const sessionKey = "session"

// JWTAuth resolves the bearer token to a live session. Tokens outlive
// their session on logout, so both must be valid.
func JWTAuth(gate *session.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			abort(c, http.StatusUnauthorized, "Missing bearer token", "UNAUTHORIZED")
			return
		}
		claims, err := utils.ParseToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token", "UNAUTHORIZED")
			return
		}
		st, err := gate.Current(c.Request.Context(), claims.SessionID)
		if err != nil || st.User.ID != claims.UserId {
			abort(c, http.StatusUnauthorized, "Session has ended, please sign in again", "UNAUTHORIZED")
			return
		}

		c.Set(sessionKey, st)
		c.Set("user_id", st.User.ID)
		c.Set("role", string(st.User.Role))
		c.Next()
	}
}

// RequireAdmin must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access required", "FORBIDDEN")
			return
		}
		c.Next()
	}
}

func CurrentSession(c *gin.Context) session.State {
	if v, ok := c.Get(sessionKey); ok {
		if st, ok := v.(session.State); ok {
			return st
		}
	}
	return session.State{}
}

func CurrentUser(c *gin.Context) models.User {
	return CurrentSession(c).User
}

func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   code,
	})
}
