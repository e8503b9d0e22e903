package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/services"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyTaskID = "task_id"
)

// RequireAuth validates the Bearer token and checks the user still exists
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer") {
			apierrors.Unauthorized(c, "Not authorized, no token provided")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		userID, err := auth.Authenticate(token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenMissing):
				apierrors.Unauthorized(c, "Not authorized, no token provided")
			case errors.Is(err, services.ErrTokenExpired):
				apierrors.Unauthorized(c, "Not authorized, token expired")
			default:
				apierrors.Unauthorized(c, "Not authorized, invalid token")
			}
			return
		}

		if _, err := auth.GetUser(c.Request.Context(), userID); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "Not authorized, user no longer exists")
				return
			}
			if apierrors.Respond(c, err) {
				return
			}
			slog.Error("auth user lookup failed", "error", err, "user_id", userID)
			apierrors.InternalError(c, "", err)
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
