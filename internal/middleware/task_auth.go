package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/utils"
)

// RequireTaskID parses the :id path parameter. An id that cannot name a row
// is reported the same way as a missing task.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := utils.ParseID(c.Param("id"))
		if !ok {
			apierrors.NotFound(c, "Task not found")
			return
		}

		c.Set(ContextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID retrieves the task ID set by RequireTaskID
func GetTaskID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(ContextKeyTaskID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
