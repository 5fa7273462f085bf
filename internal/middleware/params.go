package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tasknest/internal/constants"
	apierrors "github.com/yukikurage/tasknest/internal/errors"
)

// RequireID parses the :id path parameter and stores it in the context.
// resource names the entity in the error message, e.g. "task".
func RequireID(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+resource+" ID")
			return
		}

		c.Set(constants.ContextKeyID, id)
		c.Next()
	}
}

// GetID retrieves the path ID stored by RequireID
func GetID(c *gin.Context) (uint64, bool) {
	id, exists := c.Get(constants.ContextKeyID)
	if !exists {
		return 0, false
	}

	switch v := id.(type) {
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
