package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CurrentUserID returns the signed-in user's ID placed on the context by the
// auth middleware. When no usable identity is present it writes a 401
// response and reports false; handlers return immediately in that case.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.UUID{}, false
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.UUID{}, false
	}
	return id, true
}
