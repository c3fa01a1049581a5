package middleware

import (
	"errors"
	"net/http"
	"strconv"

	repository "event-ticketer/internal/database/postgres"
	"event-ticketer/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const userContextKey = "currentUser"

// Identity resolves the calling user from the X-User-ID header. Session and
// credential mechanics live outside this service; here a user is just a
// unique id with a role. Requests without a resolvable user proceed as
// anonymous and are rejected by handlers that require identity.
func Identity(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header == "" {
			c.Next()
			return
		}

		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			c.Next()
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), id)
		if errors.Is(err, entity.ErrUserNotFound) {
			logrus.WithField("user_id", id).Debug("Unknown user id in request")
			c.Next()
			return
		}
		// Only a missing user degrades to anonymous. A lookup failure must
		// surface as a server fault, not a permission error downstream.
		if err != nil {
			logrus.WithError(err).WithField("user_id", id).Error("Failed to resolve user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the resolved user for this request, or nil for an
// anonymous caller.
func CurrentUser(c *gin.Context) *entity.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*entity.User)
	if !ok {
		return nil
	}
	return user
}
