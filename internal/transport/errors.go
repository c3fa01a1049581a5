package transport

import (
	"errors"
	"net/http"

	"event-ticketer/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps the business error taxonomy onto HTTP statuses with a
// stable "error" payload field. Everything in the taxonomy stems from caller
// input or entitlement, so nothing here is retried.
func respondError(c *gin.Context, err error) {
	var validation *entity.ValidationError
	var insufficient *entity.InsufficientAvailabilityError

	switch {
	case errors.Is(err, entity.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrPermissionDenied), errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrOrderNotFound),
		errors.Is(err, entity.ErrCartNotFound),
		errors.Is(err, entity.ErrCartItemNotFound),
		errors.Is(err, entity.ErrRoomNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrSoldOut):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     insufficient.Error(),
			"remaining": insufficient.Remaining,
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.Is(err, entity.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).Error("Internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
