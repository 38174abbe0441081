package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/exam"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

// ErrorBody is the JSON error envelope: {"error": {"code", "message"}}.
func ErrorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// CurrentUser returns the user loaded by the auth middleware. Handlers
// behind AuthRequired may assume it is present.
func CurrentUser(c *gin.Context) *models.User {
	value, _ := c.Get("user")
	user, _ := value.(*models.User)
	return user
}

func actorFor(user *models.User) exam.Actor {
	return exam.Actor{ID: user.ID, Role: user.Role}
}

// respondError maps domain errors onto HTTP statuses. Everything not
// recognized is a generic server error with no leaked internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, exam.ErrTestNotFound), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorBody("NOT_FOUND", "Resource not found"))
	case errors.Is(err, exam.ErrInvalidAccessKey):
		c.JSON(http.StatusForbidden, ErrorBody("INVALID_ACCESS_KEY", "Invalid access key for test"))
	case errors.Is(err, exam.ErrAttemptCompleted):
		c.JSON(http.StatusConflict, ErrorBody("ATTEMPT_COMPLETED", "Attempt already completed"))
	case errors.Is(err, exam.ErrAttemptExpired):
		c.JSON(http.StatusConflict, ErrorBody("ATTEMPT_EXPIRED", "Attempt deadline has passed"))
	case errors.Is(err, repository.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, ErrorBody("CONFLICT", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, ErrorBody("INTERNAL_ERROR", "An unexpected error occurred"))
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}

func paginated(items interface{}, total int64, page, size int) gin.H {
	pages := (total + int64(size) - 1) / int64(size)
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
		"pages": pages,
	}
}
