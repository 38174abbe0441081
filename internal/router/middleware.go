package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/auth"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/config"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/handlers"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

const userContextKey = "user"

// UserLoader resolves the bearer token to a live user record and stores
// it in the context. A token whose user no longer exists or was
// deactivated is treated as anonymous, so stale tokens cannot act.
func UserLoader(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.VerifyToken(tokenString, config.Conf.Auth.JWTSecret)
		if err != nil {
			c.Next()
			return
		}

		user, err := repository.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// AuthRequired rejects requests without a loaded user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(userContextKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorBody("AUTHENTICATION_FAILED", "Authentication required"))
			return
		}
		c.Next()
	}
}

// StaffRequired additionally requires a staff role.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(userContextKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorBody("AUTHENTICATION_FAILED", "Authentication required"))
			return
		}
		user := value.(*models.User)
		if !user.Role.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, handlers.ErrorBody("FORBIDDEN", "Staff role required"))
			return
		}
		c.Next()
	}
}
