package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/services"
)

type NotificationHandler struct {
	notifier *services.Notifier
	log      *zap.Logger
}

func NewNotificationHandler(notifier *services.Notifier, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := repository.ListNotificationsForUser(
		c.Request.Context(), CurrentUser(c).ID, unreadOnly, page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(notifications, total, page, size))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := repository.MarkNotificationRead(c.Request.Context(), c.Param("id"), CurrentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

type sendNotificationRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1"`
	Type    string   `json:"type"`
	Title   string   `json:"title" binding:"required"`
	Message string   `json:"message" binding:"required"`
}

// Send fans a notification out to the listed users. Each copy is
// persisted and, when the user has a linked Telegram chat, delivered
// there too. A failure for one recipient does not stop the rest.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req sendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	created := 0
	for _, userID := range req.UserIDs {
		_, err := h.notifier.Notify(c.Request.Context(), services.Message{
			UserID:  userID,
			Type:    req.Type,
			Title:   req.Title,
			Message: req.Message,
		})
		if err != nil {
			h.log.Warn("notification fan-out miss", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		created++
	}

	if created == 0 {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", "No notifications could be created"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created, "requested": len(req.UserIDs)})
}
