package repository

import (
	"context"
	"fmt"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

func CreateNotification(ctx context.Context, notification *models.Notification) error {
	return database.DB.WithContext(ctx).Create(notification).Error
}

func ListNotificationsForUser(ctx context.Context, userID string, unreadOnly bool, page, size int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := database.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&notifications).Error
	return notifications, total, err
}

// MarkNotificationRead flips the read flag; only the owner may do it.
func MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	result := database.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	}
	return nil
}

func MarkNotificationSentToTelegram(ctx context.Context, notificationID string) error {
	return database.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("sent_to_telegram", true).Error
}
