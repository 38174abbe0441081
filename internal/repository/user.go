package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

func CreateUser(ctx context.Context, user *models.User) error {
	err := database.DB.WithContext(ctx).Create(user).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: phone %s already registered", ErrConflict, user.Phone)
	}
	return err
}

func GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return &user, err
}

func GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).First(&user, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: phone %s", ErrNotFound, phone)
	}
	return &user, err
}

func GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).First(&user, "telegram_chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no user linked to chat %d", ErrNotFound, chatID)
	}
	return &user, err
}

func ListUsers(ctx context.Context, role models.Role, page, size int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := database.DB.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&users).Error
	return users, total, err
}

func UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) error {
	result := database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

func LinkTelegramChat(ctx context.Context, userID string, chatID int64) error {
	return UpdateUser(ctx, userID, map[string]interface{}{"telegram_chat_id": chatID})
}

func DeleteUser(ctx context.Context, userID string) error {
	result := database.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}
