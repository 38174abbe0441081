package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

func CreatePayment(ctx context.Context, payment *models.Payment) error {
	return database.DB.WithContext(ctx).Create(payment).Error
}

func GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := database.DB.WithContext(ctx).Preload("User").First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: payment %s", ErrNotFound, id)
	}
	return &payment, err
}

func ListPayments(ctx context.Context, userID string, status models.PaymentStatus, page, size int) ([]models.Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := database.DB.WithContext(ctx).Model(&models.Payment{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&payments).Error
	return payments, total, err
}

// UpdatePaymentStatus moves a payment to a new status; completing a
// payment also stamps paid_at and rolls the amount into the linked
// enrollment's paid total.
func UpdatePaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %s", ErrNotFound, paymentID)
			}
			return err
		}

		fields := map[string]interface{}{"status": status}
		if status == models.PaymentCompleted && payment.PaidAt == nil {
			now := time.Now()
			fields["paid_at"] = &now
		}
		if err := tx.Model(&payment).Updates(fields).Error; err != nil {
			return err
		}

		if status == models.PaymentCompleted && payment.EnrollmentID != nil {
			return tx.Model(&models.Enrollment{}).
				Where("id = ?", *payment.EnrollmentID).
				Update("paid_amount", gorm.Expr("paid_amount + ?::numeric", payment.Amount)).Error
		}
		return nil
	})
}
