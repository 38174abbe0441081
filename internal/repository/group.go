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

func CreateGroup(ctx context.Context, group *models.Group) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Course{}).Where("id = ?", group.CourseID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: course %s", ErrNotFound, group.CourseID)
		}
		return tx.Create(group).Error
	})
}

func GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := database.DB.WithContext(ctx).
		Preload("Course").
		First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, id)
	}
	return &group, err
}

func ListGroups(ctx context.Context, courseID string, page, size int) ([]models.Group, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := database.DB.WithContext(ctx).Model(&models.Group{})
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []models.Group
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&groups).Error
	return groups, total, err
}

func UpdateGroup(ctx context.Context, groupID string, fields map[string]interface{}) error {
	result := database.DB.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	return nil
}

func DeleteGroup(ctx context.Context, groupID string) error {
	result := database.DB.WithContext(ctx).Delete(&models.Group{}, "id = ?", groupID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	return nil
}

// EnrollStudent places a student into a group, respecting capacity and
// refusing duplicate active enrollments.
func EnrollStudent(ctx context.Context, groupID, studentID, agreedPrice string) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: group %s", ErrNotFound, groupID)
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Enrollment{}).
			Where("group_id = ? AND student_id = ? AND status IN ?", groupID, studentID,
				[]models.EnrollmentStatus{models.EnrollmentPending, models.EnrollmentActive}).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: student already enrolled in group", ErrConflict)
		}

		var enrolled int64
		if err := tx.Model(&models.Enrollment{}).
			Where("group_id = ? AND status = ?", groupID, models.EnrollmentActive).
			Count(&enrolled).Error; err != nil {
			return err
		}
		if int(enrolled) >= group.Capacity {
			return fmt.Errorf("%w: group is full", ErrConflict)
		}

		enrollment = &models.Enrollment{
			StudentID:   studentID,
			GroupID:     groupID,
			Status:      models.EnrollmentPending,
			AgreedPrice: agreedPrice,
			PaidAmount:  "0",
			EnrolledAt:  time.Now(),
		}
		return tx.Create(enrollment).Error
	})
	return enrollment, err
}

// GroupStudents lists the users enrolled in a group with pending or
// active status.
func GroupStudents(ctx context.Context, groupID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := database.DB.WithContext(ctx).
		Preload("Student").
		Where("group_id = ? AND status IN ?", groupID,
			[]models.EnrollmentStatus{models.EnrollmentPending, models.EnrollmentActive}).
		Order("created_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}
