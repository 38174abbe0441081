package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

func CreateCourse(ctx context.Context, course *models.Course) error {
	return database.DB.WithContext(ctx).Create(course).Error
}

func GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := database.DB.WithContext(ctx).First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: course %s", ErrNotFound, id)
	}
	return &course, err
}

// ListCourses returns published courses for learners and everything for
// staff, newest first.
func ListCourses(ctx context.Context, staffView bool, page, size int) ([]models.Course, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := database.DB.WithContext(ctx).Model(&models.Course{})
	if !staffView {
		query = query.Where("status = ?", models.CoursePublished)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []models.Course
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&courses).Error
	return courses, total, err
}

func UpdateCourse(ctx context.Context, courseID string, fields map[string]interface{}) error {
	result := database.DB.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: course %s", ErrNotFound, courseID)
	}
	return nil
}

func DeleteCourse(ctx context.Context, courseID string) error {
	result := database.DB.WithContext(ctx).Delete(&models.Course{}, "id = ?", courseID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: course %s", ErrNotFound, courseID)
	}
	return nil
}
