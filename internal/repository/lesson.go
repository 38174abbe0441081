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

func CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Group{}).Where("id = ?", lesson.GroupID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: group %s", ErrNotFound, lesson.GroupID)
		}
		return tx.Create(lesson).Error
	})
}

func GetLessonByID(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := database.DB.WithContext(ctx).Preload("Group").First(&lesson, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lesson %s", ErrNotFound, id)
	}
	return &lesson, err
}

func ListLessons(ctx context.Context, groupID string, from, until *time.Time, page, size int) ([]models.Lesson, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := database.DB.WithContext(ctx).Model(&models.Lesson{})
	if groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if until != nil {
		query = query.Where("date <= ?", *until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lessons []models.Lesson
	err := query.Order("date ASC, start_time ASC").Offset((page - 1) * size).Limit(size).Find(&lessons).Error
	return lessons, total, err
}

func UpdateLesson(ctx context.Context, lessonID string, fields map[string]interface{}) error {
	result := database.DB.WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", lessonID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: lesson %s", ErrNotFound, lessonID)
	}
	return nil
}

func DeleteLesson(ctx context.Context, lessonID string) error {
	result := database.DB.WithContext(ctx).Delete(&models.Lesson{}, "id = ?", lessonID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: lesson %s", ErrNotFound, lessonID)
	}
	return nil
}

// UpcomingLessonsForStudent lists the student's scheduled lessons across
// all active enrollments, soonest first.
func UpcomingLessonsForStudent(ctx context.Context, studentID string, limit int) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := database.DB.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.group_id = lessons.group_id").
		Where("enrollments.student_id = ? AND enrollments.status = ?", studentID, models.EnrollmentActive).
		Where("lessons.status = ? AND lessons.date >= ?", models.LessonScheduled, time.Now().Truncate(24*time.Hour)).
		Order("lessons.date ASC, lessons.start_time ASC").
		Limit(limit).
		Find(&lessons).Error
	return lessons, err
}

// LessonsStartingBetween returns scheduled lessons whose start instant
// falls inside [from, until), with their groups preloaded. The reminder
// scheduler uses it to find lessons about to begin.
func LessonsStartingBetween(ctx context.Context, from, until time.Time) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := database.DB.WithContext(ctx).
		Preload("Group").
		Where("status = ? AND date BETWEEN ? AND ?", models.LessonScheduled,
			from.Truncate(24*time.Hour), until).
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}

	var due []models.Lesson
	for _, lesson := range lessons {
		startsAt := lesson.StartsAt()
		if !startsAt.Before(from) && startsAt.Before(until) {
			due = append(due, lesson)
		}
	}
	return due, nil
}
