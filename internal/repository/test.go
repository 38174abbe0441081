package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/exam"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/utils"
)

// accessKeyRetries bounds how many times a colliding generated access
// key is regenerated before giving up.
const accessKeyRetries = 5

// TestStore is the persistence facade for test definitions and attempts.
// Construct it over a transaction for attempt lifecycle calls so each
// start or submit commits or rolls back as one unit.
type TestStore struct {
	db *gorm.DB
}

func NewTestStore(db *gorm.DB) *TestStore {
	return &TestStore{db: db}
}

// GetTest loads a test with its ordered question/option tree. Returns
// (nil, nil) when the id does not resolve; soft-deleted tests do not
// resolve.
func (s *TestStore) GetTest(ctx context.Context, testID string) (*models.Test, error) {
	var test models.Test
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_questions.order_index ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_question_options.order_index ASC")
		}).
		First(&test, "id = ?", testID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

// FindOpenAttempt returns the open attempt for (test, user), or nil.
func (s *TestStore) FindOpenAttempt(ctx context.Context, testID, userID string) (*models.TestResult, error) {
	var attempt models.TestResult
	err := s.db.WithContext(ctx).
		Where("test_id = ? AND user_id = ? AND completed_at IS NULL", testID, userID).
		Order("created_at DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// LatestAttempt returns the newest attempt for (test, user) regardless
// of state, or nil.
func (s *TestStore) LatestAttempt(ctx context.Context, testID, userID string) (*models.TestResult, error) {
	var attempt models.TestResult
	err := s.db.WithContext(ctx).
		Where("test_id = ? AND user_id = ?", testID, userID).
		Order("created_at DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// CreateAttempt inserts a new attempt. The partial unique index on
// (test_id, user_id) WHERE completed_at IS NULL turns a concurrent
// double-start into a conflict, surfaced as exam.ErrDuplicateAttempt.
func (s *TestStore) CreateAttempt(ctx context.Context, attempt *models.TestResult) error {
	err := s.db.WithContext(ctx).Create(attempt).Error
	if err != nil && isUniqueViolation(err) {
		return exam.ErrDuplicateAttempt
	}
	return err
}

func (s *TestStore) SaveAttempt(ctx context.Context, attempt *models.TestResult) error {
	return s.db.WithContext(ctx).Save(attempt).Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// The postgres driver reports SQLSTATE 23505 for unique violations;
	// not every gorm version translates it to ErrDuplicatedKey.
	return err != nil && strings.Contains(err.Error(), "23505")
}

// TestListFilter narrows ListTests. Learner-role actors only ever see
// active, in-window tests; staff see everything not soft-deleted.
type TestListFilter struct {
	CourseID string
	TestType models.TestType
	Page     int
	Size     int
}

func (s *TestStore) ListTests(ctx context.Context, actor exam.Actor, filter TestListFilter) ([]models.Test, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Size < 1 || filter.Size > 100 {
		filter.Size = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Test{})
	if !actor.Role.IsStaff() {
		query = query.Where("is_active = ?", true)
	}
	if filter.CourseID != "" {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.TestType != "" {
		query = query.Where("test_type = ?", filter.TestType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tests []models.Test
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&tests).Error
	return tests, total, err
}

// CreateTest persists a test with its nested question/option tree in one
// logical unit. Course-scoped tests require the referenced course to
// exist; gated test types get a generated access key when none was
// supplied, rechecked against existing keys with a bounded retry.
func (s *TestStore) CreateTest(ctx context.Context, test *models.Test) error {
	if err := exam.ValidateQuestions(test.Questions); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	// PassingScore is a percentage threshold.
	if test.PassingScore < 0 || test.PassingScore > 100 {
		return fmt.Errorf("%w: passing_score must be between 0 and 100", ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if test.CourseID != nil {
			var count int64
			if err := tx.Model(&models.Course{}).Where("id = ?", *test.CourseID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: course %s", ErrNotFound, *test.CourseID)
			}
		} else if test.TestType == models.TestTypeCourse {
			return fmt.Errorf("%w: course_id is required for course_test type", ErrInvalidInput)
		}

		if test.AccessKey == "" && test.TestType.RequiresAccessKey() {
			key, err := s.uniqueAccessKey(tx)
			if err != nil {
				return err
			}
			test.AccessKey = key
		}

		// Create cascades to the nested questions and options.
		return tx.Create(test).Error
	})
}

func (s *TestStore) uniqueAccessKey(tx *gorm.DB) (string, error) {
	for i := 0; i < accessKeyRetries; i++ {
		key, err := utils.GenerateAccessKey()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.Test{}).Where("access_key = ?", key).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return key, nil
		}
	}
	return "", errors.New("could not generate a unique access key")
}

// UpdateTest applies a partial column update; callers build the map
// from the fields actually present in the request.
func (s *TestStore) UpdateTest(ctx context.Context, testID string, update map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Test{}).Where("id = ?", testID).Updates(update)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: test %s", ErrNotFound, testID)
	}
	return nil
}

// SoftDeleteTest marks the test deleted while preserving historical
// attempts against it.
func (s *TestStore) SoftDeleteTest(ctx context.Context, testID string) error {
	result := s.db.WithContext(ctx).Delete(&models.Test{}, "id = ?", testID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: test %s", ErrNotFound, testID)
	}
	return nil
}

// AddQuestion appends a question (with options) to an existing test.
func (s *TestStore) AddQuestion(ctx context.Context, testID string, question *models.TestQuestion) error {
	if err := exam.ValidateQuestions([]models.TestQuestion{*question}); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Test{}).Where("id = ?", testID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: test %s", ErrNotFound, testID)
		}
		question.TestID = testID
		return tx.Create(question).Error
	})
}

// ResultsForTest returns all completed attempts for a test, newest first.
func (s *TestStore) ResultsForTest(ctx context.Context, testID string) ([]models.TestResult, error) {
	var results []models.TestResult
	err := s.db.WithContext(ctx).
		Where("test_id = ? AND completed_at IS NOT NULL", testID).
		Order("completed_at DESC").
		Find(&results).Error
	return results, err
}

// ResultsForUser returns a user's recent completed attempts with their
// test titles, newest first.
func (s *TestStore) ResultsForUser(ctx context.Context, userID string, limit int) ([]models.TestResult, error) {
	var results []models.TestResult
	err := s.db.WithContext(ctx).
		Preload("Test").
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}
