package exam

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

// submitGrace is how far past the duration deadline a submit is still
// accepted, to absorb clock skew and upload latency.
const submitGrace = 30 * time.Second

// AttemptStore is the persistence surface the lifecycle needs. Callers
// construct it over a single transaction per Start or Submit call, so
// each lifecycle operation commits or rolls back atomically.
type AttemptStore interface {
	// GetTest loads a test with its full question/option tree, or nil
	// when the id does not resolve (including soft-deleted tests).
	GetTest(ctx context.Context, testID string) (*models.Test, error)

	// FindOpenAttempt returns the open attempt for (test, user), or nil.
	FindOpenAttempt(ctx context.Context, testID, userID string) (*models.TestResult, error)

	// LatestAttempt returns the newest attempt for (test, user)
	// regardless of state, or nil when none exists.
	LatestAttempt(ctx context.Context, testID, userID string) (*models.TestResult, error)

	// CreateAttempt inserts a new attempt. It returns ErrDuplicateAttempt
	// when an open attempt for the same (test, user) already exists, as
	// enforced by the store's uniqueness constraint.
	CreateAttempt(ctx context.Context, attempt *models.TestResult) error

	// SaveAttempt persists answer and result mutations on an attempt.
	SaveAttempt(ctx context.Context, attempt *models.TestResult) error
}

// Result is the summary returned to the caller after a submit.
type Result struct {
	TestID      string    `json:"test_id"`
	Score       float64   `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	IsPassed    bool      `json:"is_passed"`
	CompletedAt time.Time `json:"completed_at"`
}

// Lifecycle drives a user's attempt through NotStarted -> Open ->
// Completed. Completed is terminal.
type Lifecycle struct {
	store AttemptStore
	log   *zap.Logger
	now   func() time.Time
}

func NewLifecycle(store AttemptStore, log *zap.Logger) *Lifecycle {
	return &Lifecycle{store: store, log: log, now: time.Now}
}

// Start gates access and returns the actor's open attempt for the test,
// creating one if none exists. Calling it again without an intervening
// submit returns the same attempt: a learner reloading the test page
// must not lose progress or spawn a second record.
func (l *Lifecycle) Start(ctx context.Context, testID string, actor Actor, accessKey string) (*models.Test, *models.TestResult, error) {
	test, err := l.store.GetTest(ctx, testID)
	if err != nil {
		return nil, nil, fmt.Errorf("load test %s: %w", testID, err)
	}
	if err := CheckAccess(test, actor, accessKey, l.now()); err != nil {
		return nil, nil, err
	}

	attempt, err := l.store.FindOpenAttempt(ctx, testID, actor.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("find open attempt: %w", err)
	}
	if attempt != nil {
		return test, attempt, nil
	}

	attempt = &models.TestResult{
		TestID:    testID,
		UserID:    actor.ID,
		MaxScore:  test.MaxScore,
		StartedAt: l.now(),
	}
	if err := attempt.SetAnswers(nil); err != nil {
		return nil, nil, err
	}

	if err := l.store.CreateAttempt(ctx, attempt); err != nil {
		// Lost the check-then-insert race to a concurrent start. The
		// winner's attempt is the one to hand back.
		if errors.Is(err, ErrDuplicateAttempt) {
			existing, ferr := l.store.FindOpenAttempt(ctx, testID, actor.ID)
			if ferr != nil {
				return nil, nil, fmt.Errorf("reload attempt after conflict: %w", ferr)
			}
			if existing != nil {
				return test, existing, nil
			}
		}
		return nil, nil, fmt.Errorf("create attempt: %w", err)
	}

	l.log.Info("attempt started",
		zap.String("test_id", testID),
		zap.String("user_id", actor.ID),
		zap.String("attempt_id", attempt.ID),
	)
	return test, attempt, nil
}

// Submit records the answer set, scores it, and closes the attempt.
// Answers are last-write-wins: the supplied set replaces whatever was
// stored before. A submit without a prior start creates the attempt on
// the fly so a client that lost its session does not lose the work. A
// submit against a completed attempt is rejected; history is never
// rewritten. A submit past the duration deadline closes the attempt
// with a zero score.
func (l *Lifecycle) Submit(ctx context.Context, testID string, actor Actor, accessKey string, answers map[string][]string) (*Result, error) {
	test, err := l.store.GetTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("load test %s: %w", testID, err)
	}
	if err := CheckAccess(test, actor, accessKey, l.now()); err != nil {
		return nil, err
	}

	attempt, err := l.store.LatestAttempt(ctx, testID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("find attempt: %w", err)
	}

	now := l.now()
	if attempt == nil {
		attempt = &models.TestResult{
			TestID:    testID,
			UserID:    actor.ID,
			MaxScore:  test.MaxScore,
			StartedAt: now,
		}
		if err := attempt.SetAnswers(answers); err != nil {
			return nil, err
		}
		if err := l.store.CreateAttempt(ctx, attempt); err != nil {
			return nil, fmt.Errorf("create attempt: %w", err)
		}
	} else if !attempt.IsOpen() {
		return nil, ErrAttemptCompleted
	}

	if deadline, ok := attemptDeadline(test, attempt); ok && now.After(deadline) {
		// Deadline passed: close the attempt so it cannot linger open,
		// but award nothing.
		attempt.Score = 0
		attempt.Percentage = 0
		attempt.IsPassed = false
		attempt.CompletedAt = &now
		if err := l.store.SaveAttempt(ctx, attempt); err != nil {
			return nil, fmt.Errorf("expire attempt: %w", err)
		}
		l.log.Warn("attempt expired on submit",
			zap.String("attempt_id", attempt.ID),
			zap.Time("deadline", deadline),
		)
		return nil, ErrAttemptExpired
	}

	if err := attempt.SetAnswers(answers); err != nil {
		return nil, err
	}

	breakdown, err := Score(test.Questions, DecodeAnswers(test.Questions, answers))
	if err != nil {
		// Programming-error class: a question type with no scoring rule
		// must fail loudly, never silently award zero.
		l.log.Error("scoring failed", zap.String("test_id", testID), zap.Error(err))
		return nil, err
	}

	attempt.Score = breakdown.Score
	attempt.Percentage = breakdown.Percentage
	attempt.IsPassed = Passed(breakdown.Percentage, test.PassingScore)
	attempt.CompletedAt = &now

	if err := l.store.SaveAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	l.log.Info("attempt completed",
		zap.String("attempt_id", attempt.ID),
		zap.Float64("score", attempt.Score),
		zap.Float64("percentage", attempt.Percentage),
		zap.Bool("passed", attempt.IsPassed),
	)

	return &Result{
		TestID:      testID,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  attempt.Percentage,
		IsPassed:    attempt.IsPassed,
		CompletedAt: now,
	}, nil
}

// attemptDeadline computes the last acceptable submit instant, or
// ok=false when the test carries no duration limit.
func attemptDeadline(test *models.Test, attempt *models.TestResult) (time.Time, bool) {
	if test.Duration <= 0 {
		return time.Time{}, false
	}
	return attempt.StartedAt.Add(time.Duration(test.Duration)*time.Minute + submitGrace), true
}
