package exam

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

// fakeStore is an in-memory AttemptStore. Its mutex plus the open-attempt
// uniqueness check in CreateAttempt emulate the partial unique index the
// real store relies on, so the check-then-insert race is observable.
type fakeStore struct {
	mu       sync.Mutex
	tests    map[string]*models.Test
	attempts []*models.TestResult
}

func newFakeStore(tests ...*models.Test) *fakeStore {
	s := &fakeStore{tests: make(map[string]*models.Test)}
	for _, test := range tests {
		s.tests[test.ID] = test
	}
	return s
}

func (s *fakeStore) GetTest(_ context.Context, testID string) (*models.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tests[testID], nil
}

func (s *fakeStore) FindOpenAttempt(_ context.Context, testID, userID string) (*models.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOpenLocked(testID, userID), nil
}

func (s *fakeStore) findOpenLocked(testID, userID string) *models.TestResult {
	for _, a := range s.attempts {
		if a.TestID == testID && a.UserID == userID && a.CompletedAt == nil {
			return a
		}
	}
	return nil
}

func (s *fakeStore) LatestAttempt(_ context.Context, testID, userID string) (*models.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if s.attempts[i].TestID == testID && s.attempts[i].UserID == userID {
			return s.attempts[i], nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateAttempt(_ context.Context, attempt *models.TestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findOpenLocked(attempt.TestID, attempt.UserID) != nil {
		return ErrDuplicateAttempt
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *fakeStore) SaveAttempt(_ context.Context, attempt *models.TestResult) error {
	return nil
}

func (s *fakeStore) countAttempts(testID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.attempts {
		if a.TestID == testID && a.UserID == userID {
			n++
		}
	}
	return n
}

func basicTest() *models.Test {
	return &models.Test{
		ID:           "test-1",
		Title:        "Unit 3 checkpoint",
		TestType:     models.TestTypeCourse,
		IsActive:     true,
		Duration:     30,
		MaxScore:     100,
		PassingScore: 50,
		Questions: []models.TestQuestion{
			singleChoiceQuestion("q1", 1, "A", "A", "B", "C"),
			multipleChoiceQuestion("q2", 2, map[string]bool{"B": true, "C": true}, "B", "C", "D"),
		},
	}
}

func newTestLifecycle(store AttemptStore) *Lifecycle {
	return NewLifecycle(store, zap.NewNop())
}

func TestStart_CreatesAttempt(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	test, attempt, err := lc.Start(context.Background(), "test-1", student, "")
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, "test-1", test.ID)
	assert.Equal(t, student.ID, attempt.UserID)
	assert.Equal(t, 100, attempt.MaxScore)
	assert.True(t, attempt.IsOpen())
	assert.False(t, attempt.StartedAt.IsZero())
}

func TestStart_IsIdempotent(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	_, first, err := lc.Start(context.Background(), "test-1", student, "")
	require.NoError(t, err)
	_, second, err := lc.Start(context.Background(), "test-1", student, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.countAttempts("test-1", student.ID))
}

func TestStart_UnknownTest(t *testing.T) {
	lc := newTestLifecycle(newFakeStore())
	_, _, err := lc.Start(context.Background(), "missing", student, "")
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestStart_DeniedCreatesNothing(t *testing.T) {
	test := basicTest()
	test.AccessKey = "KEY123"
	store := newFakeStore(test)
	lc := newTestLifecycle(store)

	_, _, err := lc.Start(context.Background(), "test-1", student, "wrong")
	assert.ErrorIs(t, err, ErrInvalidAccessKey)
	assert.Equal(t, 0, store.countAttempts("test-1", student.ID))
}

func TestSubmit_ScoresAndCompletes(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	_, _, err := lc.Start(context.Background(), "test-1", student, "")
	require.NoError(t, err)

	result, err := lc.Submit(context.Background(), "test-1", student, "", map[string][]string{
		"q1": {"A"},
		"q2": {"B", "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(3), result.Score)
	assert.Equal(t, 100, result.MaxScore)
	assert.Equal(t, float64(100), result.Percentage)
	assert.True(t, result.IsPassed)
	assert.False(t, result.CompletedAt.IsZero())

	latest, err := store.LatestAttempt(context.Background(), "test-1", student.ID)
	require.NoError(t, err)
	assert.False(t, latest.IsOpen())

	answers, err := latest.AnswerMap()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, answers["q1"])
}

func TestSubmit_WithoutStartCreatesAttempt(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	result, err := lc.Submit(context.Background(), "test-1", student, "", map[string][]string{
		"q1": {"A"},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), result.Score)
	assert.Equal(t, 1, store.countAttempts("test-1", student.ID))
}

func TestSubmit_CompletedAttemptIsTerminal(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	_, err := lc.Submit(context.Background(), "test-1", student, "", map[string][]string{"q1": {"A"}})
	require.NoError(t, err)

	_, err = lc.Submit(context.Background(), "test-1", student, "", map[string][]string{
		"q1": {"A"}, "q2": {"B", "C"},
	})
	assert.ErrorIs(t, err, ErrAttemptCompleted)
}

func TestSubmit_FailingScore(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	result, err := lc.Submit(context.Background(), "test-1", student, "", map[string][]string{
		"q1": {"A"},
		"q2": {"B"}, // partial set, earns nothing
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), result.Score)
	assert.InDelta(t, 33.33, result.Percentage, 0.01)
	assert.False(t, result.IsPassed)
}

func TestSubmit_PastDeadlineExpiresAttempt(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	_, attempt, err := lc.Start(context.Background(), "test-1", student, "")
	require.NoError(t, err)

	// 30 minute limit plus grace, exceeded by a wide margin.
	lc.now = func() time.Time { return attempt.StartedAt.Add(2 * time.Hour) }

	_, err = lc.Submit(context.Background(), "test-1", student, "", map[string][]string{"q1": {"A"}})
	assert.ErrorIs(t, err, ErrAttemptExpired)

	latest, err := store.LatestAttempt(context.Background(), "test-1", student.ID)
	require.NoError(t, err)
	assert.False(t, latest.IsOpen())
	assert.Equal(t, float64(0), latest.Score)
	assert.False(t, latest.IsPassed)
}

func TestSubmit_NoDurationMeansNoDeadline(t *testing.T) {
	test := basicTest()
	test.Duration = 0
	store := newFakeStore(test)
	lc := newTestLifecycle(store)

	_, attempt, err := lc.Start(context.Background(), "test-1", student, "")
	require.NoError(t, err)

	lc.now = func() time.Time { return attempt.StartedAt.Add(48 * time.Hour) }

	result, err := lc.Submit(context.Background(), "test-1", student, "", map[string][]string{"q1": {"A"}})
	require.NoError(t, err)
	assert.Equal(t, float64(1), result.Score)
}

// N concurrent starts for the same (test, user) must leave exactly one
// persisted open attempt, and every caller must get that attempt back.
func TestStart_ConcurrentCallsCreateOneAttempt(t *testing.T) {
	store := newFakeStore(basicTest())
	lc := newTestLifecycle(store)

	const n = 32
	ids := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, attempt, err := lc.Start(context.Background(), "test-1", student, "")
			if assert.NoError(t, err) && assert.NotNil(t, attempt) {
				ids[i] = attempt.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.countAttempts("test-1", student.ID))
	for i := 1; i < n; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
}
