package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

func singleChoiceQuestion(id string, points int, correctID string, optionIDs ...string) models.TestQuestion {
	q := models.TestQuestion{
		ID:           id,
		QuestionText: "question " + id,
		QuestionType: models.QuestionSingleChoice,
		Points:       points,
	}
	for _, optID := range optionIDs {
		q.Options = append(q.Options, models.TestQuestionOption{
			ID:         optID,
			OptionText: "option " + optID,
			IsCorrect:  optID == correctID,
		})
	}
	return q
}

func multipleChoiceQuestion(id string, points int, correctIDs map[string]bool, optionIDs ...string) models.TestQuestion {
	q := models.TestQuestion{
		ID:           id,
		QuestionText: "question " + id,
		QuestionType: models.QuestionMultipleChoice,
		Points:       points,
	}
	for _, optID := range optionIDs {
		q.Options = append(q.Options, models.TestQuestionOption{
			ID:         optID,
			OptionText: "option " + optID,
			IsCorrect:  correctIDs[optID],
		})
	}
	return q
}

func textQuestion(id string, points int) models.TestQuestion {
	return models.TestQuestion{
		ID:           id,
		QuestionText: "question " + id,
		QuestionType: models.QuestionText,
		Points:       points,
	}
}

func scoreRaw(t *testing.T, questions []models.TestQuestion, raw map[string][]string) Breakdown {
	t.Helper()
	b, err := Score(questions, DecodeAnswers(questions, raw))
	require.NoError(t, err)
	return b
}

func TestScore_SingleChoiceExactness(t *testing.T) {
	questions := []models.TestQuestion{
		singleChoiceQuestion("q1", 5, "o1", "o1", "o2", "o3"),
	}

	cases := []struct {
		name     string
		answer   []string
		expected float64
	}{
		{name: "correct option", answer: []string{"o1"}, expected: 5},
		{name: "wrong option", answer: []string{"o2"}, expected: 0},
		{name: "empty selection", answer: []string{}, expected: 0},
		{name: "multiple selections include correct", answer: []string{"o1", "o2"}, expected: 0},
		{name: "unknown option id", answer: []string{"nope"}, expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := scoreRaw(t, questions, map[string][]string{"q1": tc.answer})
			assert.Equal(t, tc.expected, b.Score)
			assert.Equal(t, float64(5), b.MaxPoints)
		})
	}
}

func TestScore_MultipleChoiceExactSet(t *testing.T) {
	questions := []models.TestQuestion{
		multipleChoiceQuestion("q1", 4, map[string]bool{"o1": true, "o3": true}, "o1", "o2", "o3", "o4"),
	}

	cases := []struct {
		name     string
		answer   []string
		expected float64
	}{
		{name: "exact set", answer: []string{"o1", "o3"}, expected: 4},
		{name: "exact set other order", answer: []string{"o3", "o1"}, expected: 4},
		{name: "subset", answer: []string{"o1"}, expected: 0},
		{name: "superset", answer: []string{"o1", "o2", "o3"}, expected: 0},
		{name: "empty", answer: []string{}, expected: 0},
		{name: "disjoint", answer: []string{"o2", "o4"}, expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := scoreRaw(t, questions, map[string][]string{"q1": tc.answer})
			assert.Equal(t, tc.expected, b.Score)
		})
	}
}

func TestScore_MultipleChoiceEmptyCorrectSet(t *testing.T) {
	// No options flagged correct: the exact-set rule makes the empty
	// selection the right answer, and any selection wrong.
	questions := []models.TestQuestion{
		multipleChoiceQuestion("q1", 4, nil, "o1", "o2"),
	}

	cases := []struct {
		name     string
		answer   []string
		expected float64
	}{
		{name: "empty selection matches", answer: []string{}, expected: 4},
		{name: "any selection misses", answer: []string{"o1"}, expected: 0},
		{name: "full selection misses", answer: []string{"o1", "o2"}, expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := scoreRaw(t, questions, map[string][]string{"q1": tc.answer})
			assert.Equal(t, tc.expected, b.Score)
			assert.Equal(t, float64(4), b.MaxPoints)
		})
	}
}

func TestScore_TextCountsTowardMaxOnly(t *testing.T) {
	questions := []models.TestQuestion{
		singleChoiceQuestion("q1", 2, "o1", "o1", "o2"),
		textQuestion("q2", 3),
	}

	b := scoreRaw(t, questions, map[string][]string{
		"q1": {"o1"},
		"q2": {"a thoughtful essay"},
	})
	assert.Equal(t, float64(2), b.Score)
	assert.Equal(t, float64(5), b.MaxPoints)
	assert.InDelta(t, 40.0, b.Percentage, 1e-9)
}

func TestScore_PercentageBounds(t *testing.T) {
	questions := []models.TestQuestion{
		singleChoiceQuestion("q1", 1, "o1", "o1", "o2"),
		multipleChoiceQuestion("q2", 2, map[string]bool{"o3": true}, "o3", "o4"),
		textQuestion("q3", 1),
	}

	submissions := []map[string][]string{
		{},
		{"q1": {"o1"}},
		{"q1": {"o1"}, "q2": {"o3"}},
		{"q1": {"o2"}, "q2": {"o3", "o4"}, "q3": {"text"}},
		{"q1": {"o1"}, "q2": {"o3"}, "q3": {"text"}},
	}

	for _, raw := range submissions {
		b := scoreRaw(t, questions, raw)
		assert.GreaterOrEqual(t, b.Percentage, 0.0)
		assert.LessOrEqual(t, b.Percentage, 100.0)
	}
}

func TestScore_ZeroPointsTest(t *testing.T) {
	b, err := Score(nil, AnswerSet{})
	require.NoError(t, err)
	assert.Equal(t, float64(0), b.Score)
	assert.Equal(t, float64(0), b.MaxPoints)
	assert.Equal(t, float64(0), b.Percentage)
}

func TestScore_UnknownQuestionTypeFailsLoudly(t *testing.T) {
	questions := []models.TestQuestion{
		{ID: "q1", QuestionText: "?", QuestionType: "essay_grid", Points: 1},
	}
	_, err := Score(questions, AnswerSet{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "essay_grid")
}

func TestPassed_Threshold(t *testing.T) {
	cases := []struct {
		percentage float64
		passing    int
		want       bool
	}{
		{percentage: 100, passing: 50, want: true},
		{percentage: 50, passing: 50, want: true}, // boundary passes
		{percentage: 49.999, passing: 50, want: false},
		{percentage: 0, passing: 0, want: true},
		{percentage: 0, passing: 1, want: false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Passed(tc.percentage, tc.passing),
			"percentage=%v passing=%d", tc.percentage, tc.passing)
	}
}

// Mirrors the two-question walkthrough: Q1 single choice worth 1 with
// correct option A, Q2 multiple choice worth 2 with correct set {B,C},
// passing threshold 50.
func TestScore_TwoQuestionWalkthrough(t *testing.T) {
	questions := []models.TestQuestion{
		singleChoiceQuestion("q1", 1, "A", "A", "B", "C"),
		multipleChoiceQuestion("q2", 2, map[string]bool{"B": true, "C": true}, "B", "C", "D"),
	}

	t.Run("full marks", func(t *testing.T) {
		b := scoreRaw(t, questions, map[string][]string{
			"q1": {"A"},
			"q2": {"B", "C"},
		})
		assert.Equal(t, float64(3), b.Score)
		assert.Equal(t, float64(3), b.MaxPoints)
		assert.Equal(t, float64(100), b.Percentage)
		assert.True(t, Passed(b.Percentage, 50))
	})

	t.Run("partial multiple choice earns nothing", func(t *testing.T) {
		b := scoreRaw(t, questions, map[string][]string{
			"q1": {"A"},
			"q2": {"B"},
		})
		assert.Equal(t, float64(1), b.Score)
		assert.InDelta(t, 33.33, b.Percentage, 0.01)
		assert.False(t, Passed(b.Percentage, 50))
	})
}

func TestValidateQuestions(t *testing.T) {
	cases := []struct {
		name      string
		questions []models.TestQuestion
		wantErr   string
	}{
		{
			name: "valid tree",
			questions: []models.TestQuestion{
				singleChoiceQuestion("q1", 1, "o1", "o1", "o2"),
				multipleChoiceQuestion("q2", 2, map[string]bool{"o3": true}, "o3", "o4"),
				textQuestion("q3", 1),
			},
		},
		{
			name:      "single choice with no correct option",
			questions: []models.TestQuestion{singleChoiceQuestion("q1", 1, "", "o1", "o2")},
			wantErr:   "exactly one correct option",
		},
		{
			name: "single choice with two correct options",
			questions: []models.TestQuestion{{
				ID: "q1", QuestionText: "?", QuestionType: models.QuestionSingleChoice, Points: 1,
				Options: []models.TestQuestionOption{
					{ID: "o1", OptionText: "a", IsCorrect: true},
					{ID: "o2", OptionText: "b", IsCorrect: true},
				},
			}},
			wantErr: "exactly one correct option",
		},
		{
			name:      "single choice with one option",
			questions: []models.TestQuestion{singleChoiceQuestion("q1", 1, "o1", "o1")},
			wantErr:   "at least two options",
		},
		{
			name: "text question with options",
			questions: []models.TestQuestion{{
				ID: "q1", QuestionText: "?", QuestionType: models.QuestionText, Points: 1,
				Options: []models.TestQuestionOption{{ID: "o1", OptionText: "a"}},
			}},
			wantErr: "cannot carry options",
		},
		{
			name:      "zero points",
			questions: []models.TestQuestion{textQuestion("q1", 0)},
			wantErr:   "points must be positive",
		},
		{
			name: "unknown type",
			questions: []models.TestQuestion{{
				ID: "q1", QuestionText: "?", QuestionType: "matching", Points: 1,
			}},
			wantErr: "unknown question type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateQuestions(tc.questions)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
