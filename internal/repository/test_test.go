package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

// Authoring validation runs before any database work, so a store without
// a connection is enough to exercise the rejections.
func TestCreateTestRejectsInvalidInput(t *testing.T) {
	validQuestions := []models.TestQuestion{
		{
			QuestionText: "pick one",
			QuestionType: models.QuestionSingleChoice,
			Points:       1,
			Options: []models.TestQuestionOption{
				{OptionText: "a", IsCorrect: true},
				{OptionText: "b"},
			},
		},
	}

	cases := []struct {
		name string
		test models.Test
	}{
		{
			name: "negative passing score",
			test: models.Test{Title: "t", PassingScore: -1, Questions: validQuestions},
		},
		{
			name: "passing score above 100",
			test: models.Test{Title: "t", PassingScore: 101, Questions: validQuestions},
		},
		{
			name: "single choice without a correct option",
			test: models.Test{Title: "t", PassingScore: 60, Questions: []models.TestQuestion{
				{
					QuestionText: "pick one",
					QuestionType: models.QuestionSingleChoice,
					Points:       1,
					Options: []models.TestQuestionOption{
						{OptionText: "a"},
						{OptionText: "b"},
					},
				},
			}},
		},
	}

	store := NewTestStore(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			test := tc.test
			err := store.CreateTest(context.Background(), &test)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
