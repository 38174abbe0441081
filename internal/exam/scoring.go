package exam

import (
	"fmt"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

// Breakdown is the outcome of scoring one answer set against a test's
// question definitions.
type Breakdown struct {
	Score      float64
	MaxPoints  float64
	Percentage float64
}

// Score applies the simple all-or-nothing model: each question is scored
// independently and the results summed, so question order never matters.
//
//   - single_choice earns its points iff exactly one option was selected
//     and it is the option flagged correct.
//   - multiple_choice earns its points iff the selected set equals the
//     correct set exactly. Partial overlap earns nothing.
//   - text never auto-scores but still counts toward MaxPoints.
//
// Every question contributes its point value to MaxPoints whether or not
// it was answered. An unrecognized question type is a programming error
// and fails the whole computation rather than silently scoring zero.
func Score(questions []models.TestQuestion, answers AnswerSet) (Breakdown, error) {
	var b Breakdown
	for i := range questions {
		q := &questions[i]
		b.MaxPoints += float64(q.Points)

		earned, err := scoreQuestion(q, answers[q.ID])
		if err != nil {
			return Breakdown{}, err
		}
		b.Score += earned
	}

	if b.MaxPoints > 0 {
		b.Percentage = b.Score / b.MaxPoints * 100
	}
	return b, nil
}

func scoreQuestion(q *models.TestQuestion, answer Answer) (float64, error) {
	switch q.QuestionType {
	case models.QuestionSingleChoice:
		choice, ok := answer.(ChoiceAnswer)
		if !ok || len(choice.OptionIDs) != 1 {
			return 0, nil
		}
		correct := q.CorrectOptionIDs()
		if len(correct) == 1 && choice.OptionIDs[0] == correct[0] {
			return float64(q.Points), nil
		}
		return 0, nil

	case models.QuestionMultipleChoice:
		choice, ok := answer.(ChoiceAnswer)
		if !ok {
			return 0, nil
		}
		// Exact set equality, including the empty set: a question with
		// no options flagged correct is answered by selecting nothing.
		selected := choice.Set()
		correct := q.CorrectOptionIDs()
		if len(selected) != len(correct) {
			return 0, nil
		}
		for _, id := range correct {
			if _, ok := selected[id]; !ok {
				return 0, nil
			}
		}
		return float64(q.Points), nil

	case models.QuestionText:
		// Manual grading only.
		return 0, nil

	default:
		return 0, fmt.Errorf("no scoring rule for question type %q (question %s)", q.QuestionType, q.ID)
	}
}

// Passed applies the test's passing threshold. The boundary counts as a
// pass.
func Passed(percentage float64, passingScore int) bool {
	return percentage >= float64(passingScore)
}

// ValidateQuestions enforces the authoring invariants before a question
// tree is persisted: positive point values, exactly one correct option
// on single-choice questions, at least two options on choice questions,
// and no options on text questions. Malformed questions are rejected
// here instead of being left for the scorer to treat as unwinnable.
func ValidateQuestions(questions []models.TestQuestion) error {
	for i := range questions {
		q := &questions[i]
		if q.QuestionText == "" {
			return fmt.Errorf("question %d: empty question text", i)
		}
		if q.Points <= 0 {
			return fmt.Errorf("question %d: points must be positive", i)
		}

		switch q.QuestionType {
		case models.QuestionSingleChoice:
			if len(q.Options) < 2 {
				return fmt.Errorf("question %d: single_choice needs at least two options", i)
			}
			correct := 0
			for _, opt := range q.Options {
				if opt.IsCorrect {
					correct++
				}
			}
			if correct != 1 {
				return fmt.Errorf("question %d: single_choice needs exactly one correct option, has %d", i, correct)
			}
		case models.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				return fmt.Errorf("question %d: multiple_choice needs at least two options", i)
			}
		case models.QuestionText:
			if len(q.Options) > 0 {
				return fmt.Errorf("question %d: text questions cannot carry options", i)
			}
		default:
			return fmt.Errorf("question %d: unknown question type %q", i, q.QuestionType)
		}
	}
	return nil
}
