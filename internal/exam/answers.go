package exam

import (
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

// Answer is the decoded response to a single question. The wire format
// is a flat map[question id][]string; decoding tags each entry with the
// shape its question type dictates so the scorer dispatches on a closed
// union instead of probing slices at runtime.
type Answer interface {
	isAnswer()
}

// ChoiceAnswer holds the selected option ids for a choice question.
type ChoiceAnswer struct {
	OptionIDs []string
}

func (ChoiceAnswer) isAnswer() {}

// Set returns the selected ids as a set, deduplicated.
func (a ChoiceAnswer) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(a.OptionIDs))
	for _, id := range a.OptionIDs {
		set[id] = struct{}{}
	}
	return set
}

// TextAnswer holds the free text submitted for a text question. Text
// answers are stored for manual review and never auto-scored.
type TextAnswer struct {
	Text string
}

func (TextAnswer) isAnswer() {}

// AnswerSet maps question ids to decoded answers.
type AnswerSet map[string]Answer

// DecodeAnswers converts a raw submission into typed answers keyed by
// question id. Entries for unknown question ids are dropped; questions
// without an entry are simply unanswered. Text questions take the first
// element of their list as the literal answer text.
func DecodeAnswers(questions []models.TestQuestion, raw map[string][]string) AnswerSet {
	decoded := make(AnswerSet, len(raw))
	for _, q := range questions {
		values, ok := raw[q.ID]
		if !ok {
			continue
		}
		switch q.QuestionType {
		case models.QuestionText:
			text := ""
			if len(values) > 0 {
				text = values[0]
			}
			decoded[q.ID] = TextAnswer{Text: text}
		default:
			decoded[q.ID] = ChoiceAnswer{OptionIDs: values}
		}
	}
	return decoded
}
