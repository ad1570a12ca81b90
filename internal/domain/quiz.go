package domain

import (
	"fmt"
	"time"
)

// QuestionType is the variant tag of a canonical question.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	ShortAnswer    QuestionType = "short-answer"
)

// Question is a normalized, validated question record independent of the
// AI service's original field names.
type Question struct {
	ID      int          `json:"id"`
	Type    QuestionType `json:"type"`
	Text    string       `json:"question"`
	Options []string     `json:"options"`
	Correct int          `json:"correct"`
}

// Validate checks the canonical invariants: non-empty text, at least two
// options for choice questions, and a correct index inside the option range.
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewInvalidInputError("question text is required")
	}
	switch q.Type {
	case MultipleChoice, TrueFalse:
		if len(q.Options) < 2 {
			return NewInvalidInputError(fmt.Sprintf("question %d requires at least 2 options", q.ID))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return NewInvalidInputError(fmt.Sprintf("question %d correct index %d out of range", q.ID, q.Correct))
		}
	case ShortAnswer:
		// free text, no options required
	default:
		return NewInvalidInputError(fmt.Sprintf("question %d has unknown type %q", q.ID, q.Type))
	}
	return nil
}

// Quiz is an ordered set of canonical questions under one title.
type Quiz struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// NewQuiz creates a validated Quiz. Construction fails unless at least one
// valid question is present, which is what makes scoring division-safe.
func NewQuiz(title string, questions []Question) (*Quiz, error) {
	quiz := &Quiz{Title: title, Questions: questions}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return NewInvalidInputError("quiz requires at least one question")
	}
	for i := range q.Questions {
		if err := q.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Note is a stored note or transcript title exposed by the backend.
type Note struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AttemptRecord is one historical quiz attempt. Records are owned by the
// backend and immutable here; the aggregator only reads them.
type AttemptRecord struct {
	Title     string    `json:"title"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}
