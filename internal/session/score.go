package session

import (
	"math"
	"strings"

	"study-pulse/internal/domain"
)

// Verdict is the per-question correctness outcome kept for review rendering.
type Verdict struct {
	QuestionID int  `json:"question_id"`
	Correct    bool `json:"correct"`
	Answered   bool `json:"answered"`
}

// ScoreResult is the outcome of scoring one completed session.
type ScoreResult struct {
	Percentage   int       `json:"percentage"`
	CorrectCount int       `json:"correct_count"`
	Total        int       `json:"total"`
	Verdicts     []Verdict `json:"verdicts"`
}

// Score evaluates recorded answers against the quiz. Choice questions
// require exact index equality, short answers only a non-blank value;
// unanswered or type-mismatched answers count as incorrect, never as
// errors. Quiz construction guarantees at least one question, so the
// percentage division is always defined.
func Score(quiz *domain.Quiz, answers map[int]any) *ScoreResult {
	verdicts := make([]Verdict, 0, len(quiz.Questions))
	correct := 0

	for _, question := range quiz.Questions {
		value, answered := answers[question.ID]
		ok := answered && isCorrect(question, value)
		if ok {
			correct++
		}
		verdicts = append(verdicts, Verdict{
			QuestionID: question.ID,
			Correct:    ok,
			Answered:   answered,
		})
	}

	total := len(quiz.Questions)
	return &ScoreResult{
		Percentage:   int(math.Round(100 * float64(correct) / float64(total))),
		CorrectCount: correct,
		Total:        total,
		Verdicts:     verdicts,
	}
}

func isCorrect(question domain.Question, value any) bool {
	switch question.Type {
	case domain.MultipleChoice, domain.TrueFalse:
		idx, ok := asIndex(value)
		return ok && idx == question.Correct
	case domain.ShortAnswer:
		text, ok := value.(string)
		return ok && strings.TrimSpace(text) != ""
	default:
		return false
	}
}

// asIndex accepts the numeric shapes an answer can arrive in: int from Go
// callers, float64 from decoded JSON.
func asIndex(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
