package dto

import (
	"encoding/json"

	"study-pulse/internal/domain"
)

// GenerateQuizRequest asks for a quiz over one stored note title.
// @Description Request body for quiz generation
type GenerateQuizRequest struct {
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

// QuestionResponse is one canonical question in the API representation.
type QuestionResponse struct {
	ID       int      `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

// QuizResponse is a canonical quiz in the API representation.
// @Description Normalized quiz
type QuizResponse struct {
	Title     string             `json:"title"`
	Questions []QuestionResponse `json:"questions"`
}

// GeneratedQuizResponse wraps a freshly normalized quiz with the metadata
// the quiz center card renders.
type GeneratedQuizResponse struct {
	Quiz             QuizResponse `json:"quiz"`
	QuestionCount    int          `json:"question_count"`
	EstimatedMinutes int          `json:"estimated_minutes"`
}

// QuizFromDomain converts a domain quiz for API output.
func QuizFromDomain(quiz *domain.Quiz) QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, QuestionResponse{
			ID:       q.ID,
			Type:     string(q.Type),
			Question: q.Text,
			Options:  q.Options,
			Correct:  q.Correct,
		})
	}
	return QuizResponse{Title: quiz.Title, Questions: questions}
}

// ToDomain rebuilds and validates the domain quiz from its API form.
func (r QuizResponse) ToDomain() (*domain.Quiz, error) {
	questions := make([]domain.Question, 0, len(r.Questions))
	for _, q := range r.Questions {
		questions = append(questions, domain.Question{
			ID:      q.ID,
			Type:    domain.QuestionType(q.Type),
			Text:    q.Question,
			Options: q.Options,
			Correct: q.Correct,
		})
	}
	return domain.NewQuiz(r.Title, questions)
}

// StartSessionRequest starts an attempt over a previously generated quiz.
type StartSessionRequest struct {
	Quiz QuizResponse `json:"quiz"`
}

// RecordAnswerRequest records one answer. The answer is kept raw because
// its JSON type depends on the question: a number for choice questions,
// a string for short answers.
type RecordAnswerRequest struct {
	QuestionID int             `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

// JumpRequest moves the question pointer to an explicit index.
type JumpRequest struct {
	Index int `json:"index"`
}

// SessionResponse is a snapshot of session state for the UI.
type SessionResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Phase        string `json:"phase"`
	CurrentIndex int    `json:"current_index"`
	Total        int    `json:"total"`
	Answered     []int  `json:"answered_question_ids"`
}

// ReviewItem is one scored question for the results review list.
type ReviewItem struct {
	QuestionID    int    `json:"question_id"`
	Question      string `json:"question"`
	Correct       bool   `json:"correct"`
	Answered      bool   `json:"answered"`
	CorrectOption string `json:"correct_option,omitempty"`
	UserAnswer    string `json:"user_answer,omitempty"`
}

// SessionResultResponse is the scored outcome of a completed session.
type SessionResultResponse struct {
	Percentage   int          `json:"percentage"`
	CorrectCount int          `json:"correct_count"`
	Total        int          `json:"total"`
	Grade        string       `json:"grade"`
	Saved        bool         `json:"saved"`
	SaveError    string       `json:"save_error,omitempty"`
	Review       []ReviewItem `json:"review"`
}

// NoteResponse is a stored note title.
type NoteResponse struct {
	Title string `json:"title"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
