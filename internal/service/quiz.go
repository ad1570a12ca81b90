package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync/atomic"

	"study-pulse/internal/domain"
	"study-pulse/internal/dto"
	"study-pulse/internal/logger"
	"study-pulse/internal/normalizer"
	"study-pulse/internal/session"

	"go.uber.org/zap"
)

const (
	defaultQuestionCount = 10
	maxQuestionCount     = 50

	// minutesPerQuestion feeds the estimated duration shown on the quiz
	// card before the user starts.
	minutesPerQuestion = 1.5
)

// QuizService defines the interface for quiz generation and session operations
type QuizService interface {
	GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.GeneratedQuizResponse, error)
	CancelGeneration()
	StartSession(req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	GetSession(sessionID string) (*dto.SessionResponse, error)
	RecordAnswer(sessionID string, req *dto.RecordAnswerRequest) (*dto.SessionResponse, error)
	Advance(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	Retreat(sessionID string) (*dto.SessionResponse, error)
	JumpTo(sessionID string, req *dto.JumpRequest) (*dto.SessionResponse, error)
	CancelSession(sessionID string) error
	Result(sessionID string) (*dto.SessionResultResponse, error)
}

// quizService implements QuizService
type quizService struct {
	source domain.QuizSource
	scores domain.ScoreSink
	store  *session.Store

	// epoch invalidates in-flight generations: a Generate call captures the
	// counter up front and discards its result if the counter moved while it
	// was waiting on the source or normalizing the payload.
	epoch atomic.Uint64
}

// NewQuizService creates a new instance of quizService
func NewQuizService(source domain.QuizSource, scores domain.ScoreSink, store *session.Store) QuizService {
	return &quizService{
		source: source,
		scores: scores,
		store:  store,
	}
}

// GenerateQuiz asks the quiz source for a raw payload and normalizes it into
// a canonical quiz. The result is returned to the caller; no session exists
// until the caller explicitly starts one.
func (s *quizService) GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.GeneratedQuizResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.NewInvalidInputError("title is required")
	}
	count := req.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}

	epoch := s.epoch.Load()
	if err := s.checkAlive(ctx, epoch); err != nil {
		return nil, err
	}

	raw, err := s.source.GenerateQuiz(ctx, title, count)
	if err != nil {
		if alive := s.checkAlive(ctx, epoch); alive != nil {
			return nil, alive
		}
		return nil, err
	}
	if err := s.checkAlive(ctx, epoch); err != nil {
		return nil, err
	}

	quiz, err := normalizer.Normalize(title, raw)
	if err != nil {
		logger.Get().Warn("Quiz normalization failed",
			zap.String("title", title),
			zap.Error(err))
		return nil, err
	}
	if err := s.checkAlive(ctx, epoch); err != nil {
		return nil, err
	}

	logger.Get().Info("Quiz generated",
		zap.String("title", title),
		zap.Int("questions", len(quiz.Questions)))

	return &dto.GeneratedQuizResponse{
		Quiz:             dto.QuizFromDomain(quiz),
		QuestionCount:    len(quiz.Questions),
		EstimatedMinutes: int(math.Ceil(float64(len(quiz.Questions)) * minutesPerQuestion)),
	}, nil
}

// CancelGeneration invalidates every in-flight generation. Results that were
// already computed but not yet returned are dropped at their next check.
func (s *quizService) CancelGeneration() {
	s.epoch.Add(1)
}

// checkAlive is evaluated before dispatch and after every wait point; a
// cancelled context and a bumped epoch are reported identically.
func (s *quizService) checkAlive(ctx context.Context, epoch uint64) error {
	if ctx.Err() != nil {
		return domain.NewGenerationCancelledError()
	}
	if s.epoch.Load() != epoch {
		return domain.NewGenerationCancelledError()
	}
	return nil
}

// StartSession validates the submitted quiz and registers a fresh session
// for it.
func (s *quizService) StartSession(req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	quiz, err := req.Quiz.ToDomain()
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Create(quiz)
	if err != nil {
		return nil, err
	}
	logger.Get().Info("Session started",
		zap.String("session_id", sess.ID),
		zap.String("title", quiz.Title))
	return snapshot(sess), nil
}

func (s *quizService) GetSession(sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// RecordAnswer stores one answer without moving the question pointer.
// Choice answers arrive as JSON numbers, short answers as JSON strings;
// anything else is kept as-is and scored incorrect later.
func (s *quizService) RecordAnswer(sessionID string, req *dto.RecordAnswerRequest) (*dto.SessionResponse, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	var value any
	if len(req.Answer) > 0 {
		if err := json.Unmarshal(req.Answer, &value); err != nil {
			return nil, domain.NewInvalidInputError("answer is not valid JSON")
		}
	}
	if value == nil {
		return nil, domain.NewInvalidInputError("answer is required")
	}
	if err := sess.RecordAnswer(req.QuestionID, value); err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// Advance moves to the next question. Advancing past the last question
// completes the session, which triggers exactly one scoring pass and one
// score submission; a submission failure is logged and surfaced through the
// result's saved flag, never as an Advance error.
func (s *quizService) Advance(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	completed, err := sess.Advance()
	if err != nil {
		return nil, err
	}
	if completed {
		s.finalize(ctx, sess)
	}
	return snapshot(sess), nil
}

func (s *quizService) Retreat(sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Retreat(); err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

func (s *quizService) JumpTo(sessionID string, req *dto.JumpRequest) (*dto.SessionResponse, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.JumpTo(req.Index); err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// CancelSession abandons an attempt. The session stays in the store in its
// terminal state so a late status poll still resolves.
func (s *quizService) CancelSession(sessionID string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}
	sess.Cancel()
	logger.Get().Info("Session cancelled", zap.String("session_id", sessionID))
	return nil
}

// Result returns the scored outcome of a completed session with the review
// payload the results screen renders.
func (s *quizService) Result(sessionID string) (*dto.SessionResultResponse, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	result, _, err := sess.FinalizeOnce()
	if err != nil {
		return nil, err
	}

	answers := sess.Answers()
	review := make([]dto.ReviewItem, 0, len(result.Verdicts))
	for i, verdict := range result.Verdicts {
		question := sess.Quiz.Questions[i]
		review = append(review, dto.ReviewItem{
			QuestionID:    verdict.QuestionID,
			Question:      question.Text,
			Correct:       verdict.Correct,
			Answered:      verdict.Answered,
			CorrectOption: correctOptionText(question),
			UserAnswer:    userAnswerText(question, answers[question.ID]),
		})
	}

	resp := &dto.SessionResultResponse{
		Percentage:   result.Percentage,
		CorrectCount: result.CorrectCount,
		Total:        result.Total,
		Grade:        gradeFor(result.Percentage),
		Saved:        sess.Saved(),
		Review:       review,
	}
	if !sess.Saved() {
		resp.SaveError = "Score could not be saved to your history"
	}
	return resp, nil
}

// finalize runs the completion side effects at most once per session.
func (s *quizService) finalize(ctx context.Context, sess *session.Session) {
	result, first, err := sess.FinalizeOnce()
	if err != nil || !first {
		return
	}
	title := cleanTitle(sess.Quiz.Title)
	if err := s.scores.SubmitScore(ctx, title, result.Percentage); err != nil {
		logger.Get().Warn("Score submission failed",
			zap.String("session_id", sess.ID),
			zap.String("title", title),
			zap.Error(err))
		return
	}
	sess.MarkSaved()
	logger.Get().Info("Score saved",
		zap.String("session_id", sess.ID),
		zap.String("title", title),
		zap.Int("score", result.Percentage))
}

// cleanTitle strips the display prefix a generated quiz carries so the
// stored history is keyed by the plain note title.
func cleanTitle(title string) string {
	if rest, ok := strings.CutPrefix(title, "AI Quiz: "); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(title, "Quiz: "); ok {
		return rest
	}
	return title
}

func gradeFor(percentage int) string {
	switch {
	case percentage >= 80:
		return "Excellent!"
	case percentage >= 60:
		return "Good Job!"
	default:
		return "Keep Practicing!"
	}
}

func correctOptionText(question domain.Question) string {
	if question.Type == domain.ShortAnswer {
		return ""
	}
	if question.Correct >= 0 && question.Correct < len(question.Options) {
		return question.Options[question.Correct]
	}
	return ""
}

func userAnswerText(question domain.Question, value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		if idx := v; idx >= 0 && idx < len(question.Options) {
			return question.Options[idx]
		}
	case float64:
		if idx := int(v); idx >= 0 && idx < len(question.Options) {
			return question.Options[idx]
		}
	}
	return ""
}

func snapshot(sess *session.Session) *dto.SessionResponse {
	answers := sess.Answers()
	answered := make([]int, 0, len(answers))
	for _, question := range sess.Quiz.Questions {
		if _, ok := answers[question.ID]; ok {
			answered = append(answered, question.ID)
		}
	}
	return &dto.SessionResponse{
		ID:           sess.ID,
		Title:        sess.Quiz.Title,
		Phase:        string(sess.Phase()),
		CurrentIndex: sess.Current(),
		Total:        len(sess.Quiz.Questions),
		Answered:     answered,
	}
}
