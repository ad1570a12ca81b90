package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"study-pulse/internal/config"
	"study-pulse/internal/domain"
	"study-pulse/internal/dto"
	"study-pulse/internal/logger"
	"study-pulse/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{}); err != nil {
		log.Fatalf("Failed to initialize logger for handler tests: %v", err)
	}
	exitCode := m.Run()
	_ = logger.Sync()
	os.Exit(exitCode)
}

// MockQuizService is a mock implementation of service.QuizService
type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GenerateQuiz(ctx context.Context, req *dto.GenerateQuizRequest) (*dto.GeneratedQuizResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GeneratedQuizResponse), args.Error(1)
}

func (m *MockQuizService) CancelGeneration() {
	m.Called()
}

func (m *MockQuizService) StartSession(req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockQuizService) GetSession(sessionID string) (*dto.SessionResponse, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockQuizService) RecordAnswer(sessionID string, req *dto.RecordAnswerRequest) (*dto.SessionResponse, error) {
	args := m.Called(sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockQuizService) Advance(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockQuizService) Retreat(sessionID string) (*dto.SessionResponse, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockQuizService) JumpTo(sessionID string, req *dto.JumpRequest) (*dto.SessionResponse, error) {
	args := m.Called(sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockQuizService) CancelSession(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

func (m *MockQuizService) Result(sessionID string) (*dto.SessionResultResponse, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResultResponse), args.Error(1)
}

func newQuizApp(svc *MockQuizService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	h := NewQuizHandler(svc)

	app.Post("/api/quizzes/generate", h.GenerateQuiz)
	app.Delete("/api/quizzes/generate", h.CancelGeneration)
	app.Post("/api/sessions", h.StartSession)
	app.Get("/api/sessions/:id", h.GetSession)
	app.Delete("/api/sessions/:id", h.CancelSession)
	app.Put("/api/sessions/:id/answers", h.RecordAnswer)
	app.Post("/api/sessions/:id/advance", h.Advance)
	app.Get("/api/sessions/:id/result", h.Result)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGenerateQuizHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockQuizService)
		svc.On("GenerateQuiz", mock.Anything, &dto.GenerateQuizRequest{Title: "Biology", QuestionCount: 5}).
			Return(&dto.GeneratedQuizResponse{
				Quiz:          dto.QuizResponse{Title: "Biology"},
				QuestionCount: 5,
			}, nil)

		app := newQuizApp(svc)
		resp := doJSON(t, app, http.MethodPost, "/api/quizzes/generate",
			dto.GenerateQuizRequest{Title: "Biology", QuestionCount: 5})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[dto.GeneratedQuizResponse](t, resp)
		assert.Equal(t, "Biology", body.Quiz.Title)
		svc.AssertExpectations(t)
	})

	t.Run("normalization failure maps to 502", func(t *testing.T) {
		svc := new(MockQuizService)
		svc.On("GenerateQuiz", mock.Anything, mock.Anything).
			Return(nil, domain.NewNoValidQuestionsError())

		app := newQuizApp(svc)
		resp := doJSON(t, app, http.MethodPost, "/api/quizzes/generate",
			dto.GenerateQuizRequest{Title: "Biology"})

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := decodeBody[middleware.ErrorResponse](t, resp)
		assert.Equal(t, string(domain.ErrNoValidQuestions), body.Code)
	})

	t.Run("cancellation maps to 409", func(t *testing.T) {
		svc := new(MockQuizService)
		svc.On("GenerateQuiz", mock.Anything, mock.Anything).
			Return(nil, domain.NewGenerationCancelledError())

		app := newQuizApp(svc)
		resp := doJSON(t, app, http.MethodPost, "/api/quizzes/generate",
			dto.GenerateQuizRequest{Title: "Biology"})

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		app := newQuizApp(new(MockQuizService))
		req := httptest.NewRequest(http.MethodPost, "/api/quizzes/generate", bytes.NewReader([]byte(`{`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCancelGenerationHandler(t *testing.T) {
	svc := new(MockQuizService)
	svc.On("CancelGeneration").Return()

	app := newQuizApp(svc)
	resp := doJSON(t, app, http.MethodDelete, "/api/quizzes/generate", nil)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestStartSessionHandler(t *testing.T) {
	svc := new(MockQuizService)
	svc.On("StartSession", mock.Anything).
		Return(&dto.SessionResponse{ID: "s1", Phase: "in-progress", Total: 2}, nil)

	app := newQuizApp(svc)
	resp := doJSON(t, app, http.MethodPost, "/api/sessions", dto.StartSessionRequest{})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody[dto.SessionResponse](t, resp)
	assert.Equal(t, "s1", body.ID)
}

func TestSessionNotFoundMapsTo404(t *testing.T) {
	svc := new(MockQuizService)
	svc.On("GetSession", "missing").Return(nil, domain.NewSessionNotFoundError("missing"))

	app := newQuizApp(svc)
	resp := doJSON(t, app, http.MethodGet, "/api/sessions/missing", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[middleware.ErrorResponse](t, resp)
	assert.Equal(t, string(domain.ErrSessionNotFound), body.Code)
}

func TestRecordAnswerHandler(t *testing.T) {
	svc := new(MockQuizService)
	svc.On("RecordAnswer", "s1", mock.MatchedBy(func(req *dto.RecordAnswerRequest) bool {
		return req.QuestionID == 2
	})).Return(&dto.SessionResponse{ID: "s1", Answered: []int{2}}, nil)

	app := newQuizApp(svc)
	resp := doJSON(t, app, http.MethodPut, "/api/sessions/s1/answers",
		map[string]any{"question_id": 2, "answer": 1})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[dto.SessionResponse](t, resp)
	assert.Equal(t, []int{2}, body.Answered)
}

func TestAdvanceHandler(t *testing.T) {
	t.Run("blocked advance maps to 409", func(t *testing.T) {
		svc := new(MockQuizService)
		svc.On("Advance", mock.Anything, "s1").
			Return(nil, domain.NewInvalidTransitionError("current question has no recorded answer"))

		app := newQuizApp(svc)
		resp := doJSON(t, app, http.MethodPost, "/api/sessions/s1/advance", nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("completion returns the completed snapshot", func(t *testing.T) {
		svc := new(MockQuizService)
		svc.On("Advance", mock.Anything, "s1").
			Return(&dto.SessionResponse{ID: "s1", Phase: "completed"}, nil)

		app := newQuizApp(svc)
		resp := doJSON(t, app, http.MethodPost, "/api/sessions/s1/advance", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[dto.SessionResponse](t, resp)
		assert.Equal(t, "completed", body.Phase)
	})
}

func TestResultHandler(t *testing.T) {
	svc := new(MockQuizService)
	svc.On("Result", "s1").Return(&dto.SessionResultResponse{
		Percentage: 85,
		Grade:      "Excellent!",
		Saved:      true,
	}, nil)

	app := newQuizApp(svc)
	resp := doJSON(t, app, http.MethodGet, "/api/sessions/s1/result", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[dto.SessionResultResponse](t, resp)
	assert.Equal(t, 85, body.Percentage)
	assert.Equal(t, "Excellent!", body.Grade)
}

func TestCancelSessionHandler(t *testing.T) {
	svc := new(MockQuizService)
	svc.On("CancelSession", "s1").Return(nil)

	app := newQuizApp(svc)
	resp := doJSON(t, app, http.MethodDelete, "/api/sessions/s1", nil)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	svc.AssertExpectations(t)
}
