// Package quizgen provides a local quiz source backed by an Ollama model,
// used when no remote backend is configured. Its output goes through the
// same normalization path as the backend's: the model's reply is handed
// over as an untrusted raw payload, fences and all.
package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"study-pulse/internal/domain"
)

const quizPrompt = `You are an expert quiz generator. Create %d multiple-choice quiz questions
about the topic: "%s".

Respond with a single JSON array. Each element must be an object with:
1. "question": the question text.
2. "options": an array of exactly 4 answer options.
3. "correct": the zero-based index of the correct option.

Do not include any text outside the JSON array.`

// OllamaQuizGenerator implements domain.QuizSource using a local LLM.
type OllamaQuizGenerator struct {
	llm    *ollama.LLM
	logger *zap.Logger
}

// NewOllamaQuizGenerator creates the generator for a server URL and model.
func NewOllamaQuizGenerator(serverURL, modelName string, logger *zap.Logger) (*OllamaQuizGenerator, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(modelName),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama LLM client: %w", err)
	}

	logger.Info("Initializing OllamaQuizGenerator", zap.String("model", modelName))
	return &OllamaQuizGenerator{llm: llm, logger: logger}, nil
}

// GenerateQuiz prompts the model and returns its reply as a raw payload.
// The reply is encoded as a JSON string so the normalizer sees the same
// string-or-array union the remote backend produces.
func (g *OllamaQuizGenerator) GenerateQuiz(ctx context.Context, title string, questionCount int) (domain.RawQuizPayload, error) {
	prompt := fmt.Sprintf(quizPrompt, questionCount, title)

	completion, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		g.logger.Error("Ollama quiz generation failed", zap.Error(err), zap.String("title", title))
		return nil, domain.NewNetworkFailureError("local quiz generation failed", err)
	}

	raw, err := json.Marshal(completion)
	if err != nil {
		return nil, domain.NewInternalError("failed to wrap model output", err)
	}
	return domain.RawQuizPayload(raw), nil
}

var _ domain.QuizSource = (*OllamaQuizGenerator)(nil)
