// Package backend is the HTTP adapter for the external study-aid service
// that stores notes, generates quizzes and persists scores. Every response
// is treated as untrusted input: field presence is never assumed beyond the
// envelope, and transport failures are reported as recoverable domain
// errors, never as fatal conditions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"study-pulse/internal/config"
	"study-pulse/internal/domain"
)

// Client talks to the backend's transcribe API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client from configuration. The timeout bounds every
// request; retry and backoff are deliberately left to the caller.
func NewClient(cfg config.BackendConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL cannot be empty")
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type notesEnvelope struct {
	Success bool          `json:"success"`
	Notes   []domain.Note `json:"notes"`
}

type quizEnvelope struct {
	Success bool            `json:"success"`
	Quiz    json.RawMessage `json:"quiz"`
}

type scoreEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type analysisEnvelope struct {
	Success bool                   `json:"success"`
	Quizzes []domain.AttemptRecord `json:"quizzes"`
}

// FetchNotes retrieves the stored notes and transcripts.
func (c *Client) FetchNotes(ctx context.Context) ([]domain.Note, error) {
	var envelope notesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/transcribe/getNotes", nil, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, domain.NewNetworkFailureError("backend rejected the notes request", nil)
	}
	return envelope.Notes, nil
}

// GenerateQuiz asks the backend's AI service for a quiz over one note
// title. The returned payload is raw and loosely shaped; normalization is
// the caller's job.
func (c *Client) GenerateQuiz(ctx context.Context, title string, questionCount int) (domain.RawQuizPayload, error) {
	body := map[string]any{"title": title, "questionCount": questionCount}
	var envelope quizEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/transcribe/getQuiz", body, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, domain.NewNetworkFailureError("backend rejected the quiz generation request", nil)
	}
	if len(envelope.Quiz) == 0 {
		return nil, domain.NewUnexpectedShapeError("backend response carries no quiz field")
	}
	return domain.RawQuizPayload(envelope.Quiz), nil
}

// SubmitScore persists one completed attempt. A rejected submission is a
// PersistenceFailure: the session keeps its computed score either way, only
// the saved confirmation is withheld.
func (c *Client) SubmitScore(ctx context.Context, title string, score int) error {
	body := map[string]any{"title": title, "score": score}
	var envelope scoreEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/transcribe/score", body, &envelope); err != nil {
		return domain.NewPersistenceFailureError("failed to submit score", err)
	}
	if !envelope.Success {
		message := envelope.Message
		if message == "" {
			message = "backend rejected the score submission"
		}
		return domain.NewPersistenceFailureError(message, nil)
	}
	return nil
}

// FetchAttempts returns the stored attempt history for one title.
func (c *Client) FetchAttempts(ctx context.Context, title string) ([]domain.AttemptRecord, error) {
	body := map[string]any{"title": title}
	var envelope analysisEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/transcribe/quizAnalysis", body, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, domain.NewNetworkFailureError("backend rejected the analysis request", nil)
	}
	for i := range envelope.Quizzes {
		envelope.Quizzes[i].Title = title
	}
	return envelope.Quizzes, nil
}

// do performs one request/response round trip. Transport and HTTP-level
// failures map to NetworkFailure, undecodable bodies to MalformedPayload;
// both are recoverable at the boundary.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return domain.NewInternalError("failed to encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewNetworkFailureError(fmt.Sprintf("request to %s failed", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewNetworkFailureError(fmt.Sprintf("backend returned status %d for %s", resp.StatusCode, path), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewMalformedPayloadError(err)
	}
	return nil
}
