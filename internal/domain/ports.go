package domain

import (
	"context"
	"encoding/json"
)

// RawQuizPayload is the untrusted quiz body returned by a quiz source.
// It may be a JSON array of loosely-shaped question objects, or a JSON
// string (possibly fenced in ```json markers) that parses to such an array.
// Nothing about its shape is guaranteed; the normalizer owns classification.
type RawQuizPayload = json.RawMessage

// NoteSource exposes the stored notes/transcripts of the backend.
type NoteSource interface {
	FetchNotes(ctx context.Context) ([]Note, error)
}

// QuizSource produces a raw quiz payload for a note title. Implementations
// are the remote backend adapter and the local Ollama generator; either way
// the result is untrusted input for the normalizer.
type QuizSource interface {
	GenerateQuiz(ctx context.Context, title string, questionCount int) (RawQuizPayload, error)
}

// ScoreSink persists a completed attempt's score.
type ScoreSink interface {
	SubmitScore(ctx context.Context, title string, score int) error
}

// HistorySource returns the stored attempt history for one title.
type HistorySource interface {
	FetchAttempts(ctx context.Context, title string) ([]AttemptRecord, error)
}
