// Package normalizer converts the loosely-typed quiz payloads returned by
// the AI generation backend into canonical domain.Quiz values. The backend
// is free to hand back a JSON array, a fenced JSON string, or garbage; every
// shape is classified explicitly and reduced to the same validated form.
package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"study-pulse/internal/domain"
)

// Normalize converts a raw payload into a Quiz with the supplied title.
// It is a pure function: identical input yields identical output and no
// state is touched. Unusable questions are dropped silently; an empty
// survivor set is an error, never an empty quiz.
func Normalize(title string, raw domain.RawQuizPayload) (*domain.Quiz, error) {
	elements, err := decodeElements(raw)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(elements))
	for idx, element := range elements {
		var fields map[string]any
		if err := json.Unmarshal(element, &fields); err != nil {
			// non-object entries carry nothing extractable
			continue
		}
		question, ok := normalizeQuestion(fields, idx)
		if !ok {
			continue
		}
		// ids follow survivor order; dropped questions do not reserve one
		question.ID = len(questions) + 1
		questions = append(questions, question)
	}

	if len(questions) == 0 {
		return nil, domain.NewNoValidQuestionsError()
	}
	return &domain.Quiz{Title: title, Questions: questions}, nil
}

// decodeElements classifies the payload into one of its three variants
// (array, fenced string, invalid) and resolves it to the element list.
func decodeElements(raw domain.RawQuizPayload) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, domain.NewMalformedPayloadError(errors.New("empty payload"))
	}

	var elements []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, domain.NewMalformedPayloadError(err)
		}
		return elements, nil
	case '"':
		var fenced string
		if err := json.Unmarshal(trimmed, &fenced); err != nil {
			return nil, domain.NewMalformedPayloadError(err)
		}
		cleaned := stripCodeFence(fenced)
		if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
			if json.Valid([]byte(cleaned)) {
				return nil, domain.NewUnexpectedShapeError("embedded quiz JSON is not an array")
			}
			return nil, domain.NewMalformedPayloadError(err)
		}
		return elements, nil
	default:
		if !json.Valid(trimmed) {
			return nil, domain.NewMalformedPayloadError(errors.New("payload is not valid JSON"))
		}
		return nil, domain.NewUnexpectedShapeError("quiz payload is neither an array nor a string")
	}
}

// stripCodeFence removes leading/trailing markdown code-fence markers the
// LLM tends to wrap its JSON in. The ```json opener is matched
// case-insensitively.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "```json") {
		s = strings.TrimSpace(s[len("```json"):])
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(s[len("```"):])
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalizeQuestion maps one loosely-shaped question object to a canonical
// Question. The second return value is false when the question must be
// dropped: fewer than two usable options, or a placeholder option set.
func normalizeQuestion(fields map[string]any, idx int) (domain.Question, bool) {
	options := dropBlank(extractOptions(fields))
	if len(options) < 2 || isPlaceholderSet(options) {
		return domain.Question{}, false
	}

	correct := resolveCorrect(fields, options)
	return domain.Question{
		Type:    domain.MultipleChoice,
		Text:    questionText(fields, idx),
		Options: options,
		Correct: clampIndex(correct, len(options)),
	}, true
}

// questionText falls back from "question" to "q" to a generated stand-in
// numbered by input position.
func questionText(fields map[string]any, idx int) string {
	if s, ok := fields["question"].(string); ok && s != "" {
		return s
	}
	if s, ok := fields["q"].(string); ok && s != "" {
		return s
	}
	return fmt.Sprintf("Question %d", idx+1)
}
