// Package session drives a single quiz attempt as a state machine: question
// pointer, recorded answers, completion and cancellation. Sessions hold the
// only mutable state in the core and live purely in memory.
package session

import (
	"sync"
	"time"

	"study-pulse/internal/domain"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseInProgress Phase = "in-progress"
	PhaseCompleted  Phase = "completed"
	PhaseCancelled  Phase = "cancelled"
)

// Session is one user's attempt at a single Quiz instance. The quiz is
// shared read-only; everything else is owned and mutated here only.
// Answer values are deliberately untyped at this layer: an option index for
// choice questions, free text for short answers. Scoring treats mismatched
// types as incorrect.
type Session struct {
	mu sync.Mutex

	ID        string
	Quiz      *domain.Quiz
	StartedAt time.Time

	current int
	answers map[int]any
	phase   Phase

	// finalize-once guard: completion must trigger at most one scoring and
	// score submission, re-entering the completed state must not re-fire.
	finalized bool
	result    *ScoreResult
	saved     bool
}

// New starts a session over a validated quiz.
func New(id string, quiz *domain.Quiz) *Session {
	return &Session{
		ID:        id,
		Quiz:      quiz,
		StartedAt: time.Now(),
		current:   0,
		answers:   make(map[int]any),
		phase:     PhaseInProgress,
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Current returns the zero-based index of the question being shown.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Answers returns a copy of the recorded answers keyed by question id.
func (s *Session) Answers() map[int]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]any, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// RecordAnswer upserts the answer for a question. It never advances the
// pointer and performs no type validation; that is the caller's contract.
func (s *Session) RecordAnswer(questionID int, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return domain.NewInvalidTransitionError("answers can only be recorded while the session is in progress")
	}
	if !s.hasQuestion(questionID) {
		return domain.NewInvalidInputError("unknown question id")
	}
	s.answers[questionID] = value
	return nil
}

// Advance moves to the next question, or completes the session when the
// current question is the last one. It is blocked until the current
// question has a recorded answer.
func (s *Session) Advance() (completed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return false, domain.NewInvalidTransitionError("session is not in progress")
	}
	if _, answered := s.answers[s.Quiz.Questions[s.current].ID]; !answered {
		return false, domain.NewInvalidTransitionError("current question has no recorded answer")
	}
	if s.current == len(s.Quiz.Questions)-1 {
		s.phase = PhaseCompleted
		return true, nil
	}
	s.current++
	return false, nil
}

// Retreat moves one question back. Recorded answers are kept.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return domain.NewInvalidTransitionError("session is not in progress")
	}
	if s.current == 0 {
		return domain.NewInvalidTransitionError("already at the first question")
	}
	s.current--
	return nil
}

// JumpTo sets the question pointer directly. Out-of-range indices are
// rejected rather than clamped.
func (s *Session) JumpTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return domain.NewInvalidTransitionError("session is not in progress")
	}
	if index < 0 || index >= len(s.Quiz.Questions) {
		return domain.NewInvalidInputError("question index out of range")
	}
	s.current = index
	return nil
}

// Cancel transitions to cancelled from any state and clears the recorded
// answers. Cancellation is terminal; only a fresh session can follow.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseCancelled
	s.answers = make(map[int]any)
}

// FinalizeOnce scores a completed session. The first call computes and
// stores the result and returns first=true so the caller knows to submit
// the score; subsequent calls return the cached result with first=false.
func (s *Session) FinalizeOnce() (result *ScoreResult, first bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseCompleted {
		return nil, false, domain.NewInvalidTransitionError("session is not completed")
	}
	if s.finalized {
		return s.result, false, nil
	}
	s.finalized = true
	s.result = Score(s.Quiz, s.answers)
	return s.result, true, nil
}

// MarkSaved records that the score submission side effect succeeded.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = true
}

// Saved reports whether the score reached the backend.
func (s *Session) Saved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Result returns the stored score result, present only after finalization.
func (s *Session) Result() *ScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) hasQuestion(questionID int) bool {
	for i := range s.Quiz.Questions {
		if s.Quiz.Questions[i].ID == questionID {
			return true
		}
	}
	return false
}
