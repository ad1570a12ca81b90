package session

import (
	"testing"

	"study-pulse/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuiz(t *testing.T) *domain.Quiz {
	t.Helper()
	quiz, err := domain.NewQuiz("Chemistry", []domain.Question{
		{ID: 1, Type: domain.MultipleChoice, Text: "Q1", Options: []string{"H2O", "CO2"}, Correct: 0},
		{ID: 2, Type: domain.MultipleChoice, Text: "Q2", Options: []string{"Na", "K", "Fe"}, Correct: 2},
		{ID: 3, Type: domain.ShortAnswer, Text: "Q3"},
	})
	require.NoError(t, err)
	return quiz
}

func TestNewSessionStartsInProgress(t *testing.T) {
	sess := New("s1", testQuiz(t))
	assert.Equal(t, PhaseInProgress, sess.Phase())
	assert.Equal(t, 0, sess.Current())
	assert.Empty(t, sess.Answers())
}

func TestRecordAnswer(t *testing.T) {
	sess := New("s1", testQuiz(t))

	require.NoError(t, sess.RecordAnswer(1, 0))
	assert.Equal(t, map[int]any{1: 0}, sess.Answers())

	// recording never moves the pointer
	assert.Equal(t, 0, sess.Current())

	t.Run("upsert replaces the previous answer", func(t *testing.T) {
		require.NoError(t, sess.RecordAnswer(1, 1))
		assert.Equal(t, map[int]any{1: 1}, sess.Answers())
	})

	t.Run("unknown question id rejected", func(t *testing.T) {
		err := sess.RecordAnswer(99, 0)
		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrInvalidInput, domainErr.Code)
	})
}

func TestAdvanceBlockedUntilAnswered(t *testing.T) {
	sess := New("s1", testQuiz(t))

	_, err := sess.Advance()
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrInvalidTransition, domainErr.Code)
	assert.Equal(t, 0, sess.Current())

	require.NoError(t, sess.RecordAnswer(1, 0))
	completed, err := sess.Advance()
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, 1, sess.Current())
}

func TestAdvancePastLastQuestionCompletes(t *testing.T) {
	sess := New("s1", testQuiz(t))

	require.NoError(t, sess.RecordAnswer(1, 0))
	_, err := sess.Advance()
	require.NoError(t, err)
	require.NoError(t, sess.RecordAnswer(2, 2))
	_, err = sess.Advance()
	require.NoError(t, err)
	require.NoError(t, sess.RecordAnswer(3, "my answer"))

	completed, err := sess.Advance()
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, PhaseCompleted, sess.Phase())

	t.Run("completed session accepts no more mutations", func(t *testing.T) {
		assert.Error(t, sess.RecordAnswer(1, 1))
		_, err := sess.Advance()
		assert.Error(t, err)
		assert.Error(t, sess.Retreat())
		assert.Error(t, sess.JumpTo(0))
	})
}

func TestRetreat(t *testing.T) {
	sess := New("s1", testQuiz(t))

	t.Run("blocked at the first question", func(t *testing.T) {
		assert.Error(t, sess.Retreat())
	})

	require.NoError(t, sess.RecordAnswer(1, 0))
	_, err := sess.Advance()
	require.NoError(t, err)

	require.NoError(t, sess.Retreat())
	assert.Equal(t, 0, sess.Current())

	// earlier answer survives the backward move
	assert.Equal(t, map[int]any{1: 0}, sess.Answers())
}

func TestJumpTo(t *testing.T) {
	sess := New("s1", testQuiz(t))

	require.NoError(t, sess.JumpTo(2))
	assert.Equal(t, 2, sess.Current())

	t.Run("out of range rejected, pointer untouched", func(t *testing.T) {
		assert.Error(t, sess.JumpTo(-1))
		assert.Error(t, sess.JumpTo(3))
		assert.Equal(t, 2, sess.Current())
	})
}

func TestCancelIsTerminalAndClearsAnswers(t *testing.T) {
	sess := New("s1", testQuiz(t))
	require.NoError(t, sess.RecordAnswer(1, 0))

	sess.Cancel()
	assert.Equal(t, PhaseCancelled, sess.Phase())
	assert.Empty(t, sess.Answers())

	assert.Error(t, sess.RecordAnswer(1, 0))
	_, err := sess.Advance()
	assert.Error(t, err)
	_, _, err = sess.FinalizeOnce()
	assert.Error(t, err)
}

func TestFinalizeOnce(t *testing.T) {
	sess := New("s1", testQuiz(t))

	t.Run("requires completion", func(t *testing.T) {
		_, _, err := sess.FinalizeOnce()
		require.Error(t, err)
	})

	require.NoError(t, sess.RecordAnswer(1, 0))
	_, err := sess.Advance()
	require.NoError(t, err)
	require.NoError(t, sess.RecordAnswer(2, 1))
	_, err = sess.Advance()
	require.NoError(t, err)
	require.NoError(t, sess.RecordAnswer(3, "water"))
	completed, err := sess.Advance()
	require.NoError(t, err)
	require.True(t, completed)

	result, first, err := sess.FinalizeOnce()
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 67, result.Percentage)

	t.Run("second call returns cached result without refiring", func(t *testing.T) {
		again, first, err := sess.FinalizeOnce()
		require.NoError(t, err)
		assert.False(t, first)
		assert.Same(t, result, again)
	})
}

func TestStore(t *testing.T) {
	store := NewStore()

	sess, err := store.Create(testQuiz(t))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get("missing")
		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrSessionNotFound, domainErr.Code)
	})

	t.Run("invalid quiz rejected", func(t *testing.T) {
		_, err := store.Create(&domain.Quiz{Title: "empty"})
		assert.Error(t, err)
	})

	store.Remove(sess.ID)
	_, err = store.Get(sess.ID)
	assert.Error(t, err)
}
