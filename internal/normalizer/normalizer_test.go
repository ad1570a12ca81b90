package normalizer

import (
	"testing"

	"study-pulse/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(t *testing.T, payload string) *domain.Quiz {
	t.Helper()
	quiz, err := Normalize("Biology 101", domain.RawQuizPayload(payload))
	require.NoError(t, err)
	return quiz
}

func TestNormalizeArrayPayload(t *testing.T) {
	quiz := normalize(t, `[
		{"question": "What is the powerhouse of the cell?",
		 "options": ["Mitochondria", "Nucleus", "Ribosome", "Golgi"],
		 "correct": 0}
	]`)

	require.Len(t, quiz.Questions, 1)
	q := quiz.Questions[0]
	assert.Equal(t, 1, q.ID)
	assert.Equal(t, "What is the powerhouse of the cell?", q.Text)
	assert.Equal(t, []string{"Mitochondria", "Nucleus", "Ribosome", "Golgi"}, q.Options)
	assert.Equal(t, 0, q.Correct)
	assert.Equal(t, domain.MultipleChoice, q.Type)
}

func TestNormalizeFencedStringPayload(t *testing.T) {
	t.Run("json fence", func(t *testing.T) {
		payload := `"` + "```json\\n[{\\\"question\\\": \\\"Q\\\", \\\"options\\\": [\\\"Yes\\\", \\\"No\\\"], \\\"correct\\\": 1}]\\n```" + `"`
		quiz := normalize(t, payload)
		require.Len(t, quiz.Questions, 1)
		assert.Equal(t, 1, quiz.Questions[0].Correct)
	})

	t.Run("uppercase fence marker", func(t *testing.T) {
		payload := `"` + "```JSON\\n[{\\\"question\\\": \\\"Q\\\", \\\"options\\\": [\\\"Yes\\\", \\\"No\\\"]}]\\n```" + `"`
		quiz := normalize(t, payload)
		require.Len(t, quiz.Questions, 1)
	})

	t.Run("bare fence", func(t *testing.T) {
		payload := `"` + "```\\n[{\\\"question\\\": \\\"Q\\\", \\\"options\\\": [\\\"Yes\\\", \\\"No\\\"]}]\\n```" + `"`
		quiz := normalize(t, payload)
		require.Len(t, quiz.Questions, 1)
	})

	t.Run("no fence", func(t *testing.T) {
		payload := `"[{\"question\": \"Q\", \"options\": [\"Yes\", \"No\"]}]"`
		quiz := normalize(t, payload)
		require.Len(t, quiz.Questions, 1)
	})
}

func TestNormalizeErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		code    domain.ErrorCode
	}{
		{"empty payload", ``, domain.ErrMalformedPayload},
		{"truncated array", `[{"question": "Q"`, domain.ErrMalformedPayload},
		{"not json at all", `not json`, domain.ErrMalformedPayload},
		{"object instead of array", `{"quiz": []}`, domain.ErrUnexpectedShape},
		{"number payload", `42`, domain.ErrUnexpectedShape},
		{"string embedding an object", `"{\"quiz\": []}"`, domain.ErrUnexpectedShape},
		{"string embedding garbage", `"not json either"`, domain.ErrMalformedPayload},
		{"array with nothing usable", `[{"question": "Q"}, "text", 7]`, domain.ErrNoValidQuestions},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize("T", domain.RawQuizPayload(tc.payload))
			require.Error(t, err)
			var domainErr *domain.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tc.code, domainErr.Code)
		})
	}
}

func TestQuestionTextFallback(t *testing.T) {
	quiz := normalize(t, `[
		{"q": "Short key?", "options": ["Yes", "No"]},
		{"options": ["Left", "Right"]}
	]`)

	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "Short key?", quiz.Questions[0].Text)
	// generated stand-in text numbers by input position
	assert.Equal(t, "Question 2", quiz.Questions[1].Text)
}

func TestOptionExtractionPriority(t *testing.T) {
	t.Run("explicit options array wins over fields", func(t *testing.T) {
		quiz := normalize(t, `[{
			"question": "Q",
			"options": ["From array 1", "From array 2"],
			"option1": "From field 1", "option2": "From field 2"
		}]`)
		assert.Equal(t, []string{"From array 1", "From array 2"}, quiz.Questions[0].Options)
	})

	t.Run("numbered option fields", func(t *testing.T) {
		quiz := normalize(t, `[{
			"question": "Q",
			"option1": "Alpha", "option2": "Beta", "option3": "Gamma", "option4": "Delta"
		}]`)
		assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Delta"}, quiz.Questions[0].Options)
	})

	t.Run("numbered fields skip empty trailing options", func(t *testing.T) {
		quiz := normalize(t, `[{
			"question": "Q",
			"option1": "Alpha", "option2": "Beta", "option3": "", "option4": "Delta"
		}]`)
		assert.Equal(t, []string{"Alpha", "Beta", "Delta"}, quiz.Questions[0].Options)
	})

	t.Run("lettered fields", func(t *testing.T) {
		quiz := normalize(t, `[{
			"question": "Q",
			"a": "North", "b": "South", "c": "East", "d": "West"
		}]`)
		assert.Equal(t, []string{"North", "South", "East", "West"}, quiz.Questions[0].Options)
	})

	t.Run("first two fields must be present", func(t *testing.T) {
		_, err := Normalize("T", domain.RawQuizPayload(`[{
			"question": "Q", "option1": "Alone", "option3": "Skipped"
		}]`))
		require.Error(t, err)
	})
}

func TestUnusableQuestionsDropped(t *testing.T) {
	t.Run("blank options are filtered before the minimum check", func(t *testing.T) {
		_, err := Normalize("T", domain.RawQuizPayload(`[{
			"question": "Q", "options": ["Only one", "", "   "]
		}]`))
		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrNoValidQuestions, domainErr.Code)
	})

	t.Run("all single letter placeholder set is rejected", func(t *testing.T) {
		_, err := Normalize("T", domain.RawQuizPayload(`[{
			"question": "Q", "options": ["A", "b", "C", "d"]
		}]`))
		require.Error(t, err)
	})

	t.Run("letters mixed with real text survive", func(t *testing.T) {
		quiz := normalize(t, `[{
			"question": "Q", "options": ["A", "A real option"]
		}]`)
		require.Len(t, quiz.Questions, 1)
	})

	t.Run("non string array entries are ignored", func(t *testing.T) {
		quiz := normalize(t, `[{
			"question": "Q", "options": ["Yes", 3, "No", null]
		}]`)
		assert.Equal(t, []string{"Yes", "No"}, quiz.Questions[0].Options)
	})
}

func TestCorrectResolutionPriority(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    int
	}{
		{"zero based correct", `[{"question":"Q","options":["X","Y","Z"],"correct":2}]`, 2},
		{"correctAnswer fallback", `[{"question":"Q","options":["X","Y","Z"],"correctAnswer":1}]`, 1},
		{"one based correctOption", `[{"question":"Q","options":["X","Y","Z"],"correctOption":1}]`, 0},
		{"answer matches option text", `[{"question":"Q","options":["X","Y","Z"],"answer":"Y"}]`, 1},
		{"answer letter table", `[{"question":"Q","options":["X","Y","Z"],"answer":"c"}]`, 2},
		{"unmatched answer falls back to zero", `[{"question":"Q","options":["X","Y","Z"],"answer":"missing"}]`, 0},
		{"no correct field at all", `[{"question":"Q","options":["X","Y"]}]`, 0},
		{"correct wins over answer", `[{"question":"Q","options":["X","Y","Z"],"correct":2,"answer":"X"}]`, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := normalize(t, tc.payload)
			assert.Equal(t, tc.want, quiz.Questions[0].Correct)
		})
	}
}

func TestCorrectIndexClamping(t *testing.T) {
	t.Run("too large clamps to last option", func(t *testing.T) {
		quiz := normalize(t, `[{"question":"Q","options":["X","Y","Z"],"correct":9}]`)
		assert.Equal(t, 2, quiz.Questions[0].Correct)
	})

	t.Run("negative clamps to zero", func(t *testing.T) {
		quiz := normalize(t, `[{"question":"Q","options":["X","Y","Z"],"correct":-3}]`)
		assert.Equal(t, 0, quiz.Questions[0].Correct)
	})

	t.Run("one based zero lands on first option", func(t *testing.T) {
		quiz := normalize(t, `[{"question":"Q","options":["X","Y"],"correctOption":0}]`)
		assert.Equal(t, 0, quiz.Questions[0].Correct)
	})
}

func TestSurvivorOrderIDs(t *testing.T) {
	quiz := normalize(t, `[
		{"question": "Dropped", "options": ["Only"]},
		{"question": "First survivor", "options": ["Yes", "No"]},
		{"question": "Also dropped"},
		{"question": "Second survivor", "options": ["Up", "Down"]}
	]`)

	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, 1, quiz.Questions[0].ID)
	assert.Equal(t, "First survivor", quiz.Questions[0].Text)
	assert.Equal(t, 2, quiz.Questions[1].ID)
	assert.Equal(t, "Second survivor", quiz.Questions[1].Text)
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"uppercase", "```JSON\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"no fence", " [1] ", "[1]"},
		{"missing closer", "```json\n[1]", "[1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFence(tc.in))
		})
	}
}
