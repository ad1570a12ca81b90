package normalizer

import (
	"regexp"
	"strings"
)

// optionExtractor tries one known option layout and reports whether it
// applied. Extractors are total: they never fail, they either match or
// decline so the next strategy can run.
type optionExtractor func(fields map[string]any) ([]string, bool)

// Extraction priority: an explicit options array wins, then the numbered
// option1..option4 fields, then the lettered a..d fields.
var optionExtractors = []optionExtractor{
	explicitOptions,
	numberedOptions,
	letterOptions,
}

func extractOptions(fields map[string]any) []string {
	for _, extract := range optionExtractors {
		if options, ok := extract(fields); ok {
			return options
		}
	}
	return nil
}

func explicitOptions(fields map[string]any) ([]string, bool) {
	arr, ok := fields["options"].([]any)
	if !ok {
		return nil, false
	}
	options := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			options = append(options, s)
		}
	}
	return options, true
}

func numberedOptions(fields map[string]any) ([]string, bool) {
	return collectFields(fields, []string{"option1", "option2", "option3", "option4"})
}

func letterOptions(fields map[string]any) ([]string, bool) {
	return collectFields(fields, []string{"a", "b", "c", "d"})
}

// collectFields applies when the first two keys hold non-empty strings and
// gathers the remaining ones in order, dropping empties.
func collectFields(fields map[string]any, keys []string) ([]string, bool) {
	first, ok1 := fields[keys[0]].(string)
	second, ok2 := fields[keys[1]].(string)
	if !ok1 || !ok2 || first == "" || second == "" {
		return nil, false
	}
	options := make([]string, 0, len(keys))
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && s != "" {
			options = append(options, s)
		}
	}
	return options, true
}

func dropBlank(options []string) []string {
	kept := options[:0:len(options)]
	for _, opt := range options {
		if strings.TrimSpace(opt) != "" {
			kept = append(kept, opt)
		}
	}
	return kept
}

// placeholderOption matches the bare letter tokens the AI service emits
// when it has no real option text to offer.
var placeholderOption = regexp.MustCompile(`^[A-Da-d]$`)

// isPlaceholderSet reports whether every option is a single-letter
// placeholder, the sentinel for unusable generated data.
func isPlaceholderSet(options []string) bool {
	if len(options) == 0 {
		return false
	}
	for _, opt := range options {
		if !placeholderOption.MatchString(strings.TrimSpace(opt)) {
			return false
		}
	}
	return true
}

// correctResolver tries one field convention for the correct-answer index.
type correctResolver func(fields map[string]any, options []string) (int, bool)

// Resolution priority mirrors the field zoo the backend has been observed
// to produce: zero-based "correct", zero-based "correctAnswer", one-based
// "correctOption", then a textual "answer" matched against the options.
var correctResolvers = []correctResolver{
	numericField("correct", 0),
	numericField("correctAnswer", 0),
	numericField("correctOption", -1),
	answerText,
}

func resolveCorrect(fields map[string]any, options []string) int {
	for _, resolve := range correctResolvers {
		if idx, ok := resolve(fields, options); ok {
			return idx
		}
	}
	return 0
}

// numericField resolves a JSON number field, shifted by offset so one-based
// conventions land on zero-based indices.
func numericField(key string, offset int) correctResolver {
	return func(fields map[string]any, _ []string) (int, bool) {
		v, ok := fields[key].(float64)
		if !ok {
			return 0, false
		}
		return int(v) + offset, true
	}
}

var answerLetters = map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}

// answerText matches a string "answer" field by exact equality against the
// option texts, falling back to the fixed a-d letter table, then to 0.
func answerText(fields map[string]any, options []string) (int, bool) {
	answer, ok := fields["answer"].(string)
	if !ok {
		return 0, false
	}
	for i, opt := range options {
		if opt == answer {
			return i, true
		}
	}
	if idx, ok := answerLetters[strings.ToLower(answer)]; ok {
		return idx, true
	}
	return 0, true
}

// clampIndex forces a resolved index into [0, n). Out-of-range values from
// the backend are not errors, they are silently clamped.
func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
