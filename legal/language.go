package legal

import (
	"strings"

	"github.com/nyayagpt/nyaya/dag"
	"github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/validation"
)

// Language is an output language preference.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Both    Language = "both"
)

// InputLanguage is the pipeline input carrying the language preference.
const InputLanguage = "language_preference"

// ParseLanguage normalises a preference. Empty means English.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return English, nil
	}
	if !validation.IsLanguage(s) {
		return "", errors.InvalidInput(InputLanguage, "must be one of: "+strings.Join(validation.Languages, ", "))
	}
	return Language(s), nil
}

// Directive is the explicit output-language instruction appended to every
// prompt.
func (l Language) Directive() string {
	switch l {
	case Hindi:
		return "LANGUAGE: Write your entire response in natural, formal Hindi (Devanagari script). " +
			"Keep section numbers and case citations as they are."
	case Both:
		return "LANGUAGE: Write your response in English, and immediately after each bullet point or section " +
			"add a short Hindi translation (Devanagari script)."
	default:
		return "LANGUAGE: Write your entire response in English."
	}
}

// SearchHint is the tag the retrieval agents append to search queries.
func (l Language) SearchHint() string {
	switch l {
	case Hindi:
		return "[hindi]"
	case Both:
		return "[all]"
	default:
		return "[english]"
	}
}

// LanguageDecorator appends the directive for the run's language preference
// to every rendered prompt.
func LanguageDecorator() dag.PromptDecorator {
	return func(prompt string, inputs map[string]string) string {
		lang, err := ParseLanguage(inputs[InputLanguage])
		if err != nil {
			lang = English
		}
		return prompt + "\n\n" + lang.Directive()
	}
}
