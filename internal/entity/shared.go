package entity

import "strings"

// QuizType identifies how a card was quizzed.
type QuizType string

const (
	QuizTypeUnspecified QuizType = ""
	QuizTypeChoice      QuizType = "choice"
	QuizTypeSpell       QuizType = "spell"
	QuizTypeListen      QuizType = "listen"
)

// IsValid reports whether the quiz type is one of the supported kinds.
func (q QuizType) IsValid() bool {
	switch q {
	case QuizTypeChoice, QuizTypeSpell, QuizTypeListen:
		return true
	default:
		return false
	}
}

// ParseQuizType converts an arbitrary string into a supported QuizType.
// Unknown values map to QuizTypeUnspecified.
func ParseQuizType(s string) QuizType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "choice":
		return QuizTypeChoice
	case "spell":
		return QuizTypeSpell
	case "listen":
		return QuizTypeListen
	default:
		return QuizTypeUnspecified
	}
}
