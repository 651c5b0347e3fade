package srs

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Grade represents the learner's recall quality for a single answer.
// Services that only collect a binary right/wrong outcome map it onto
// GradeAgain and GradeGood; the full scale stays available for callers
// with richer input.
type Grade int

const (
	GradeAgain Grade = iota + 1 // Failed to recall.
	GradeHard                   // Recalled with significant difficulty.
	GradeGood                   // Recalled with some effort.
	GradeEasy                   // Recalled effortlessly.
)

var (
	gradeNames = [...]string{
		GradeAgain: "again",
		GradeHard:  "hard",
		GradeGood:  "good",
		GradeEasy:  "easy",
	}
	gradeByName = map[string]Grade{
		"again": GradeAgain,
		"hard":  GradeHard,
		"good":  GradeGood,
		"easy":  GradeEasy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Grade(0)
	_ json.Marshaler           = Grade(0)
	_ json.Unmarshaler         = (*Grade)(nil)
	_ encoding.TextMarshaler   = Grade(0)
	_ encoding.TextUnmarshaler = (*Grade)(nil)
)

// IsValid reports whether g is a defined grade (Again through Easy).
func (g Grade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// Validate returns ErrInvalidGrade when g is outside the defined scale.
func (g Grade) Validate() error {
	if !g.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return nil
}

// String returns the lowercase name of the grade.
// For invalid values it returns "Grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, ok := gradeByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidGrade, text)
	}
	*g = v
	return nil
}

// MarshalJSON implements json.Marshaler. Grade serializes as a JSON string.
func (g Grade) MarshalJSON() ([]byte, error) {
	text, err := g.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (g *Grade) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidGrade, data)
	}
	return g.UnmarshalText([]byte(s))
}
