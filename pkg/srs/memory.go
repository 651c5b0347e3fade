package srs

import (
	"encoding"
	"encoding/json"
	"fmt"
	"time"
)

// State represents the scheduling stage of a card's memory.
type State int

const (
	StateNew        State = iota // Never reviewed.
	StateLearning                // First successful exposures, short fixed intervals.
	StateReview                  // Long-term review cycle, stability-derived intervals.
	StateRelearning              // Forgotten, recovering with short intervals.
)

var (
	stateNames = [...]string{
		StateNew:        "new",
		StateLearning:   "learning",
		StateReview:     "review",
		StateRelearning: "relearning",
	}
	stateByName = map[string]State{
		"new":        StateNew,
		"learning":   StateLearning,
		"review":     StateReview,
		"relearning": StateRelearning,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = State(0)
	_ json.Marshaler           = State(0)
	_ json.Unmarshaler         = (*State)(nil)
	_ encoding.TextMarshaler   = State(0)
	_ encoding.TextUnmarshaler = (*State)(nil)
)

// IsValid reports whether s is one of the four defined states.
func (s State) IsValid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the lowercase name of the state.
// For invalid values it returns "State(n)".
func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, ok := stateByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidState, text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. State serializes as a JSON string.
func (s State) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidState, data)
	}
	return s.UnmarshalText([]byte(str))
}

// Memory is the scheduling state the engine maintains per card.
// Values are immutable from the engine's point of view: Review returns a
// new Memory and never touches its input.
type Memory struct {
	State      State     `json:"state"`
	Stability  float64   `json:"stability"`  // memory stability in days
	Difficulty float64   `json:"difficulty"` // 1 (easiest) .. 10 (hardest)

	IntervalDays int `json:"interval_days"` // last scheduled interval
	Repetitions  int `json:"repetitions"`   // successes since the last lapse
	Lapses       int `json:"lapses"`        // total failed recalls

	Due        time.Time `json:"due"`
	LastReview time.Time `json:"last_review"` // zero until the first review
}

// NewMemory returns the memory state of a card that has never been
// reviewed: NEW, due immediately.
func NewMemory(now time.Time) Memory {
	return Memory{State: StateNew, Due: now}
}

// Reviewed reports whether the card has been reviewed at least once.
func (m Memory) Reviewed() bool {
	return !m.LastReview.IsZero()
}
